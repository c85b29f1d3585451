package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplier_RoundRobin(t *testing.T) {
	s := &proxySupplier{proxies: []string{"http://a:1", "http://b:2"}}

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "http://a:1", s.Get())
	assert.Equal(t, "http://b:2", s.Get())
	assert.Equal(t, "http://a:1", s.Get())

	assert.Equal(t, "", (&proxySupplier{}).Get())
}

func TestNewProxySupplier_DropsDeadProxies(t *testing.T) {
	// A plain HTTP server answers absolute-URI requests, so it acts as a forward proxy.
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer alive.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	s, err := NewProxySupplier(context.Background(), []string{deadURL, alive.URL}, "http://catalog.test/")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, alive.URL, s.Get())
}

func TestNewProxySupplier_Empty(t *testing.T) {
	s, err := NewProxySupplier(context.Background(), nil, "http://catalog.test/")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}
