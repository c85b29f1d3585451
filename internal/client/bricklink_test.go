package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.BrickLinkConfig {
	return config.BrickLinkConfig{BaseURL: baseURL, Timeout: 5}
}

func TestGetCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalogTree.asp" || r.URL.Query().Get("itemType") != "B" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, catalogTreeHTML)
	}))
	defer srv.Close()

	c := NewCatalogClient(testConfig(srv.URL+"/"), nil)

	cats, err := c.GetCategories(context.Background(), domain.CategoryTypeBook)
	require.NoError(t, err)
	require.Len(t, cats, 4)
	assert.Equal(t, srv.URL+"/catalogList.asp?catType=B&catString=332", cats[0].URL)

	_, err = c.GetCategories(context.Background(), domain.CategoryTypePart)
	assert.Error(t, err)
}

func TestGetCategories_QuotaOpensCircuit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "<html><body>Quota Exceeded</body></html>")
	}))
	defer srv.Close()

	c := NewCatalogClient(testConfig(srv.URL), nil)

	_, err := c.GetCategories(context.Background(), domain.CategoryTypeSet)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	_, err = c.GetCategories(context.Background(), domain.CategoryTypeSet)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), hits.Load())
}
