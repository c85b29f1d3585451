package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

var (
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrCircuitOpen   = errors.New("circuit breaker is open")
)

type CatalogClient interface {
	GetCategories(ctx context.Context, categoryType domain.CategoryType) (domain.Categories, error)
}

type catalogClient struct {
	rl            ratelimit.Limiter
	config        config.BrickLinkConfig
	baseURL       string
	httpClient    *resty.Client
	parser        *catalogParser
	proxySupplier proxy.ProxySupplier

	// Circuit breaker for quota exceeded
	circuitBreakerMutex sync.RWMutex
	quotaExceededUntil  time.Time
	circuitBreakerDelay time.Duration
}

func NewCatalogClient(cfg config.BrickLinkConfig, proxySupplier proxy.ProxySupplier) CatalogClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5").
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	return &catalogClient{
		rl:                  rl,
		config:              cfg,
		baseURL:             baseURL,
		httpClient:          client,
		parser:              newCatalogParser(baseURL),
		proxySupplier:       proxySupplier,
		circuitBreakerDelay: 30 * time.Minute,
	}
}

// GetCategories fetches the catalog tree page of one item type and returns
// its categories in order of appearance.
func (c *catalogClient) GetCategories(ctx context.Context, categoryType domain.CategoryType) (domain.Categories, error) {
	url := fmt.Sprintf("%s/catalogTree.asp?itemType=%s", c.baseURL, categoryType.String())

	html, err := c.fetchHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog tree for %s: %w", categoryType.GetCategoryName(), err)
	}

	categories, err := c.parser.ParseCategoryTree(html, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog tree: %w", err)
	}

	log.Debugf("Fetched %d categories for %s", len(categories), categoryType.GetCategoryName())
	return categories, nil
}

func (c *catalogClient) isCircuitBreakerOpen() bool {
	c.circuitBreakerMutex.RLock()
	now := time.Now()
	wasOpen := now.Before(c.quotaExceededUntil)
	wasTriggered := !c.quotaExceededUntil.IsZero()
	c.circuitBreakerMutex.RUnlock()

	if !wasOpen && wasTriggered {
		c.circuitBreakerMutex.Lock()
		// Double-check after acquiring write lock
		if !c.quotaExceededUntil.IsZero() && now.After(c.quotaExceededUntil) {
			c.quotaExceededUntil = time.Time{}
			log.Infof("✅ Circuit breaker automatically re-enabled - requests are now allowed")
		}
		c.circuitBreakerMutex.Unlock()
	}

	return wasOpen
}

func (c *catalogClient) triggerCircuitBreaker() {
	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.quotaExceededUntil = time.Now().Add(c.circuitBreakerDelay)
	log.Warnf("🚫 Circuit breaker activated! All requests disabled until %v (%v)",
		c.quotaExceededUntil.Format("15:04:05"), c.circuitBreakerDelay)
}

func (c *catalogClient) getRemainingCircuitBreakerTime() time.Duration {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := time.Until(c.quotaExceededUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *catalogClient) fetchHTML(ctx context.Context, url string) (string, error) {
	if c.isCircuitBreakerOpen() {
		remaining := c.getRemainingCircuitBreakerTime()
		log.Debugf("🚫 Request blocked by circuit breaker. Remaining time: %v", remaining.Round(time.Second))
		return "", fmt.Errorf("%w: requests disabled for %v more", ErrCircuitOpen, remaining.Round(time.Second))
	}

	c.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	resp, err := c.httpClient.R().
		SetContext(reqCtx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	html := resp.String()
	if !strings.Contains(html, "Quota Exceeded") {
		return html, nil
	}

	log.Warnf("🚫 Rate limit exceeded for URL: %s", url)

	if c.proxySupplier != nil {
		if newProxy := c.proxySupplier.Get(); newProxy != "" {
			log.Infof("🔄 Switching to new proxy: %s", newProxy)
			c.httpClient.SetProxy(newProxy)

			retryResp, retryErr := c.httpClient.R().
				SetContext(reqCtx).
				Get(url)
			if retryErr == nil && !retryResp.IsError() {
				if retryHTML := retryResp.String(); !strings.Contains(retryHTML, "Quota Exceeded") {
					log.Infof("✅ Retry successful with new proxy")
					return retryHTML, nil
				}
			}
		}
	}

	c.triggerCircuitBreaker()
	return "", fmt.Errorf("%w: circuit breaker activated for %v", ErrQuotaExceeded, c.circuitBreakerDelay)
}
