package tabular

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// FetcherConfig holds configuration for remote table retrieval.
type FetcherConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
	MaxBodyBytes int64
}

// DefaultFetcherConfig returns recommended defaults.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:      60 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		RateLimit:    2.0,
		MaxBodyBytes: 512 << 20,
	}
}

// Fetcher downloads table sources over HTTP(S) with retries and rate
// limiting.
type Fetcher struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	cfg     FetcherConfig
	logger  *logrus.Logger
}

// NewFetcher creates a fetcher from config.
func NewFetcher(cfg FetcherConfig, logger *logrus.Logger) *Fetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	return &Fetcher{
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cfg:     cfg,
		logger:  logger,
	}
}

// Fetch downloads the source and returns its raw bytes.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrFetchFailed, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.WithError(err).WithField("url", url).Error("Failed to fetch table source")
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", ErrFetchFailed, resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}

	f.logger.WithFields(logrus.Fields{
		"url":        url,
		"bytes":      len(data),
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Fetched table source")
	return data, nil
}
