package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ortelius/pdvd-notices/model"
	"go.uber.org/zap"
)

// DefaultNoticesURL is the endpoint publishing the notice catalog
const DefaultNoticesURL = "https://cli.cdk.dev-tools.aws.dev/notices.json"

// DefaultTimeout bounds the whole remote fetch, retries included
const DefaultTimeout = 3 * time.Second

// maxBodySize caps how much of the response is read
const maxBodySize = 10 * 1024 * 1024

// WebsiteDataSource fetches the catalog from the notices endpoint.
// It fails open: any problem yields an empty catalog instead of an error.
type WebsiteDataSource struct {
	URL        string
	Timeout    time.Duration
	MaxRetries uint64
	Client     *http.Client

	logger *zap.Logger
}

// NewWebsiteDataSource creates a WebsiteDataSource with default timeout and retries.
func NewWebsiteDataSource(url string, logger *zap.Logger) *WebsiteDataSource {
	if url == "" {
		url = DefaultNoticesURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebsiteDataSource{
		URL:        url,
		Timeout:    DefaultTimeout,
		MaxRetries: 2,
		Client:     http.DefaultClient,
		logger:     logger,
	}
}

// Fetch returns the parsed notices, or an empty catalog on any failure.
func (w *WebsiteDataSource) Fetch(ctx context.Context) ([]model.Notice, error) {
	notices, err := w.fetchNotices(ctx)
	if err != nil {
		w.logger.Sugar().Debugf("Could not refresh notices from %s: %v", w.URL, err)
		return []model.Notice{}, nil
	}
	return notices, nil
}

// fetchNotices performs the request. Transport errors are retried with exponential
// backoff until the timeout expires; bad statuses and bodies are not retried.
func (w *WebsiteDataSource) fetchNotices(ctx context.Context) ([]model.Notice, error) {
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = timeout

	var notices []model.Notice
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("error creating request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(fmt.Errorf("HTTP request error: %w", err))
			}
			return fmt.Errorf("HTTP request error: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("notices endpoint error: %s", resp.Status))
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("error reading response: %w", err))
		}

		parsed, err := decodeCatalog(body)
		if err != nil {
			return backoff.Permanent(err)
		}
		notices = parsed
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, w.MaxRetries), ctx)
	err := backoff.RetryNotify(operation, b, func(err error, next time.Duration) {
		w.logger.Sugar().Debugf("Retrying notices fetch in %s: %v", next, err)
	})
	if err != nil {
		return nil, err
	}
	return notices, nil
}
