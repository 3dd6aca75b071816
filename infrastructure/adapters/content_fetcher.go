package adapters

import (
	"io"
	"net/http"
	"time"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
)

const (
	fetchAttempts = 3
	fetchBackoff  = time.Second
)

type ContentFetcher interface {
	FetchContent(req *http.Request) ([]byte, error)
}

type contentFetcher struct {
	logger outbound.LoggerPort
	client *http.Client
}

// NewContentFetcher builds the shared HTTP fetcher. Transient failures
// (connection errors and gateway-class status codes) are retried a bounded
// number of times with a linear backoff before the error surfaces.
func NewContentFetcher(logger outbound.LoggerPort) ContentFetcher {
	return &contentFetcher{
		logger: logger,
		client: &http.Client{},
	}
}

func (c *contentFetcher) FetchContent(req *http.Request) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, domain.NewError(domain.DeadlineExceededKind, req.Context().Err())
			case <-time.After(fetchBackoff * time.Duration(attempt)):
			}
		}

		attemptReq, err := c.cloneRequest(req)
		if err != nil {
			return nil, err
		}

		payload, retryable, err := c.fetchOnce(attemptReq)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.logger.WarnWithFields("transient fetch failure, retrying", map[string]interface{}{
			"method":  req.Method,
			"URL":     req.URL.String(),
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return nil, domain.NewError(domain.TransientNetworkKind, lastErr)
}

func (c *contentFetcher) fetchOnce(req *http.Request) (payload []byte, retryable bool, err error) {
	res, err := c.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			c.logger.Error(closeErr, "failed to close response body")
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		retryable := res.StatusCode == http.StatusBadGateway ||
			res.StatusCode == http.StatusServiceUnavailable ||
			res.StatusCode == http.StatusGatewayTimeout
		c.logger.ErrorWithFields(nil, "HTTP request returned non-OK status code", map[string]interface{}{
			"method":  req.Method,
			"URL":     req.URL.String(),
			"status":  res.StatusCode,
			"message": string(body),
		})
		return nil, retryable, domain.Errorf(domain.TransientNetworkKind, "unexpected status code %d", res.StatusCode)
	}

	payload, err = io.ReadAll(res.Body)
	if err != nil {
		return nil, true, err
	}
	return payload, false, nil
}

func (c *contentFetcher) cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}
