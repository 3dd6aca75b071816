package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"debate-video-pipeline/application/ports/outbound"
)

const healthCheckTimeout = 5 * time.Second

type collaboratorTarget struct {
	Name string
	URL  string
}

type collaboratorHealthChecker struct {
	logger  outbound.LoggerPort
	client  *http.Client
	targets []collaboratorTarget
}

// NewCollaboratorHealthChecker polls the /health endpoints of the configured
// collaborators. Targets with an empty URL are skipped.
func NewCollaboratorHealthChecker(logger outbound.LoggerPort, argumentURL string, ttsURL string) outbound.HealthCheckerPort {
	targets := make([]collaboratorTarget, 0, 2)
	if argumentURL != "" {
		targets = append(targets, collaboratorTarget{Name: "argument-service", URL: healthURL(argumentURL)})
	}
	if ttsURL != "" {
		targets = append(targets, collaboratorTarget{Name: "tts-service", URL: healthURL(ttsURL)})
	}
	return &collaboratorHealthChecker{
		logger:  logger,
		client:  &http.Client{Timeout: healthCheckTimeout},
		targets: targets,
	}
}

// healthURL points at the service root's /health regardless of how deep the
// configured API URL is. The argument service URL carries the full
// chat-completions path; its health surface lives at the root.
func healthURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimRight(rawURL, "/") + "/health"
	}
	return u.Scheme + "://" + u.Host + "/health"
}

func (c *collaboratorHealthChecker) Check(ctx context.Context) []outbound.CollaboratorHealth {
	results := make([]outbound.CollaboratorHealth, 0, len(c.targets))
	for _, target := range c.targets {
		results = append(results, c.checkOne(ctx, target))
	}
	return results
}

func (c *collaboratorHealthChecker) checkOne(ctx context.Context, target collaboratorTarget) outbound.CollaboratorHealth {
	result := outbound.CollaboratorHealth{Name: target.Name, URL: target.URL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		result.Detail = err.Error()
		return result
	}

	res, err := c.client.Do(req)
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			c.logger.Error(closeErr, "failed to close health response body")
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		result.Detail = res.Status
		return result
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err == nil && payload.Status != "" {
		result.Detail = payload.Status
	}
	result.Healthy = true
	return result
}
