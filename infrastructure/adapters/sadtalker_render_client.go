package adapters

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/config"
	"debate-video-pipeline/domain"
)

const (
	jobStatusPending = "PENDING"
	jobStatusRunning = "RUNNING"
	jobStatusDone    = "DONE"
	jobStatusFailed  = "FAILED"
)

const maxConsecutivePollFailures = 3

type lipsyncSubmitRequest struct {
	Image string `json:"image"`
	Audio string `json:"audio"`
}

type lipsyncSubmitResponse struct {
	JobID string `json:"job_id"`
}

type lipsyncJobStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type lipsyncJobResult struct {
	Video string `json:"video"`
}

type sadTalkerRenderClient struct {
	logger outbound.LoggerPort
	cfg    *config.RenderConfig
	client *http.Client
	probe  func(ctx context.Context, fileName string) (float64, error)
}

// NewSadTalkerRenderClient builds the remote lip-sync client. One Render call
// covers the job's whole lifecycle: submit with bounded connect retries, poll
// to completion or deadline, fetch and validate the clip, and resubmit a
// bounded number of times on an explicit remote failure.
func NewSadTalkerRenderClient(logger outbound.LoggerPort, cfg *config.RenderConfig) outbound.LipsyncRendererPort {
	transport := http.DefaultTransport
	if !cfg.VerifyTLS {
		transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	return &sadTalkerRenderClient{
		logger: logger,
		cfg:    cfg,
		client: &http.Client{Transport: transport, Timeout: 60 * time.Second},
		probe:  probeDuration,
	}
}

func (c *sadTalkerRenderClient) Render(ctx context.Context, req outbound.RenderRequest) (*outbound.RenderResult, error) {
	image, err := os.ReadFile(req.ImageFileName)
	if err != nil {
		return nil, domain.NewError(domain.ResourceKind, err)
	}
	audio, err := os.ReadFile(req.AudioFileName)
	if err != nil {
		return nil, domain.NewError(domain.ResourceKind, err)
	}

	payload, err := json.Marshal(lipsyncSubmitRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		Audio: base64.StdEncoding.EncodeToString(audio),
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(req.Endpoint, "/")

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Resubmits; attempt++ {
		if attempt > 0 {
			c.logger.WarnWithFields("resubmitting render job", map[string]interface{}{
				"attempt": attempt,
				"clip":    req.BaseName,
				"error":   lastErr.Error(),
			})
		}

		job, err := c.submit(ctx, endpoint, payload)
		if err != nil {
			// Connection failures already carried their own bounded retry;
			// resubmission is reserved for jobs the remote side accepted.
			return nil, err
		}

		if err := job.awaitWithDeadline(ctx); err != nil {
			if domain.IsKind(err, domain.RenderKind) && attempt < c.cfg.Resubmits {
				lastErr = err
				continue
			}
			return nil, err
		}

		result, err := c.fetchResult(ctx, endpoint, job.id, req)
		if err != nil {
			if domain.IsKind(err, domain.RenderKind) && attempt < c.cfg.Resubmits {
				lastErr = err
				continue
			}
			return nil, err
		}
		return result, nil
	}

	return nil, lastErr
}

func (c *sadTalkerRenderClient) submit(ctx context.Context, endpoint string, payload []byte) (*renderJob, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.SubmitAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, domain.NewError(domain.DeadlineExceededKind, ctx.Err())
			case <-time.After(c.cfg.SubmitBackoff * time.Duration(attempt)):
			}
		}

		body, err := c.postJSON(ctx, endpoint+"/lipsync/submit", payload)
		if err != nil {
			lastErr = err
			c.logger.WarnWithFields("render submit failed, retrying", map[string]interface{}{
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
			continue
		}

		var resp lipsyncSubmitResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, domain.NewError(domain.ValidationKind, err)
		}
		if resp.JobID == "" {
			return nil, domain.Errorf(domain.ValidationKind, "render service returned no job id")
		}

		c.logger.InfoWithFields("render job submitted", map[string]interface{}{
			"job_id": resp.JobID,
		})
		return &renderJob{id: resp.JobID, endpoint: endpoint, client: c}, nil
	}

	return nil, domain.NewError(domain.ConnectionKind, lastErr)
}

// renderJob is the handle for one submitted remote job. awaitWithDeadline
// blocks until the job completes, the remote side reports failure, or the
// poll deadline passes; cancelling the surrounding context abandons the job.
type renderJob struct {
	id       string
	endpoint string
	client   *sadTalkerRenderClient
}

func (j *renderJob) awaitWithDeadline(ctx context.Context) error {
	pollCtx, cancel := context.WithTimeout(ctx, j.client.cfg.PollDeadline)
	defer cancel()

	ticker := time.NewTicker(j.client.cfg.PollInterval)
	defer ticker.Stop()

	pollFailures := 0
	for {
		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return domain.NewError(domain.DeadlineExceededKind, ctx.Err())
			}
			// The remote side is opaque; the job is simply abandoned.
			return domain.Errorf(domain.TimeoutKind, "render job %s did not complete within %s", j.id, j.client.cfg.PollDeadline)
		case <-ticker.C:
			status, err := j.client.pollStatus(pollCtx, j.endpoint, j.id)
			if err != nil {
				pollFailures++
				if pollFailures >= maxConsecutivePollFailures {
					return domain.NewError(domain.TransientNetworkKind, err)
				}
				continue
			}
			pollFailures = 0

			switch status.Status {
			case jobStatusDone:
				return nil
			case jobStatusFailed:
				return domain.Errorf(domain.RenderKind, "render job %s failed remotely: %s", j.id, status.Error)
			case jobStatusPending, jobStatusRunning:
				// keep polling
			default:
				return domain.Errorf(domain.ValidationKind, "render job %s reported unknown status %q", j.id, status.Status)
			}
		}
	}
}

func (c *sadTalkerRenderClient) pollStatus(ctx context.Context, endpoint string, jobID string) (*lipsyncJobStatus, error) {
	body, err := c.getJSON(ctx, fmt.Sprintf("%s/lipsync/jobs/%s", endpoint, jobID))
	if err != nil {
		return nil, err
	}
	var status lipsyncJobStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// fetchResult downloads and validates the finished clip. Validation failures
// carry the render kind so the caller treats them like a remote failure.
func (c *sadTalkerRenderClient) fetchResult(ctx context.Context, endpoint string, jobID string,
	req outbound.RenderRequest) (*outbound.RenderResult, error) {
	body, err := c.getJSON(ctx, fmt.Sprintf("%s/lipsync/jobs/%s/result", endpoint, jobID))
	if err != nil {
		return nil, domain.NewError(domain.RenderKind, err)
	}

	var result lipsyncJobResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.NewError(domain.RenderKind, err)
	}

	video, err := base64.StdEncoding.DecodeString(result.Video)
	if err != nil {
		return nil, domain.Errorf(domain.RenderKind, "render result is not valid base64: %v", err)
	}
	if int64(len(video)) < c.cfg.MinVideoBytes {
		return nil, domain.Errorf(domain.RenderKind, "render result too small: %d bytes", len(video))
	}

	fileName := filepath.Join(req.OutputDir, req.BaseName+".mp4")
	if err := os.WriteFile(fileName, video, 0o644); err != nil {
		return nil, domain.NewError(domain.ResourceKind, err)
	}

	duration, err := c.probe(ctx, fileName)
	if err != nil {
		return nil, domain.Errorf(domain.RenderKind, "render result not playable: %v", err)
	}
	if diff := duration - req.AudioDuration; diff > c.cfg.DurationTolerance || diff < -c.cfg.DurationTolerance {
		return nil, domain.Errorf(domain.RenderKind, "render result duration %.2fs deviates from audio %.2fs beyond %.2fs",
			duration, req.AudioDuration, c.cfg.DurationTolerance)
	}

	return &outbound.RenderResult{
		FileName: fileName,
		Duration: duration,
	}, nil
}

func (c *sadTalkerRenderClient) postJSON(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *sadTalkerRenderClient) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *sadTalkerRenderClient) do(req *http.Request) ([]byte, error) {
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			c.logger.Error(closeErr, "failed to close render response body")
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("render service returned status %d: %s", res.StatusCode, string(body))
	}

	return io.ReadAll(res.Body)
}
