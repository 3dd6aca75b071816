package mock_lipsync

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"debate-video-pipeline/application/ports/outbound"
)

const renderTimeout = 2 * time.Minute

// Runner turns a portrait and an audio track into a still-image talking clip
// with ffmpeg. It stands in for the real lip-sync model so the full pipeline
// can be exercised without a GPU.
type Runner struct {
	workerPool outbound.TaskDispatcher
	store      *jobStore
	logger     outbound.LoggerPort
	workDir    string
}

func NewRunner(workerPool outbound.TaskDispatcher, store *jobStore, logger outbound.LoggerPort, workDir string) *Runner {
	return &Runner{
		workerPool: workerPool,
		store:      store,
		logger:     logger,
		workDir:    workDir,
	}
}

func (r *Runner) Start(j *job) error {
	return r.workerPool.Submit(func() {
		r.store.setStatus(j.ID, statusRunning, "")

		ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
		defer cancel()

		videoFileName := filepath.Join(r.workDir, j.ID+".mp4")
		cmd := exec.CommandContext(ctx, "ffmpeg",
			"-loop", "1",
			"-i", j.ImageFileName,
			"-i", j.AudioFileName,
			"-c:v", "libx264",
			"-tune", "stillimage",
			"-c:a", "aac",
			"-pix_fmt", "yuv420p",
			"-shortest",
			"-y",
			videoFileName,
		)

		if out, err := cmd.CombinedOutput(); err != nil {
			r.logger.ErrorWithFields(err, "mock render failed", map[string]interface{}{
				"job_id": j.ID,
				"output": string(out),
			})
			r.store.setStatus(j.ID, statusFailed, fmt.Sprintf("ffmpeg: %v", err))
			return
		}

		r.store.setResult(j.ID, videoFileName)
		r.logger.InfoWithFields("mock render complete", map[string]interface{}{
			"job_id": j.ID,
		})
	})
}
