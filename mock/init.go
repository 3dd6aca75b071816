package mock_lipsync

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"debate-video-pipeline/application/ports/outbound"
)

// Init registers an in-process lip-sync service on the router. Pointing
// RENDER endpoints at this server exercises the whole pipeline without the
// real model.
func Init(g *gin.Engine, workerPool outbound.TaskDispatcher, logger outbound.LoggerPort, workDir string) error {
	mockDir := filepath.Join(workDir, "mock_lipsync")
	if err := os.MkdirAll(mockDir, 0o755); err != nil {
		return err
	}

	store := newJobStore()
	runner := NewRunner(workerPool, store, logger, mockDir)
	controller := NewMockLipsyncController(logger, store, runner, mockDir)

	controller.RegisterRoutes(g)
	return nil
}
