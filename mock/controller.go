package mock_lipsync

import (
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"debate-video-pipeline/application/ports/outbound"
)

type MockLipsyncController interface {
	SubmitJob(c *gin.Context)
	JobStatus(c *gin.Context)
	JobResult(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type mockLipsyncController struct {
	logger  outbound.LoggerPort
	store   *jobStore
	runner  *Runner
	workDir string
}

func NewMockLipsyncController(logger outbound.LoggerPort, store *jobStore, runner *Runner,
	workDir string) MockLipsyncController {
	return &mockLipsyncController{
		logger:  logger,
		store:   store,
		runner:  runner,
		workDir: workDir,
	}
}

type submitRequest struct {
	Image string `json:"image" binding:"required"`
	Audio string `json:"audio" binding:"required"`
}

func (m *mockLipsyncController) SubmitJob(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is not valid base64"})
		return
	}
	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio is not valid base64"})
		return
	}

	jobID := uuid.NewString()
	imageFileName := filepath.Join(m.workDir, jobID+".png")
	audioFileName := filepath.Join(m.workDir, jobID+".wav")
	if err := os.WriteFile(imageFileName, image, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := os.WriteFile(audioFileName, audio, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	j := &job{
		ID:            jobID,
		Status:        statusPending,
		ImageFileName: imageFileName,
		AudioFileName: audioFileName,
	}
	m.store.put(j)

	if err := m.runner.Start(j); err != nil {
		m.logger.Error(err, "failed to start mock render")
		m.store.setStatus(jobID, statusFailed, err.Error())
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID})
}

func (m *mockLipsyncController) JobStatus(c *gin.Context) {
	j, ok := m.store.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}

	resp := gin.H{"status": j.Status}
	if j.Error != "" {
		resp["error"] = j.Error
	}
	c.JSON(http.StatusOK, resp)
}

func (m *mockLipsyncController) JobResult(c *gin.Context) {
	j, ok := m.store.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	if j.Status != statusDone {
		c.JSON(http.StatusConflict, gin.H{"error": "job is not done", "status": j.Status})
		return
	}

	video, err := os.ReadFile(j.VideoFileName)
	if err != nil {
		m.logger.Error(err, "failed to read mock render result")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": base64.StdEncoding.EncodeToString(video)})
}

func (m *mockLipsyncController) RegisterRoutes(g *gin.Engine) {
	g.POST("/lipsync/submit", m.SubmitJob)
	g.GET("/lipsync/jobs/:id", m.JobStatus)
	g.GET("/lipsync/jobs/:id/result", m.JobResult)
}
