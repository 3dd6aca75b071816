package controllers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"debate-video-pipeline/application/ports/inbound"
	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
	"debate-video-pipeline/infrastructure/gin_interface/dto"
)

type DebateController interface {
	GenerateDebate(c *gin.Context)
	DownloadVideo(c *gin.Context)
	Health(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type debateController struct {
	logger        outbound.LoggerPort
	pipeline      inbound.DebatePipelinePort
	healthChecker outbound.HealthCheckerPort
	outputDir     string
}

func NewDebateController(logger outbound.LoggerPort, pipeline inbound.DebatePipelinePort,
	healthChecker outbound.HealthCheckerPort, outputDir string) DebateController {
	return &debateController{
		logger:        logger,
		pipeline:      pipeline,
		healthChecker: healthChecker,
		outputDir:     outputDir,
	}
}

func (d *debateController) GenerateDebate(c *gin.Context) {
	var req dto.CreateDebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.DebateErrorResponse{Error: err.Error()})
		return
	}

	newCtx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sessionID := uuid.NewString()

	// Advisory only: a degraded collaborator is handled by the fallback
	// chains, but it is worth knowing before the pipeline starts.
	for _, collaborator := range d.healthChecker.Check(newCtx) {
		if !collaborator.Healthy {
			d.logger.WarnWithFields("collaborator unhealthy at request start", map[string]interface{}{
				"collaborator": collaborator.Name,
				"detail":       collaborator.Detail,
			})
		}
	}

	result, err := d.pipeline.StartPipeline(newCtx, inbound.StartPipelineParams{
		SessionID:      sessionID,
		Topic:          req.Topic,
		Rounds:         req.Rounds,
		RenderEndpoint: req.RenderEndpoint,
	})
	if err != nil {
		d.logger.Error(err, "debate pipeline failed")
		c.JSON(http.StatusInternalServerError, failureResponse(err))
		return
	}

	c.JSON(http.StatusOK, dto.CreateDebateResponse{
		Success:     true,
		SessionID:   sessionID,
		VideoPath:   result.VideoFileName,
		Filename:    filepath.Base(result.VideoFileName),
		Duration:    result.Duration,
		VideoKey:    result.VideoKey,
		VideoRegion: result.StoreRegion,
	})
}

// failureResponse shapes a pipeline error into the user-visible outcome: the
// failing stage and turn when known, never a silently incomplete result.
func failureResponse(err error) dto.DebateErrorResponse {
	resp := dto.DebateErrorResponse{
		Error: err.Error(),
		Kind:  string(domain.KindOf(err)),
	}
	var stageErr *domain.StageError
	if errors.As(err, &stageErr) {
		resp.Stage = string(stageErr.Stage)
		if stageErr.Turn >= 0 {
			turn := stageErr.Turn
			resp.Turn = &turn
		}
	}
	return resp
}

func (d *debateController) DownloadVideo(c *gin.Context) {
	// Base strips any path components so the handler cannot escape the
	// output directory.
	fileName := filepath.Base(c.Param("filename"))
	c.FileAttachment(filepath.Join(d.outputDir, fileName), fileName)
}

func (d *debateController) Health(c *gin.Context) {
	collaborators := d.healthChecker.Check(c.Request.Context())

	healthy := true
	for _, collaborator := range collaborators {
		if !collaborator.Healthy {
			healthy = false
		}
	}

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":        overall,
		"collaborators": collaborators,
	})
}

func (d *debateController) RegisterRoutes(g *gin.Engine) {
	g.POST("/generate", d.GenerateDebate)
	g.GET("/download/:filename", d.DownloadVideo)
	g.GET("/health", d.Health)
}
