package outbound

import (
	"context"

	"debate-video-pipeline/domain"
)

type ComposeRequest struct {
	Topic              string
	Segments           []domain.Artifact
	BackgroundFileName string
	WorkDir            string
	OutputDir          string
	SessionID          string
}

type ComposeResult struct {
	FileName string
	Duration float64
}

type CompositorPort interface {
	Compose(ctx context.Context, req ComposeRequest) (*ComposeResult, error)
}
