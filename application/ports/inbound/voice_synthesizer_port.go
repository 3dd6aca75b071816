package inbound

import (
	"context"

	"debate-video-pipeline/domain"
)

type VoiceSynthesizerPort interface {
	Synthesize(ctx context.Context, turn domain.Turn, text string, outputDir string) (domain.Artifact, error)
}
