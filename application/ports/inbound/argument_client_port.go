package inbound

import (
	"context"

	"debate-video-pipeline/domain"
)

type ArgumentClientPort interface {
	Generate(ctx context.Context, turn domain.Turn, topic string, transcript []domain.TranscriptEntry) (domain.Artifact, error)
}
