package outbound

import (
	"context"

	"debate-video-pipeline/domain"
)

type GenerateArgumentRequest struct {
	Topic      string
	Side       domain.Side
	Round      int
	Transcript []domain.TranscriptEntry
}

// ArgumentGeneratorPort produces one argument text for one turn. The prior
// transcript is supplied so later turns can rebut earlier ones.
type ArgumentGeneratorPort interface {
	Name() string
	Generate(ctx context.Context, req GenerateArgumentRequest) (string, error)
}
