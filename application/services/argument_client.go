package services

import (
	"context"
	"strings"

	"debate-video-pipeline/application/ports/inbound"
	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
)

type argumentClient struct {
	logger   outbound.LoggerPort
	remote   outbound.ArgumentGeneratorPort
	fallback outbound.ArgumentGeneratorPort
}

// NewArgumentClient wires the remote argument service in front of the local
// template generator. remote may be nil when no argument service is
// configured; the template generator must always be present.
func NewArgumentClient(logger outbound.LoggerPort, remote outbound.ArgumentGeneratorPort,
	fallback outbound.ArgumentGeneratorPort) inbound.ArgumentClientPort {
	return &argumentClient{
		logger:   logger,
		remote:   remote,
		fallback: fallback,
	}
}

func (a *argumentClient) Generate(ctx context.Context, turn domain.Turn, topic string,
	transcript []domain.TranscriptEntry) (domain.Artifact, error) {
	req := outbound.GenerateArgumentRequest{
		Topic:      topic,
		Side:       turn.Side,
		Round:      turn.Round,
		Transcript: transcript,
	}

	calls := []fallbackCall[string]{
		{
			Name: a.remoteName(),
			Skip: a.remote == nil,
			Run: func(ctx context.Context) (string, error) {
				return a.remote.Generate(ctx, req)
			},
		},
		{
			Name: a.fallback.Name(),
			Run: func(ctx context.Context) (string, error) {
				return a.fallback.Generate(ctx, req)
			},
		},
	}

	text, provider, err := tryFallbacks(ctx, a.logger, string(domain.StageGeneratingText), calls)
	if err != nil {
		return domain.Artifact{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Artifact{}, domain.Errorf(domain.ValidationKind, "argument generator %s returned empty text", provider)
	}

	a.logger.DebugWithFields("argument text generated", map[string]interface{}{
		"sequence": turn.Sequence,
		"side":     turn.Side,
		"provider": provider,
		"length":   len(text),
	})

	return domain.Artifact{
		Kind: domain.TextArtifact,
		Turn: turn,
		Text: text,
	}, nil
}

func (a *argumentClient) remoteName() string {
	if a.remote == nil {
		return "remote"
	}
	return a.remote.Name()
}
