package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/config"
)

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelId       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsProvider struct {
	ContentFetcher
	logger outbound.LoggerPort
	cfg    *config.ElevenLabsConfig
}

// NewElevenLabsProvider builds the premium TTS provider. cfg may be nil when
// no API key is configured; the provider then reports itself unconfigured and
// the chain skips it without a network call.
func NewElevenLabsProvider(contentFetcher ContentFetcher, logger outbound.LoggerPort,
	cfg *config.ElevenLabsConfig) outbound.SpeechProviderPort {
	return &elevenLabsProvider{
		ContentFetcher: contentFetcher,
		logger:         logger,
		cfg:            cfg,
	}
}

func (p *elevenLabsProvider) Name() string {
	return "elevenlabs"
}

func (p *elevenLabsProvider) Configured() bool {
	return p.cfg != nil && p.cfg.ApiKey != ""
}

func (p *elevenLabsProvider) Synthesize(ctx context.Context, req outbound.SynthesizeSpeechRequest) ([]byte, error) {
	httpReq, err := p.createRequest(ctx, req)
	if err != nil {
		p.logger.Error(err, "failed to create ElevenLabs request")
		return nil, err
	}
	return p.FetchContent(httpReq)
}

func (p *elevenLabsProvider) createRequest(ctx context.Context, req outbound.SynthesizeSpeechRequest) (*http.Request, error) {
	body := elevenLabsRequest{
		Text:    req.Text,
		ModelId: p.cfg.ModelId,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       req.Profile.Stability,
			SimilarityBoost: req.Profile.SimilarityBoost,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.ApiUrl+"/"+req.Profile.ElevenLabsVoice, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", p.cfg.ApiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	return httpReq, nil
}
