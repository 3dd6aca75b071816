package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/config"
)

type gttsRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
	Tld  string `json:"tld"`
	Slow bool   `json:"slow"`
}

type gttsProvider struct {
	ContentFetcher
	logger outbound.LoggerPort
	cfg    *config.GttsConfig
}

// NewGttsProvider builds the free TTS provider, the last link of every
// fallback chain. It needs no credential.
func NewGttsProvider(contentFetcher ContentFetcher, logger outbound.LoggerPort,
	cfg *config.GttsConfig) outbound.SpeechProviderPort {
	return &gttsProvider{
		ContentFetcher: contentFetcher,
		logger:         logger,
		cfg:            cfg,
	}
}

func (p *gttsProvider) Name() string {
	return "gtts"
}

func (p *gttsProvider) Configured() bool {
	return p.cfg != nil && p.cfg.ApiUrl != ""
}

func (p *gttsProvider) Synthesize(ctx context.Context, req outbound.SynthesizeSpeechRequest) ([]byte, error) {
	body := gttsRequest{
		Text: req.Text,
		Lang: req.Profile.GttsLang,
		Tld:  req.Profile.GttsTld,
		Slow: false,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.ApiUrl+"/synthesize", bytes.NewBuffer(payload))
	if err != nil {
		p.logger.Error(err, "failed to create gTTS request")
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return p.FetchContent(httpReq)
}
