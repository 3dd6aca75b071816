package outbound

import (
	"context"

	"debate-video-pipeline/domain"
)

type SynthesizeSpeechRequest struct {
	Text    string
	Profile domain.VoiceProfile
}

// SpeechProviderPort is one link of the TTS fallback chain. Configured
// reports whether the provider has the credentials it needs; unconfigured
// providers are skipped without a network call.
type SpeechProviderPort interface {
	Name() string
	Configured() bool
	Synthesize(ctx context.Context, req SynthesizeSpeechRequest) ([]byte, error)
}
