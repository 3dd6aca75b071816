package services

import (
	"context"
	"fmt"

	"debate-video-pipeline/application/ports/inbound"
	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
)

type voiceSynthesizer struct {
	logger     outbound.LoggerPort
	providers  map[string]outbound.SpeechProviderPort
	normalizer outbound.AudioNormalizerPort
	profiles   map[string]domain.VoiceProfile
}

// NewVoiceSynthesizer builds the TTS stage. The provider chain order comes
// from each speaker's voice profile; providers are looked up by name.
func NewVoiceSynthesizer(logger outbound.LoggerPort, providers []outbound.SpeechProviderPort,
	normalizer outbound.AudioNormalizerPort, profiles map[string]domain.VoiceProfile) inbound.VoiceSynthesizerPort {
	byName := make(map[string]outbound.SpeechProviderPort, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &voiceSynthesizer{
		logger:     logger,
		providers:  byName,
		normalizer: normalizer,
		profiles:   profiles,
	}
}

func (v *voiceSynthesizer) Synthesize(ctx context.Context, turn domain.Turn, text string,
	outputDir string) (domain.Artifact, error) {
	profile, ok := v.profiles[turn.Speaker]
	if !ok {
		return domain.Artifact{}, domain.Errorf(domain.ValidationKind, "no voice profile for speaker %s", turn.Speaker)
	}

	calls := make([]fallbackCall[*outbound.NormalizedAudio], 0, len(profile.Providers))
	for _, name := range profile.Providers {
		provider, ok := v.providers[name]
		if !ok {
			return domain.Artifact{}, domain.Errorf(domain.ValidationKind, "voice profile references unknown provider %s", name)
		}
		p := provider
		calls = append(calls, fallbackCall[*outbound.NormalizedAudio]{
			Name: p.Name(),
			Skip: !p.Configured(),
			Run: func(ctx context.Context) (*outbound.NormalizedAudio, error) {
				return v.synthesizeWith(ctx, p, profile, turn, text, outputDir)
			},
		})
	}

	normalized, provider, err := tryFallbacks(ctx, v.logger, string(domain.StageSynthesizingAudio), calls)
	if err != nil {
		return domain.Artifact{}, err
	}

	v.logger.InfoWithFields("audio synthesized", map[string]interface{}{
		"sequence": turn.Sequence,
		"speaker":  turn.Speaker,
		"provider": provider,
		"duration": normalized.Duration,
	})

	return domain.Artifact{
		Kind:     domain.AudioArtifact,
		Turn:     turn,
		FileName: normalized.FileName,
		Duration: normalized.Duration,
	}, nil
}

// synthesizeWith runs one provider and normalizes its output. Normalization
// is a validation gate: a non-positive duration counts as a provider failure
// so the chain advances.
func (v *voiceSynthesizer) synthesizeWith(ctx context.Context, provider outbound.SpeechProviderPort,
	profile domain.VoiceProfile, turn domain.Turn, text string, outputDir string) (*outbound.NormalizedAudio, error) {
	raw, err := provider.Synthesize(ctx, outbound.SynthesizeSpeechRequest{
		Text:    text,
		Profile: profile,
	})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.Errorf(domain.ValidationKind, "provider %s returned no audio", provider.Name())
	}

	normalized, err := v.normalizer.Normalize(ctx, outbound.NormalizeAudioRequest{
		RawAudio:  raw,
		OutputDir: outputDir,
		BaseName:  fmt.Sprintf("turn_%d", turn.Sequence),
	})
	if err != nil {
		return nil, err
	}
	if normalized.Duration <= 0 {
		return nil, domain.Errorf(domain.ValidationKind, "normalized audio from %s has non-positive duration %f",
			provider.Name(), normalized.Duration)
	}

	return normalized, nil
}
