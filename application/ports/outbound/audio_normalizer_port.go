package outbound

import "context"

type NormalizeAudioRequest struct {
	RawAudio  []byte
	OutputDir string
	BaseName  string
}

type NormalizedAudio struct {
	FileName string
	Duration float64
}

// AudioNormalizerPort converts raw provider audio into the renderer's input
// format (16 kHz mono PCM WAV) and reports the resulting duration. A
// non-positive duration is a validation failure at the call site.
type AudioNormalizerPort interface {
	Normalize(ctx context.Context, req NormalizeAudioRequest) (*NormalizedAudio, error)
}
