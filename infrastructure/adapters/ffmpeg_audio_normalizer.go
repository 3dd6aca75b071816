package adapters

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
)

// The remote renderer requires 16 kHz mono PCM input.
const (
	normalizedSampleRate = "16000"
	normalizedChannels   = "1"
	minAudioBytes        = 1000
)

type ffmpegAudioNormalizer struct {
	logger outbound.LoggerPort
}

func NewFFmpegAudioNormalizer(logger outbound.LoggerPort) outbound.AudioNormalizerPort {
	return &ffmpegAudioNormalizer{logger: logger}
}

func (n *ffmpegAudioNormalizer) Normalize(ctx context.Context, req outbound.NormalizeAudioRequest) (*outbound.NormalizedAudio, error) {
	rawFileName := filepath.Join(req.OutputDir, req.BaseName+".raw")
	if err := os.WriteFile(rawFileName, req.RawAudio, 0o644); err != nil {
		return nil, domain.NewError(domain.ResourceKind, err)
	}
	defer func() {
		if err := os.Remove(rawFileName); err != nil {
			n.logger.Error(err, "failed to remove raw audio file")
		}
	}()

	outFileName := filepath.Join(req.OutputDir, req.BaseName+".wav")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", rawFileName,
		"-acodec", "pcm_s16le",
		"-ar", normalizedSampleRate,
		"-ac", normalizedChannels,
		"-y", outFileName)
	if err := cmd.Run(); err != nil {
		n.logger.ErrorWithFields(err, "ffmpeg audio normalization failed", map[string]interface{}{
			"input": rawFileName,
		})
		return nil, domain.Errorf(domain.ValidationKind, "audio normalization failed: %v", err)
	}

	info, err := os.Stat(outFileName)
	if err != nil {
		return nil, domain.NewError(domain.ResourceKind, err)
	}
	if info.Size() < minAudioBytes {
		return nil, domain.Errorf(domain.ValidationKind, "normalized audio too small: %d bytes", info.Size())
	}

	duration, err := probeDuration(ctx, outFileName)
	if err != nil {
		return nil, err
	}

	return &outbound.NormalizedAudio{
		FileName: outFileName,
		Duration: duration,
	}, nil
}
