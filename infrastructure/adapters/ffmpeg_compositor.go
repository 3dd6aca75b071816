package adapters

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
)

// Fixed output format required by the final artifact contract.
const (
	frameWidth   = 1920
	frameHeight  = 1080
	frameRate    = 25
	videoBitrate = "4000k"
	audioBitrate = "192k"
)

// Speaker clip placement on the shared background frame.
const (
	clipWidth      = 800
	clipEdgeMargin = 96
	clipTopOffset  = 200
	labelFontSize  = 48
)

type ffmpegCompositor struct {
	logger outbound.LoggerPort
}

// NewFFmpegCompositor builds the final assembly stage. Clips are placed on
// alternating sides of the background by sequence parity, labelled, then
// concatenated back to back with hard cuts.
func NewFFmpegCompositor(logger outbound.LoggerPort) outbound.CompositorPort {
	return &ffmpegCompositor{logger: logger}
}

func (f *ffmpegCompositor) Compose(ctx context.Context, req outbound.ComposeRequest) (*outbound.ComposeResult, error) {
	if err := validateSegments(req.Segments); err != nil {
		return nil, err
	}

	background := req.BackgroundFileName
	if background == "" {
		synthesized, err := f.synthesizeBackground(ctx, req.WorkDir)
		if err != nil {
			return nil, err
		}
		background = synthesized
	}

	segmentFiles := make([]string, 0, len(req.Segments))
	for _, segment := range req.Segments {
		outFile := filepath.Join(req.WorkDir, fmt.Sprintf("composed_%d.mp4", segment.Turn.Sequence))
		args := segmentArgs(background, segment, req.Topic, outFile)
		if err := f.runFFmpeg(ctx, args); err != nil {
			return nil, domain.Errorf(domain.ResourceKind, "failed to compose segment %d: %v", segment.Turn.Sequence, err)
		}
		segmentFiles = append(segmentFiles, outFile)
	}

	listFileName, err := f.writeConcatList(req.WorkDir, segmentFiles)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(listFileName); err != nil {
			f.logger.Error(err, "failed to remove concat list file")
		}
	}()

	finalFileName := filepath.Join(req.OutputDir, req.SessionID+"_debate.mp4")
	if err := f.runFFmpeg(ctx, []string{"-f", "concat", "-safe", "0", "-i", listFileName, "-c", "copy", "-y", finalFileName}); err != nil {
		return nil, domain.Errorf(domain.ResourceKind, "failed to concatenate segments: %v", err)
	}

	duration, err := probeDuration(ctx, finalFileName)
	if err != nil {
		return nil, err
	}

	expected := 0.0
	for _, segment := range req.Segments {
		expected += segment.Duration
	}
	tolerance := float64(len(req.Segments)) / frameRate
	if diff := duration - expected; diff > tolerance || diff < -tolerance {
		f.logger.WarnWithFields("final duration deviates from segment sum", map[string]interface{}{
			"final":    duration,
			"expected": expected,
		})
	}

	return &outbound.ComposeResult{
		FileName: finalFileName,
		Duration: duration,
	}, nil
}

// validateSegments enforces the compositor's input contract: one clip per
// contiguous sequence position, every clip present and non-empty. A gap would
// silently drop a turn from the debate, so it is fatal here.
func validateSegments(segments []domain.Artifact) error {
	if len(segments) == 0 {
		return domain.Errorf(domain.ValidationKind, "no segments to compose")
	}
	for i, segment := range segments {
		if segment.Turn.Sequence != i {
			return domain.Errorf(domain.ValidationKind, "segment order broken: expected sequence %d, got %d", i, segment.Turn.Sequence)
		}
		if segment.Kind != domain.VideoArtifact {
			return domain.Errorf(domain.ValidationKind, "segment %d is not a video artifact", i)
		}
		info, err := os.Stat(segment.FileName)
		if err != nil {
			return domain.Errorf(domain.ValidationKind, "segment %d missing: %v", i, err)
		}
		if info.Size() == 0 {
			return domain.Errorf(domain.ValidationKind, "segment %d is empty", i)
		}
	}
	return nil
}

// clipOverlayX places a clip on the left or right region by sequence parity.
// The alternation is visual variety, deliberately independent of which side
// is speaking.
func clipOverlayX(sequence int) int {
	if sequence%2 == 0 {
		return clipEdgeMargin
	}
	return frameWidth - clipWidth - clipEdgeMargin
}

func segmentLabel(topic string, turn domain.Turn) string {
	return fmt.Sprintf("%s | %s", strings.ToUpper(string(turn.Side)), topic)
}

// escapeDrawtext escapes the characters the ffmpeg drawtext filter treats
// specially.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}

func segmentArgs(background string, segment domain.Artifact, topic string, outFile string) []string {
	filter := fmt.Sprintf(
		"[0:v]scale=%d:%d[bg];[1:v]scale=%d:-2[clip];[bg][clip]overlay=%d:%d[comp];"+
			"[comp]drawtext=text='%s':fontcolor=white:fontsize=%d:box=1:boxcolor=black@0.5:boxborderw=12:x=(w-text_w)/2:y=64[out]",
		frameWidth, frameHeight, clipWidth, clipOverlayX(segment.Turn.Sequence), clipTopOffset,
		escapeDrawtext(segmentLabel(topic, segment.Turn)), labelFontSize)

	return []string{
		"-loop", "1", "-i", background,
		"-i", segment.FileName,
		"-filter_complex", filter,
		"-map", "[out]", "-map", "1:a",
		"-c:v", "libx264", "-r", fmt.Sprintf("%d", frameRate), "-b:v", videoBitrate,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", audioBitrate,
		"-shortest", "-y", outFile,
	}
}

// synthesizeBackground produces the default gradient frame used when no
// background image is supplied.
func (f *ffmpegCompositor) synthesizeBackground(ctx context.Context, workDir string) (string, error) {
	outFile := filepath.Join(workDir, "background.png")
	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("gradients=s=%dx%d:c0=0x101830:c1=0x2a4a7f:n=2", frameWidth, frameHeight),
		"-frames:v", "1", "-y", outFile,
	}
	if err := f.runFFmpeg(ctx, args); err != nil {
		return "", domain.Errorf(domain.ResourceKind, "failed to synthesize background: %v", err)
	}
	return outFile, nil
}

func (f *ffmpegCompositor) writeConcatList(workDir string, segmentFiles []string) (string, error) {
	listFile, err := os.Create(filepath.Join(workDir, "concat_list.txt"))
	if err != nil {
		return "", domain.NewError(domain.ResourceKind, err)
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			f.logger.Error(err, "failed to close concat list file")
		}
	}(listFile)

	writer := bufio.NewWriter(listFile)
	for _, fileName := range segmentFiles {
		if _, err := writer.WriteString("file '" + fileName + "'\n"); err != nil {
			return "", domain.NewError(domain.ResourceKind, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return "", domain.NewError(domain.ResourceKind, err)
	}

	return listFile.Name(), nil
}

func (f *ffmpegCompositor) runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		f.logger.ErrorWithFields(err, "ffmpeg invocation failed", map[string]interface{}{
			"args":   strings.Join(args, " "),
			"stderr": stderr.String(),
		})
		return err
	}
	return nil
}
