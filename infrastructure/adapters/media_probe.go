package adapters

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"debate-video-pipeline/domain"
)

// probeDuration asks ffprobe for a media file's duration in seconds. It
// doubles as the playability gate: ffprobe refuses containers it cannot
// parse.
func probeDuration(ctx context.Context, fileName string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", fileName)

	out, err := cmd.Output()
	if err != nil {
		return 0, domain.Errorf(domain.ValidationKind, "ffprobe failed for %s: %v", fileName, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, domain.Errorf(domain.ValidationKind, "unparsable duration for %s: %v", fileName, err)
	}

	return duration, nil
}

func sideLabel(side domain.Side) string {
	if side == domain.SidePro {
		return "Pro"
	}
	return "Con"
}
