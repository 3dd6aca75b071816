package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type RenderConfig struct {
	PollInterval      time.Duration
	PollDeadline      time.Duration
	SubmitAttempts    int
	SubmitBackoff     time.Duration
	Resubmits         int
	DurationTolerance float64
	MinVideoBytes     int64
	VerifyTLS         bool
}

// GetRenderConfig reads the remote lip-sync client settings. The endpoint
// itself arrives per request; everything here shapes how the client talks to
// it.
func GetRenderConfig() (*RenderConfig, error) {
	cfg := &RenderConfig{
		PollInterval:      5 * time.Second,
		PollDeadline:      10 * time.Minute,
		SubmitAttempts:    3,
		SubmitBackoff:     2 * time.Second,
		Resubmits:         2,
		DurationTolerance: 0.5,
		MinVideoBytes:     50_000,
		VerifyTLS:         true,
	}

	if raw := os.Getenv("LIPSYNC_POLL_INTERVAL_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse LIPSYNC_POLL_INTERVAL_SECONDS: %w", err)
		}
		cfg.PollInterval = time.Duration(seconds) * time.Second
	}
	if raw := os.Getenv("LIPSYNC_POLL_DEADLINE_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse LIPSYNC_POLL_DEADLINE_SECONDS: %w", err)
		}
		cfg.PollDeadline = time.Duration(seconds) * time.Second
	}
	if raw := os.Getenv("LIPSYNC_RESUBMITS"); raw != "" {
		resubmits, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse LIPSYNC_RESUBMITS: %w", err)
		}
		cfg.Resubmits = resubmits
	}

	// Opt-out for endpoints behind tunnels with broken certificate chains.
	if raw := os.Getenv("LIPSYNC_VERIFY_TLS"); raw != "" {
		switch strings.ToLower(raw) {
		case "0", "false", "no":
			cfg.VerifyTLS = false
		}
	}

	return cfg, nil
}
