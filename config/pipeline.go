package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PipelineConfig struct {
	WorkDir          string
	OutputDir        string
	RequestTimeout   time.Duration
	AlternateOpening bool
	WorkerPoolSize   int
}

func GetPipelineConfig() (*PipelineConfig, error) {
	cfg := &PipelineConfig{
		WorkDir:        "/tmp/debates",
		OutputDir:      "./output",
		RequestTimeout: 30 * time.Minute,
		WorkerPoolSize: 64,
	}

	if dir := os.Getenv("WORK_DIR"); dir != "" {
		cfg.WorkDir = dir
	}
	if dir := os.Getenv("OUTPUT_DIR"); dir != "" {
		cfg.OutputDir = dir
	}
	if raw := os.Getenv("REQUEST_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REQUEST_TIMEOUT_SECONDS: %w", err)
		}
		cfg.RequestTimeout = time.Duration(seconds) * time.Second
	}
	if raw := os.Getenv("ALTERNATE_OPENING"); raw != "" {
		alternate, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ALTERNATE_OPENING: %w", err)
		}
		cfg.AlternateOpening = alternate
	}
	if raw := os.Getenv("WORKER_POOL_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse WORKER_POOL_SIZE: %w", err)
		}
		cfg.WorkerPoolSize = size
	}

	return cfg, nil
}
