package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type ArgumentConfig struct {
	ApiUrl  string
	ApiKey  string
	Model   string
	Timeout time.Duration
}

// GetArgumentConfig reads the argument service settings. The service is an
// optional collaborator: with no ARGUMENT_API_URL the pipeline runs on the
// local template generator alone.
func GetArgumentConfig() (*ArgumentConfig, error) {
	apiUrl := os.Getenv("ARGUMENT_API_URL")
	if apiUrl == "" {
		return nil, nil
	}

	model := os.Getenv("ARGUMENT_MODEL")
	if model == "" {
		return nil, fmt.Errorf("ARGUMENT_MODEL must be set when ARGUMENT_API_URL is set")
	}

	timeout := 120 * time.Second
	if raw := os.Getenv("ARGUMENT_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ARGUMENT_TIMEOUT_SECONDS: %w", err)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return &ArgumentConfig{
		ApiUrl:  apiUrl,
		ApiKey:  os.Getenv("ARGUMENT_API_KEY"),
		Model:   model,
		Timeout: timeout,
	}, nil
}
