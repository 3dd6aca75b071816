package config

import (
	"fmt"
	"os"
	"strconv"
)

const defaultElevenLabsApiUrl = "https://api.elevenlabs.io/v1/text-to-speech"
const defaultElevenLabsModelId = "eleven_multilingual_v2"

type ElevenLabsConfig struct {
	ApiUrl  string
	ApiKey  string
	ModelId string
}

// GetElevenLabsConfig reads the premium TTS settings. The provider is
// optional: with no ELEVEN_LABS_API_KEY the synthesizer skips it without a
// network call and the free provider carries the chain.
func GetElevenLabsConfig() (*ElevenLabsConfig, error) {
	apiKey := os.Getenv("ELEVEN_LABS_API_KEY")
	if apiKey == "" {
		return nil, nil
	}

	apiUrl := os.Getenv("ELEVEN_LABS_API_URL")
	if apiUrl == "" {
		apiUrl = defaultElevenLabsApiUrl
	}
	modelId := os.Getenv("ELEVEN_LABS_MODEL_ID")
	if modelId == "" {
		modelId = defaultElevenLabsModelId
	}

	return &ElevenLabsConfig{
		ApiUrl:  apiUrl,
		ApiKey:  apiKey,
		ModelId: modelId,
	}, nil
}

func parseFloatEnv(name string, fallback float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return val, nil
}
