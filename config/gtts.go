package config

import "os"

const defaultGttsApiUrl = "http://tts:8002"

type GttsConfig struct {
	ApiUrl string
}

// GetGttsConfig reads the free TTS service settings. This provider is the
// last link of every fallback chain and needs no credential, so it always
// resolves; the URL defaults to the docker-compose service name.
func GetGttsConfig() *GttsConfig {
	apiUrl := os.Getenv("GTTS_API_URL")
	if apiUrl == "" {
		apiUrl = defaultGttsApiUrl
	}
	return &GttsConfig{ApiUrl: apiUrl}
}
