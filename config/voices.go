package config

import (
	"os"
	"path/filepath"

	"debate-video-pipeline/domain"
)

// ElevenLabs voice ids: a deep male voice for the PRO speaker, a confident
// female voice for the CON speaker.
const (
	person1ElevenLabsVoice = "pNInz6obpgDQGcFmaJgB"
	person2ElevenLabsVoice = "EXAVITQu4vr4xnSDxMaL"
)

// GetVoiceProfiles builds the per-speaker voice profiles, including the
// ordered TTS provider chain (premium first, free last) and the portrait
// image each speaker is rendered from.
func GetVoiceProfiles() (map[string]domain.VoiceProfile, error) {
	assetsDir := os.Getenv("ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "./assets"
	}

	stability, err := parseFloatEnv("ELEVEN_LABS_STABILITY", 0.5)
	if err != nil {
		return nil, err
	}
	similarityBoost, err := parseFloatEnv("ELEVEN_LABS_SIMILARITY_BOOST", 0.75)
	if err != nil {
		return nil, err
	}

	chain := []string{"elevenlabs", "gtts"}

	return map[string]domain.VoiceProfile{
		"person1": {
			Speaker:         "person1",
			ImageFileName:   filepath.Join(assetsDir, "person1.jpg"),
			Providers:       chain,
			ElevenLabsVoice: person1ElevenLabsVoice,
			Stability:       stability,
			SimilarityBoost: similarityBoost,
			GttsLang:        "en",
			GttsTld:         "com",
		},
		"person2": {
			Speaker:         "person2",
			ImageFileName:   filepath.Join(assetsDir, "person2.jpg"),
			Providers:       chain,
			ElevenLabsVoice: person2ElevenLabsVoice,
			Stability:       stability,
			SimilarityBoost: similarityBoost,
			GttsLang:        "en",
			GttsTld:         "co.uk",
		},
	}, nil
}
