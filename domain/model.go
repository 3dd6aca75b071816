package domain

type Side string

const (
	SidePro Side = "pro"
	SideCon Side = "con"
)

func (s Side) Opponent() Side {
	if s == SidePro {
		return SideCon
	}
	return SidePro
}

// SpeakerForSide maps a debate side to the portrait/voice identity used for
// it. The asset set ships two speakers, one per side.
func SpeakerForSide(side Side) string {
	if side == SidePro {
		return "person1"
	}
	return "person2"
}

type Turn struct {
	Round    int
	Side     Side
	Sequence int
	Speaker  string
}

type ArtifactKind string

const (
	TextArtifact  ArtifactKind = "text"
	AudioArtifact ArtifactKind = "audio"
	VideoArtifact ArtifactKind = "video"
)

// Artifact is the durable output of one stage for one turn. Artifacts are
// append-only: a stage never mutates an earlier artifact, it produces the
// next one. Text payloads are carried inline, audio and video payloads live
// on disk at FileName.
type Artifact struct {
	Kind     ArtifactKind
	Turn     Turn
	Text     string
	FileName string
	Duration float64
}

type TranscriptEntry struct {
	Side Side
	Text string
}

type VoiceProfile struct {
	Speaker         string
	ImageFileName   string
	Providers       []string
	ElevenLabsVoice string
	Stability       float64
	SimilarityBoost float64
	GttsLang        string
	GttsTld         string
}

type DebateRequest struct {
	Topic          string
	Rounds         int
	RenderEndpoint string
}
