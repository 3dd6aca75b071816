package outbound

import "context"

// TurnRecord is the diagnostic trace of one artifact: enough to reconstruct
// what a failed request had produced before it froze.
type TurnRecord struct {
	SessionID string
	Sequence  int
	Stage     string
	Status    string
	FileName  string
	Duration  float64
}

type TurnRecorderPort interface {
	Record(ctx context.Context, record TurnRecord) error
}
