package outbound

import "context"

type RenderRequest struct {
	Endpoint      string
	ImageFileName string
	AudioFileName string
	AudioDuration float64
	OutputDir     string
	BaseName      string
}

type RenderResult struct {
	FileName string
	Duration float64
}

// LipsyncRendererPort runs one remote render job end to end: submit, poll
// until done or deadline, fetch and validate the result. Remote failures are
// resubmitted a bounded number of times inside the adapter; what comes back
// here is terminal for the turn.
type LipsyncRendererPort interface {
	Render(ctx context.Context, req RenderRequest) (*RenderResult, error)
}
