package inbound

import "context"

type StartPipelineParams struct {
	SessionID      string
	Topic          string
	Rounds         int
	RenderEndpoint string
}

type DebateResult struct {
	VideoFileName string
	Duration      float64
	VideoKey      string
	StoreRegion   string
}

type DebatePipelinePort interface {
	StartPipeline(ctx context.Context, params StartPipelineParams) (*DebateResult, error)
}
