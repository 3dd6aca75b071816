package domain

import "sync"

type RequestState string

const (
	RequestPending           RequestState = "pending"
	RequestGeneratingText    RequestState = "generating_text"
	RequestSynthesizingAudio RequestState = "synthesizing_audio"
	RequestRenderingVideo    RequestState = "rendering_video"
	RequestCompositing       RequestState = "compositing"
	RequestDone              RequestState = "done"
	RequestFailed            RequestState = "failed"
)

type TurnStatus string

const (
	TurnPending TurnStatus = "pending"
	TurnRunning TurnStatus = "running"
	TurnDone    TurnStatus = "done"
	TurnFailed  TurnStatus = "failed"
)

type TurnState struct {
	Stage  Stage
	Status TurnStatus
}

// PipelineState tracks one request's progress. It is owned by the pipeline
// orchestrator; no other component holds a reference to it. Stage goroutines
// report through the orchestrator, hence the internal lock.
type PipelineState struct {
	mu      sync.Mutex
	request RequestState
	turns   map[int]TurnState
	failure *StageError
}

func NewPipelineState(turns []Turn) *PipelineState {
	states := make(map[int]TurnState, len(turns))
	for _, t := range turns {
		states[t.Sequence] = TurnState{Stage: StageGeneratingText, Status: TurnPending}
	}
	return &PipelineState{
		request: RequestPending,
		turns:   states,
	}
}

func (s *PipelineState) Request() RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.request
}

func (s *PipelineState) Turn(sequence int) TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns[sequence]
}

// Advance moves the request state forward. Once the request has failed it
// stays failed.
func (s *PipelineState) Advance(state RequestState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.request == RequestFailed {
		return
	}
	s.request = state
}

func (s *PipelineState) MarkTurnRunning(sequence int, stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[sequence] = TurnState{Stage: stage, Status: TurnRunning}
}

func (s *PipelineState) MarkTurnDone(sequence int, stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[sequence] = TurnState{Stage: stage, Status: TurnDone}
}

// Fail freezes the request in the failed state, recording the first terminal
// error. Later failures do not overwrite the first one.
func (s *PipelineState) Fail(err *StageError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure == nil {
		s.failure = err
		if err.Turn >= 0 {
			if ts, ok := s.turns[err.Turn]; ok {
				s.turns[err.Turn] = TurnState{Stage: ts.Stage, Status: TurnFailed}
			}
		}
	}
	s.request = RequestFailed
}

// FirstRunning returns the lowest-sequence turn still marked running and its
// stage. Used to attribute a request-level deadline to the outstanding work.
func (s *PipelineState) FirstRunning() (int, Stage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := -1
	var stage Stage
	for seq, ts := range s.turns {
		if ts.Status != TurnRunning {
			continue
		}
		if found == -1 || seq < found {
			found = seq
			stage = ts.Stage
		}
	}
	return found, stage, found != -1
}

func (s *PipelineState) Failure() *StageError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}
