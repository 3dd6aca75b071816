package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	TransientNetworkKind   ErrorKind = "transient_network"
	ServiceDegradedKind    ErrorKind = "service_degraded"
	ServiceUnavailableKind ErrorKind = "service_unavailable"
	ValidationKind         ErrorKind = "validation"
	TimeoutKind            ErrorKind = "timeout"
	RenderKind             ErrorKind = "render"
	ConnectionKind         ErrorKind = "connection"
	ResourceKind           ErrorKind = "resource"
	DeadlineExceededKind   ErrorKind = "deadline_exceeded"
	InternalKind           ErrorKind = "internal"
)

// PipelineError tags an error with one of the pipeline's error kinds so that
// callers can branch on the kind without inspecting messages.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

func Errorf(kind ErrorKind, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of the innermost PipelineError in err's chain, or
// InternalKind when the error carries no kind.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return InternalKind
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

type Stage string

const (
	StageGeneratingText    Stage = "generating_text"
	StageSynthesizingAudio Stage = "synthesizing_audio"
	StageRendering         Stage = "rendering"
	StageCompositing       Stage = "compositing"
)

// StageError is the terminal, structured form of a turn failure: which turn,
// which stage, what kind of error. Turn is -1 for request-scoped failures
// such as an exceeded request deadline.
type StageError struct {
	Turn  int
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e.Turn < 0 {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("turn %d, stage %s: %v", e.Turn, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Kind() ErrorKind {
	return KindOf(e.Err)
}

func NewStageError(turn int, stage Stage, err error) *StageError {
	return &StageError{Turn: turn, Stage: stage, Err: err}
}
