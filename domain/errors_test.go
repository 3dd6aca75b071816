package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := Errorf(RenderKind, "remote model crashed")
	if KindOf(err) != RenderKind {
		t.Errorf("KindOf = %s, want %s", KindOf(err), RenderKind)
	}

	wrapped := fmt.Errorf("stage failed: %w", err)
	if KindOf(wrapped) != RenderKind {
		t.Errorf("KindOf through wrapping = %s, want %s", KindOf(wrapped), RenderKind)
	}

	if KindOf(errors.New("untagged")) != InternalKind {
		t.Error("untagged error did not default to the internal kind")
	}
	if !IsKind(err, RenderKind) || IsKind(err, TimeoutKind) {
		t.Error("IsKind disagrees with KindOf")
	}
}

func TestStageError(t *testing.T) {
	cause := Errorf(TimeoutKind, "job abandoned")
	err := NewStageError(3, StageRendering, cause)

	if err.Kind() != TimeoutKind {
		t.Errorf("Kind = %s, want %s", err.Kind(), TimeoutKind)
	}

	var stageErr *StageError
	if !errors.As(fmt.Errorf("pipeline: %w", err), &stageErr) {
		t.Fatal("StageError lost through wrapping")
	}
	if stageErr.Turn != 3 || stageErr.Stage != StageRendering {
		t.Errorf("attribution lost: turn=%d stage=%s", stageErr.Turn, stageErr.Stage)
	}
	if !errors.Is(err, cause) {
		t.Error("StageError does not unwrap to its cause")
	}
}
