package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
	"debate-video-pipeline/infrastructure/adapters"
)

type fakeArgumentGenerator struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeArgumentGenerator) Name() string {
	return f.name
}

func (f *fakeArgumentGenerator) Generate(_ context.Context, _ outbound.GenerateArgumentRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

func testTurn(sequence int, side domain.Side) domain.Turn {
	return domain.Turn{
		Round:    sequence / 2,
		Side:     side,
		Sequence: sequence,
		Speaker:  domain.SpeakerForSide(side),
	}
}

func TestArgumentClient_GenerateUsesRemoteFirst(t *testing.T) {
	logger := adapters.NewZerologWrapperWithWriter(io.Discard)
	remote := &fakeArgumentGenerator{name: "lmstudio", text: "a remote argument about the topic"}
	fallback := &fakeArgumentGenerator{name: "template", text: "a template argument"}

	client := NewArgumentClient(logger, remote, fallback)

	artifact, err := client.Generate(context.Background(), testTurn(0, domain.SidePro), "robots", nil)
	if err != nil {
		t.Fatal("Generate returned error:", err)
	}
	if artifact.Kind != domain.TextArtifact {
		t.Errorf("artifact kind = %s, want %s", artifact.Kind, domain.TextArtifact)
	}
	if artifact.Text != remote.text {
		t.Errorf("artifact text = %q, want remote text", artifact.Text)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback generator was called %d times", fallback.calls)
	}
}

func TestArgumentClient_GenerateFallsBackOnRemoteFailure(t *testing.T) {
	logger := adapters.NewZerologWrapperWithWriter(io.Discard)
	remote := &fakeArgumentGenerator{name: "lmstudio", err: errors.New("connection refused")}
	fallback := &fakeArgumentGenerator{name: "template", text: "a template argument"}

	client := NewArgumentClient(logger, remote, fallback)

	artifact, err := client.Generate(context.Background(), testTurn(1, domain.SideCon), "robots", nil)
	if err != nil {
		t.Fatal("Generate returned error:", err)
	}
	if artifact.Text != fallback.text {
		t.Errorf("artifact text = %q, want fallback text", artifact.Text)
	}
	if remote.calls != 1 {
		t.Errorf("remote generator was called %d times, want 1", remote.calls)
	}
}

func TestArgumentClient_GenerateSkipsNilRemote(t *testing.T) {
	logger := adapters.NewZerologWrapperWithWriter(io.Discard)
	fallback := &fakeArgumentGenerator{name: "template", text: "a template argument"}

	client := NewArgumentClient(logger, nil, fallback)

	artifact, err := client.Generate(context.Background(), testTurn(0, domain.SidePro), "robots", nil)
	if err != nil {
		t.Fatal("Generate returned error:", err)
	}
	if artifact.Text != fallback.text {
		t.Errorf("artifact text = %q, want fallback text", artifact.Text)
	}
}

func TestArgumentClient_GenerateFailsWhenChainExhausted(t *testing.T) {
	logger := adapters.NewZerologWrapperWithWriter(io.Discard)
	remote := &fakeArgumentGenerator{name: "lmstudio", err: errors.New("boom")}
	fallback := &fakeArgumentGenerator{name: "template", err: errors.New("also boom")}

	client := NewArgumentClient(logger, remote, fallback)

	_, err := client.Generate(context.Background(), testTurn(0, domain.SidePro), "robots", nil)
	if err == nil {
		t.Fatal("Generate succeeded with every generator failing")
	}
	if !domain.IsKind(err, domain.ServiceUnavailableKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.ServiceUnavailableKind)
	}
	if !strings.Contains(err.Error(), "lmstudio") || !strings.Contains(err.Error(), "template") {
		t.Errorf("error %q does not name the tried providers", err.Error())
	}
}

func TestArgumentClient_GenerateRejectsEmptyText(t *testing.T) {
	logger := adapters.NewZerologWrapperWithWriter(io.Discard)
	fallback := &fakeArgumentGenerator{name: "template", text: "   "}

	client := NewArgumentClient(logger, nil, fallback)

	_, err := client.Generate(context.Background(), testTurn(0, domain.SidePro), "robots", nil)
	if err == nil {
		t.Fatal("Generate accepted blank text")
	}
	if !domain.IsKind(err, domain.ValidationKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.ValidationKind)
	}
}
