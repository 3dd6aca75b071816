package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"

	"debate-video-pipeline/application/ports/inbound"
	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/domain"
	"debate-video-pipeline/infrastructure/adapters"
)

type fakeRenderer struct {
	mu       sync.Mutex
	requests []outbound.RenderRequest
	failSeq  int
	failErr  error
	delay    time.Duration
}

func (f *fakeRenderer) Render(ctx context.Context, req outbound.RenderRequest) (*outbound.RenderResult, error) {
	f.mu.Lock()
	sequence := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, domain.NewError(domain.DeadlineExceededKind, ctx.Err())
		case <-time.After(f.delay):
		}
	}
	if f.failErr != nil && sequence == f.failSeq {
		return nil, f.failErr
	}
	return &outbound.RenderResult{
		FileName: req.OutputDir + "/" + req.BaseName + ".mp4",
		Duration: req.AudioDuration,
	}, nil
}

func (f *fakeRenderer) rendered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeCompositor struct {
	mu       sync.Mutex
	segments []domain.Artifact
}

func (f *fakeCompositor) Compose(_ context.Context, req outbound.ComposeRequest) (*outbound.ComposeResult, error) {
	f.mu.Lock()
	f.segments = append([]domain.Artifact(nil), req.Segments...)
	f.mu.Unlock()

	total := 0.0
	for _, segment := range req.Segments {
		total += segment.Duration
	}
	return &outbound.ComposeResult{
		FileName: req.OutputDir + "/" + req.SessionID + "_debate.mp4",
		Duration: total,
	}, nil
}

type fakePublisher struct {
	calls int
}

func (f *fakePublisher) Publish(_ context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	f.calls++
	return &outbound.PublishVideoResponse{
		VideoKey:    "debate/" + req.SessionID,
		StoreRegion: "eu-west-1",
	}, nil
}

func orchestratorProfiles() map[string]domain.VoiceProfile {
	profiles := testProfiles("gtts")
	for speaker, profile := range profiles {
		profile.ImageFileName = "assets/" + speaker + ".jpg"
		profiles[speaker] = profile
	}
	return profiles
}

func newTestOrchestrator(t *testing.T, renderer outbound.LipsyncRendererPort, compositor outbound.CompositorPort,
	publisher outbound.VideoPublisherPort, timeout time.Duration) inbound.DebatePipelinePort {
	t.Helper()

	logger := adapters.NewZerologWrapperWithWriter(io.Discard)

	workerPool, err := ants.NewPool(32)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(workerPool.Release)

	profiles := orchestratorProfiles()
	provider := &fakeSpeechProvider{name: "gtts", configured: true, audio: []byte("audio")}
	voices := NewVoiceSynthesizer(logger, []outbound.SpeechProviderPort{provider},
		&fakeNormalizer{duration: 3.5}, profiles)
	args := NewArgumentClient(logger, nil, &fakeArgumentGenerator{name: "template", text: "an argument"})

	return NewPipelineOrchestrator(logger, workerPool, NewRoundPlanner(false), args, voices,
		renderer, compositor, publisher, nil, profiles, t.TempDir(), t.TempDir(), "", timeout)
}

func TestPipelineOrchestrator_StartPipeline(t *testing.T) {
	renderer := &fakeRenderer{}
	compositor := &fakeCompositor{}
	publisher := &fakePublisher{}
	orchestrator := newTestOrchestrator(t, renderer, compositor, publisher, time.Minute)

	result, err := orchestrator.StartPipeline(context.Background(), inbound.StartPipelineParams{
		SessionID:      "session-1",
		Topic:          "robots will replace programmers",
		Rounds:         2,
		RenderEndpoint: "http://render.example",
	})
	if err != nil {
		t.Fatal("StartPipeline returned error:", err)
	}

	if result.VideoFileName == "" || result.Duration <= 0 {
		t.Errorf("result incomplete: %+v", result)
	}
	if renderer.rendered() != 4 {
		t.Errorf("rendered %d clips, want 4", renderer.rendered())
	}
	if len(compositor.segments) != 4 {
		t.Fatalf("compositor received %d segments, want 4", len(compositor.segments))
	}
	for i, segment := range compositor.segments {
		if segment.Turn.Sequence != i {
			t.Errorf("segment %d has sequence %d", i, segment.Turn.Sequence)
		}
		if segment.Kind != domain.VideoArtifact {
			t.Errorf("segment %d kind = %s", i, segment.Kind)
		}
	}
	if publisher.calls != 1 {
		t.Errorf("publisher called %d times, want 1", publisher.calls)
	}
	if result.VideoKey == "" || result.StoreRegion == "" {
		t.Errorf("published location missing from result: %+v", result)
	}

	// Each render job must use the portrait of its own turn's speaker. The
	// synth stage runs turns concurrently, so requests may arrive in any
	// order; the sequence is recovered from the clip base name.
	for _, req := range renderer.requests {
		seq, err := strconv.Atoi(strings.TrimPrefix(req.BaseName, "turn_"))
		if err != nil {
			t.Fatalf("unexpected render base name %q", req.BaseName)
		}
		side := domain.SidePro
		if seq%2 == 1 {
			side = domain.SideCon
		}
		want := fmt.Sprintf("assets/%s.jpg", domain.SpeakerForSide(side))
		if req.ImageFileName != want {
			t.Errorf("turn %d used image %s, want %s", seq, req.ImageFileName, want)
		}
	}
}

func TestPipelineOrchestrator_RenderFailureNamesStageAndTurn(t *testing.T) {
	renderer := &fakeRenderer{
		failSeq: 1,
		failErr: domain.Errorf(domain.RenderKind, "remote model crashed"),
	}
	orchestrator := newTestOrchestrator(t, renderer, &fakeCompositor{}, nil, time.Minute)

	_, err := orchestrator.StartPipeline(context.Background(), inbound.StartPipelineParams{
		SessionID:      "session-2",
		Topic:          "robots will replace programmers",
		Rounds:         1,
		RenderEndpoint: "http://render.example",
	})
	if err == nil {
		t.Fatal("StartPipeline succeeded with a failing renderer")
	}

	stageErr, ok := err.(*domain.StageError)
	if !ok {
		t.Fatalf("error is %T, want *domain.StageError", err)
	}
	if stageErr.Stage != domain.StageRendering {
		t.Errorf("stage = %s, want %s", stageErr.Stage, domain.StageRendering)
	}
	if stageErr.Turn != 1 {
		t.Errorf("turn = %d, want 1", stageErr.Turn)
	}
	if stageErr.Kind() != domain.RenderKind {
		t.Errorf("kind = %s, want %s", stageErr.Kind(), domain.RenderKind)
	}
	// The first turn completed before the failure.
	if renderer.rendered() != 2 {
		t.Errorf("rendered %d clips before failing, want 2", renderer.rendered())
	}
}

func TestPipelineOrchestrator_RequestDeadline(t *testing.T) {
	renderer := &fakeRenderer{delay: 10 * time.Second}
	orchestrator := newTestOrchestrator(t, renderer, &fakeCompositor{}, nil, 100*time.Millisecond)

	_, err := orchestrator.StartPipeline(context.Background(), inbound.StartPipelineParams{
		SessionID:      "session-3",
		Topic:          "robots will replace programmers",
		Rounds:         1,
		RenderEndpoint: "http://render.example",
	})
	if err == nil {
		t.Fatal("StartPipeline succeeded past its deadline")
	}
	if !domain.IsKind(err, domain.DeadlineExceededKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.DeadlineExceededKind)
	}

	stageErr, ok := err.(*domain.StageError)
	if !ok {
		t.Fatalf("error is %T, want *domain.StageError", err)
	}
	if stageErr.Stage != domain.StageRendering {
		t.Errorf("stage = %s, want %s", stageErr.Stage, domain.StageRendering)
	}
}

func TestPipelineOrchestrator_RejectsBlankTopic(t *testing.T) {
	orchestrator := newTestOrchestrator(t, &fakeRenderer{}, &fakeCompositor{}, nil, time.Minute)

	_, err := orchestrator.StartPipeline(context.Background(), inbound.StartPipelineParams{
		SessionID:      "session-4",
		Topic:          "  ",
		Rounds:         1,
		RenderEndpoint: "http://render.example",
	})
	if err == nil {
		t.Fatal("StartPipeline accepted a blank topic")
	}
	if !domain.IsKind(err, domain.ValidationKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.ValidationKind)
	}
}
