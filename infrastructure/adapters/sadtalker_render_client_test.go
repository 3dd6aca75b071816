package adapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/config"
	"debate-video-pipeline/domain"
)

func testRenderConfig() *config.RenderConfig {
	return &config.RenderConfig{
		PollInterval:      10 * time.Millisecond,
		PollDeadline:      500 * time.Millisecond,
		SubmitAttempts:    2,
		SubmitBackoff:     time.Millisecond,
		Resubmits:         2,
		DurationTolerance: 0.5,
		MinVideoBytes:     8,
		VerifyTLS:         true,
	}
}

func newTestRenderClient(t *testing.T, cfg *config.RenderConfig, duration float64) *sadTalkerRenderClient {
	t.Helper()
	client := NewSadTalkerRenderClient(NewZerologWrapperWithWriter(io.Discard), cfg).(*sadTalkerRenderClient)
	client.probe = func(_ context.Context, _ string) (float64, error) {
		return duration, nil
	}
	return client
}

func testRenderRequest(t *testing.T, endpoint string) outbound.RenderRequest {
	t.Helper()
	dir := t.TempDir()
	imageFileName := filepath.Join(dir, "person1.jpg")
	audioFileName := filepath.Join(dir, "turn_0.wav")
	if err := os.WriteFile(imageFileName, []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatal("Failed to write image:", err)
	}
	if err := os.WriteFile(audioFileName, []byte("wav bytes"), 0o644); err != nil {
		t.Fatal("Failed to write audio:", err)
	}
	return outbound.RenderRequest{
		Endpoint:      endpoint,
		ImageFileName: imageFileName,
		AudioFileName: audioFileName,
		AudioDuration: 3.0,
		OutputDir:     dir,
		BaseName:      "turn_0",
	}
}

// lipsyncStub is a minimal remote render service for tests. Every submitted
// job walks the status script one poll at a time.
type lipsyncStub struct {
	statuses []string
	video    []byte
	submits  atomic.Int32
	polls    atomic.Int32
}

func (s *lipsyncStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/lipsync/submit", func(w http.ResponseWriter, r *http.Request) {
		s.submits.Add(1)
		s.polls.Store(0)
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-1"})
	})
	mux.HandleFunc("/lipsync/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		idx := int(s.polls.Add(1)) - 1
		if idx >= len(s.statuses) {
			idx = len(s.statuses) - 1
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": s.statuses[idx]})
	})
	mux.HandleFunc("/lipsync/jobs/job-1/result", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"video": base64.StdEncoding.EncodeToString(s.video),
		})
	})
	return mux
}

func TestSadTalkerRenderClient_Render(t *testing.T) {
	stub := &lipsyncStub{
		statuses: []string{"PENDING", "RUNNING", "DONE"},
		video:    []byte("mp4 bytes that pass the size gate"),
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestRenderClient(t, testRenderConfig(), 3.2)
	req := testRenderRequest(t, server.URL)

	result, err := client.Render(context.Background(), req)
	if err != nil {
		t.Fatal("Render returned error:", err)
	}
	if result.Duration != 3.2 {
		t.Errorf("duration = %f, want 3.2", result.Duration)
	}

	video, err := os.ReadFile(result.FileName)
	if err != nil {
		t.Fatal("Result clip not written:", err)
	}
	if string(video) != string(stub.video) {
		t.Error("written clip does not match the remote payload")
	}
	if got := stub.submits.Load(); got != 1 {
		t.Errorf("submitted %d jobs, want 1", got)
	}
}

func TestSadTalkerRenderClient_PollDeadlineIsTerminal(t *testing.T) {
	stub := &lipsyncStub{statuses: []string{"RUNNING"}}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	cfg := testRenderConfig()
	cfg.PollDeadline = 100 * time.Millisecond
	client := newTestRenderClient(t, cfg, 3.0)

	_, err := client.Render(context.Background(), testRenderRequest(t, server.URL))
	if err == nil {
		t.Fatal("Render succeeded on a job that never completed")
	}
	if !domain.IsKind(err, domain.TimeoutKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.TimeoutKind)
	}
	// A stuck job is abandoned, never resubmitted.
	if got := stub.submits.Load(); got != 1 {
		t.Errorf("submitted %d jobs, want 1", got)
	}
}

func TestSadTalkerRenderClient_RemoteFailureIsResubmitted(t *testing.T) {
	stub := &lipsyncStub{statuses: []string{"FAILED"}}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	cfg := testRenderConfig()
	client := newTestRenderClient(t, cfg, 3.0)

	_, err := client.Render(context.Background(), testRenderRequest(t, server.URL))
	if err == nil {
		t.Fatal("Render succeeded on a job that always fails")
	}
	if !domain.IsKind(err, domain.RenderKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.RenderKind)
	}
	if got, want := stub.submits.Load(), int32(1+cfg.Resubmits); got != want {
		t.Errorf("submitted %d jobs, want %d", got, want)
	}
}

func TestSadTalkerRenderClient_UnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := newTestRenderClient(t, testRenderConfig(), 3.0)

	_, err := client.Render(context.Background(), testRenderRequest(t, endpoint))
	if err == nil {
		t.Fatal("Render succeeded against a dead endpoint")
	}
	if !domain.IsKind(err, domain.ConnectionKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.ConnectionKind)
	}
}

func TestSadTalkerRenderClient_RejectsUndersizedResult(t *testing.T) {
	stub := &lipsyncStub{statuses: []string{"DONE"}, video: []byte("tiny")}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	cfg := testRenderConfig()
	client := newTestRenderClient(t, cfg, 3.0)

	_, err := client.Render(context.Background(), testRenderRequest(t, server.URL))
	if err == nil {
		t.Fatal("Render accepted an undersized clip")
	}
	if !domain.IsKind(err, domain.RenderKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.RenderKind)
	}
	// Undersized results count as remote failures and burn the resubmit
	// budget before surfacing.
	if got, want := stub.submits.Load(), int32(1+cfg.Resubmits); got != want {
		t.Errorf("submitted %d jobs, want %d", got, want)
	}
}

func TestSadTalkerRenderClient_RejectsDurationDrift(t *testing.T) {
	stub := &lipsyncStub{
		statuses: []string{"DONE"},
		video:    []byte("mp4 bytes that pass the size gate"),
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	// Audio is 3.0s but the clip probes at 5.0s.
	client := newTestRenderClient(t, testRenderConfig(), 5.0)

	_, err := client.Render(context.Background(), testRenderRequest(t, server.URL))
	if err == nil {
		t.Fatal("Render accepted a clip with drifting duration")
	}
	if !domain.IsKind(err, domain.RenderKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.RenderKind)
	}
}
