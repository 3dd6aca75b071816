package adapters

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"debate-video-pipeline/domain"
)

func TestContentFetcher_RetriesGatewayErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	fetcher := NewContentFetcher(NewZerologWrapperWithWriter(io.Discard))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal("Failed to build request:", err)
	}

	payload, err := fetcher.FetchContent(req)
	if err != nil {
		t.Fatal("FetchContent returned error:", err)
	}
	if string(payload) != "payload" {
		t.Errorf("payload = %q", payload)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2", got)
	}
}

func TestContentFetcher_DoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fetcher := NewContentFetcher(NewZerologWrapperWithWriter(io.Discard))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal("Failed to build request:", err)
	}

	_, err = fetcher.FetchContent(req)
	if err == nil {
		t.Fatal("FetchContent succeeded on a 401")
	}
	if !domain.IsKind(err, domain.TransientNetworkKind) {
		t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.TransientNetworkKind)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

func TestContentFetcher_ExhaustsRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewContentFetcher(NewZerologWrapperWithWriter(io.Discard))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal("Failed to build request:", err)
	}

	_, err = fetcher.FetchContent(req)
	if err == nil {
		t.Fatal("FetchContent succeeded on a persistent 502")
	}
	if got := hits.Load(); got != fetchAttempts {
		t.Errorf("server hit %d times, want %d", got, fetchAttempts)
	}
}
