package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ytscribe/internal/upstream/youtube"
)

type stubResolver struct {
	text    string
	err     error
	calls   int
	videoID string
}

func (s *stubResolver) Resolve(_ context.Context, videoID string) (string, error) {
	s.calls++
	s.videoID = videoID
	return s.text, s.err
}

func newTestHandler(t *testing.T, res Resolver) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(logger, Dependencies{Resolver: res})
}

func postTranscript(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/get_transcript", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	res := &stubResolver{err: errors.New("should never be called")}
	h := newTestHandler(t, res)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if res.calls != 0 {
		t.Fatalf("health check must not resolve, got %d calls", res.calls)
	}
}

func TestGetTranscriptSuccess(t *testing.T) {
	res := &stubResolver{text: "Hello world"}
	h := newTestHandler(t, res)

	w := postTranscript(h, `{"video_id":"dQw4w9WgXcQ"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"transcript":"Hello world"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if res.videoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected video id passed to resolver: %q", res.videoID)
	}
}

func TestGetTranscriptEmptyTranscriptIsSuccess(t *testing.T) {
	h := newTestHandler(t, &stubResolver{text: ""})

	w := postTranscript(h, `{"video_id":"dQw4w9WgXcQ"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"transcript":""`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetTranscriptDisabledMapsTo404(t *testing.T) {
	upstreamErr := &youtube.TranscriptsDisabledError{VideoID: "dQw4w9WgXcQ"}
	h := newTestHandler(t, &stubResolver{err: upstreamErr})

	w := postTranscript(h, `{"video_id":"dQw4w9WgXcQ"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), upstreamErr.Error()) {
		t.Fatalf("detail should carry the upstream message, got: %s", w.Body.String())
	}
}

func TestGetTranscriptNotFoundMapsTo404(t *testing.T) {
	h := newTestHandler(t, &stubResolver{err: &youtube.NoTranscriptFoundError{
		VideoID:            "dQw4w9WgXcQ",
		RequestedLanguages: []string{"en", "en-US", "en-GB"},
	}})

	w := postTranscript(h, `{"video_id":"dQw4w9WgXcQ"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "no transcript found") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetTranscriptVideoUnavailableMapsTo404(t *testing.T) {
	h := newTestHandler(t, &stubResolver{err: &youtube.VideoUnavailableError{VideoID: "gone"}})

	w := postTranscript(h, `{"video_id":"gone"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
}

func TestGetTranscriptUnclassifiedMapsTo500(t *testing.T) {
	h := newTestHandler(t, &stubResolver{err: errors.New("unexpected error fetching transcript: connection reset")})

	w := postTranscript(h, `{"video_id":"dQw4w9WgXcQ"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"detail"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetTranscriptUnclassifiedLogsUpstreamDiagnostics(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	upstreamErr := &youtube.HTTPError{StatusCode: 503, Body: "<html>temporarily overloaded</html>"}
	res := &stubResolver{err: fmt.Errorf("unexpected error fetching transcript: %w", upstreamErr)}
	h := NewServer(logger, Dependencies{Resolver: res})

	w := postTranscript(h, `{"video_id":"dQw4w9WgXcQ"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(logs.String(), "upstream_status=503") {
		t.Fatalf("log should carry the upstream status, got: %s", logs.String())
	}
	if !strings.Contains(logs.String(), "temporarily overloaded") {
		t.Fatalf("log should carry the upstream body excerpt, got: %s", logs.String())
	}
	if strings.Contains(w.Body.String(), "temporarily overloaded") {
		t.Fatalf("upstream body must not leak into the response: %s", w.Body.String())
	}
}

func TestGetTranscriptMissingVideoID(t *testing.T) {
	res := &stubResolver{}
	h := newTestHandler(t, res)

	for _, body := range []string{`{}`, `{"video_id":""}`, `{"video_id":"   "}`} {
		w := postTranscript(h, body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %s: unexpected status: %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "video_id is required") {
			t.Fatalf("body %s: unexpected response: %s", body, w.Body.String())
		}
	}
	if res.calls != 0 {
		t.Fatalf("resolver must not run for invalid requests, got %d calls", res.calls)
	}
}

func TestGetTranscriptMalformedJSON(t *testing.T) {
	res := &stubResolver{}
	h := newTestHandler(t, res)

	w := postTranscript(h, `{"video_id": `)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "invalid JSON body") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if res.calls != 0 {
		t.Fatalf("resolver must not run for malformed JSON, got %d calls", res.calls)
	}
}

func TestUnknownRouteReturnsDetail(t *testing.T) {
	h := newTestHandler(t, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"detail":"Not Found"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetTranscriptRejectsWrongMethod(t *testing.T) {
	h := newTestHandler(t, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/get_transcript", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestMetricsRouteOnlyWhenHandlerProvided(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metricsStub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("metrics"))
	})

	withMetrics := NewServer(logger, Dependencies{Resolver: &stubResolver{}, MetricsHandler: metricsStub})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	withMetrics.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "metrics" {
		t.Fatalf("metrics route not wired: status=%d body=%s", w.Code, w.Body.String())
	}

	withoutMetrics := NewServer(logger, Dependencies{Resolver: &stubResolver{}})
	w = httptest.NewRecorder()
	withoutMetrics.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a metrics handler, got %d", w.Code)
	}
}

func TestRequestIDEchoedOnResponses(t *testing.T) {
	h := newTestHandler(t, &stubResolver{text: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/get_transcript", strings.NewReader(`{"video_id":"dQw4w9WgXcQ"}`))
	req.Header.Set("X-Request-Id", "test-rid-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "test-rid-42" {
		t.Fatalf("unexpected request id header: %q", got)
	}
}
