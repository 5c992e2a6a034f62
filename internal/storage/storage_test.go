package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
)

func TestProjectObjectLayout(t *testing.T) {
	s := New("https://supabase.example", "key", "launchreel-assets")
	id := uuid.MustParse("4a3a5c1e-9a2f-4b7c-8f3d-1e2a3b4c5d6e")

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"plan", s.PlanPath(id), id.String() + "/plan.json"},
		{"manifest", s.ManifestPath(id), id.String() + "/render_manifest.json"},
		{"voiceover", s.VoiceoverPath(id, 2), id.String() + "/scene_002/voiceover.mp3"},
		{"background", s.ScenePath(id, 11, "background.mp4"), id.String() + "/scene_011/background.mp4"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s path: expected %s, got %s", tc.name, tc.want, tc.got)
		}
	}
}

func TestUploadRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("uploads use PUT, got %s", r.Method)
		}
		if r.Header.Get("x-upsert") != "true" {
			t.Error("uploads must upsert so re-staged media replaces the old object")
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(srv.URL, "key", "launchreel-assets")
	if err := s.Upload(context.Background(), "p/plan.json", []byte(`{}`), "application/json"); err != nil {
		t.Fatalf("upload should survive a transient 503: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestUploadStopsOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(srv.URL, "key", "launchreel-assets")
	if err := s.Upload(context.Background(), "p/plan.json", []byte(`{}`), "application/json"); err == nil {
		t.Fatal("expected an error on 403")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("403 must not be retried, got %d attempts", calls)
	}
}

func TestRetryableStatuses(t *testing.T) {
	for _, status := range []int{408, 429, 502, 503, 504} {
		if !isRetryableStatus(status) {
			t.Errorf("status %d should be retryable", status)
		}
	}
	for _, status := range []int{400, 401, 403, 404, 413} {
		if isRetryableStatus(status) {
			t.Errorf("status %d should not be retryable", status)
		}
	}
}
