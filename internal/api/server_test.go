package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/report"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.EngineConfig.ArtistWindow == 0 {
		cfg.EngineConfig = meta.DefaultEngineConfig()
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeSummary(t *testing.T, w *httptest.ResponseRecorder) report.Summary {
	t.Helper()
	var sum report.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return sum
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	w := do(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestRenameEndpoint(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Artist_-_Song [Free DL].mp3", "track.mp3", "[].mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	s := newTestServer(t, Config{JournalPath: filepath.Join(t.TempDir(), "journal.db")})
	w := do(t, s, http.MethodPost, "/api/rename", `{"folder":"`+dir+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	sum := decodeSummary(t, w)
	if sum.Count != 1 || !sum.Success {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Renamed[0].OldName != "Artist_-_Song [Free DL].mp3" || sum.Renamed[0].NewName != "Artist - Song.mp3" {
		t.Errorf("unexpected rename: %+v", sum.Renamed[0])
	}
	if len(sum.Skipped) != 2 {
		t.Errorf("expected 2 skipped, got %+v", sum.Skipped)
	}
	if sum.RunID == "" {
		t.Error("journaled batch should report its run id")
	}
	if _, err := os.Stat(filepath.Join(dir, "Artist - Song.mp3")); err != nil {
		t.Errorf("file was not renamed: %v", err)
	}

	// metrics reflect the batch
	m := do(t, s, http.MethodGet, "/metrics", "")
	if !strings.Contains(m.Body.String(), `cb_files_total{outcome="renamed"} 1`) {
		t.Errorf("metrics missing renamed counter:\n%s", m.Body.String())
	}

	// and the batch can be undone
	u := do(t, s, http.MethodPost, "/api/undo", "")
	if u.Code != http.StatusOK {
		t.Fatalf("undo: expected 200, got %d: %s", u.Code, u.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "Artist_-_Song [Free DL].mp3")); err != nil {
		t.Errorf("undo did not restore the original name: %v", err)
	}
}

func TestRenameEndpoint_DryRun(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Artist_-_Song.mp3"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	s := newTestServer(t, Config{})
	w := do(t, s, http.MethodPost, "/api/rename", `{"folder":"`+dir+`","dry_run":true}`)
	sum := decodeSummary(t, w)
	if sum.Count != 1 || !sum.DryRun {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if _, err := os.Stat(filepath.Join(dir, "Artist_-_Song.mp3")); err != nil {
		t.Errorf("dry run moved the file: %v", err)
	}
}

func TestRenameEndpoint_BadRequests(t *testing.T) {
	s := newTestServer(t, Config{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing folder", `{}`, http.StatusBadRequest},
		{"malformed", `{"folder":`, http.StatusBadRequest},
		{"not a directory", `{"folder":"/definitely/not/here"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/rename", tt.body)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, w.Code)
			}
			sum := decodeSummary(t, w)
			if sum.Success || len(sum.Errors) != 1 {
				t.Errorf("unexpected summary: %+v", sum)
			}
		})
	}
}

func TestUndoEndpoint_NoJournal(t *testing.T) {
	s := newTestServer(t, Config{})
	w := do(t, s, http.MethodPost, "/api/undo", "")
	if w.Code != http.StatusNotImplemented {
		t.Errorf("expected 501, got %d", w.Code)
	}
}

func TestConfigEndpoint(t *testing.T) {
	cfg := meta.DefaultEngineConfig()
	cfg.Junk = meta.JunkConfig{"[Promo]": meta.ActionStrip}
	s := newTestServer(t, Config{EngineConfig: cfg})

	w := do(t, s, http.MethodGet, "/api/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	type ruleView struct {
		Name string `json:"name"`
	}
	var body struct {
		JunkMarkers  []string   `json:"junk_markers"`
		Rules        []ruleView `json:"rules"`
		ArtistWindow float64    `json:"artist_window"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.JunkMarkers[len(body.JunkMarkers)-1] != "[Promo]" {
		t.Errorf("custom marker missing: %v", body.JunkMarkers)
	}
	if len(body.Rules) != len(meta.DefaultRules()) || body.Rules[0].Name != meta.RuleSeparator {
		t.Errorf("unexpected rules: %+v", body.Rules)
	}
	if body.ArtistWindow != meta.DefaultArtistWindow {
		t.Errorf("unexpected window %v", body.ArtistWindow)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := meta.DefaultEngineConfig()
	cfg.Junk = meta.JunkConfig{"re:(": meta.ActionStrip}
	if _, err := New(Config{EngineConfig: cfg}); err == nil {
		t.Error("expected invalid junk pattern to be rejected")
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, Config{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/rename", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}
