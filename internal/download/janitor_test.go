package download

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/ytgrab-bot/internal/platform"
)

func TestJanitorSweep(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	stale := platform.ArtifactBase(dir, platform.YouTube, 42, now.Add(-2*time.Hour)) + ".mp4"
	fresh := platform.ArtifactBase(dir, platform.YouTube, 42, now.Add(-time.Minute)) + ".mp4"
	foreign := filepath.Join(dir, "notes.txt")
	for _, p := range []string{stale, fresh, foreign} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	old := now.Add(-2 * time.Hour)
	if err := os.Chtimes(foreign, old, old); err != nil {
		t.Fatal(err)
	}

	j := NewJanitor(dir, time.Hour, time.Minute, zerolog.Nop())
	j.now = func() time.Time { return now }

	if removed := j.Sweep(); removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Expected stale artifact to be removed")
	}
	for _, p := range []string{fresh, foreign} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s to survive, got %v", filepath.Base(p), err)
		}
	}
}

// agingRunner writes the artifact with a year-old mtime, as yt-dlp does
// when it copies the source's Last-Modified
type agingRunner struct{}

func (agingRunner) Run(ctx context.Context, spec Spec) error {
	path := strings.TrimSuffix(spec.OutputTemplate, platform.OutputExtTemplate) + ".mp4"
	if err := os.WriteFile(path, make([]byte, 1024), 0o644); err != nil {
		return err
	}
	old := time.Now().AddDate(-1, 0, 0)
	return os.Chtimes(path, old, old)
}

func TestJanitorKeepsInFlightArtifact(t *testing.T) {
	dir := t.TempDir()
	s := NewService(Options{TempDir: dir}, agingRunner{}, fakeInspector{}, zerolog.Nop())

	result, err := s.Fetch(context.Background(), Request{URL: "https://youtu.be/abc", EncodingRef: "22", OwnerID: 1, Platform: platform.YouTube})
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got %v", err)
	}

	j := NewJanitor(dir, time.Hour, time.Minute, zerolog.Nop())
	if removed := j.Sweep(); removed != 0 {
		t.Errorf("Expected 0 removed, got %d", removed)
	}
	if _, err := os.Stat(result.ArtifactPath); err != nil {
		t.Errorf("Expected in-flight artifact to survive, got %v", err)
	}
}

func TestJanitorStartStops(t *testing.T) {
	j := NewJanitor(t.TempDir(), time.Hour, time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected janitor to stop after cancel")
	}
}

func TestJanitorMissingDir(t *testing.T) {
	j := NewJanitor(filepath.Join(t.TempDir(), "missing"), time.Hour, time.Minute, zerolog.Nop())
	if removed := j.Sweep(); removed != 0 {
		t.Errorf("Expected 0 removed, got %d", removed)
	}
}
