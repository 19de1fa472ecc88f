package mediainfo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseJSONVideo(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "audio", "channels": 2},
			{"codec_type": "video", "width": 1280, "height": 720, "duration": "12.9"}
		],
		"format": {"duration": "", "size": "1048576"}
	}`)

	meta, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !meta.HasVideo || meta.Width != 1280 || meta.Height != 720 {
		t.Errorf("Unexpected video fields: %+v", meta)
	}
	if meta.DurationSeconds != 12 {
		t.Errorf("Expected stream duration fallback of 12s, got %d", meta.DurationSeconds)
	}
	if meta.SizeBytes != 1048576 {
		t.Errorf("Expected size 1048576, got %d", meta.SizeBytes)
	}
}

func TestParseJSONAudioWithCover(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "audio"},
			{"codec_type": "video", "width": 600, "height": 600, "disposition": {"attached_pic": 1}}
		],
		"format": {"duration": "215.4", "size": "3400000"}
	}`)

	meta, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if meta.HasVideo || meta.Width != 0 {
		t.Errorf("Expected cover art to be ignored, got %+v", meta)
	}
	if meta.DurationSeconds != 215 {
		t.Errorf("Expected 215s, got %d", meta.DurationSeconds)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestBuildArgs(t *testing.T) {
	s := NewService("")
	if s.ffprobe != FFprobeCommand {
		t.Errorf("Expected default ffprobe command, got %s", s.ffprobe)
	}

	args := s.BuildArgs("/tmp/a.mp4")
	expected := []string{"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", "/tmp/a.mp4"}
	if len(args) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, args)
	}
	for i := range expected {
		if args[i] != expected[i] {
			t.Errorf("Arg %d: expected %s, got %s", i, expected[i], args[i])
		}
	}
}

func TestInspectMissingBinary(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "no-ffprobe"))
	if _, err := s.Inspect(context.Background(), "/tmp/a.mp4"); err == nil {
		t.Error("Expected error when ffprobe is missing")
	}
}

func TestStatOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.m4a")
	if err := os.WriteFile(path, make([]byte, 2048), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	meta, err := StatOnly(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if meta.SizeBytes != 2048 || meta.HasVideo {
		t.Errorf("Unexpected meta %+v", meta)
	}

	if _, err := StatOnly(path + ".missing"); err == nil {
		t.Error("Expected error for missing file")
	}
}
