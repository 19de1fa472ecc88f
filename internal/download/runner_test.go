package download

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestRunnerCommandArgs(t *testing.T) {
	r := NewYtdlpRunner("yt-dlp-test", zerolog.Nop())

	tests := []struct {
		name     string
		spec     Spec
		expected []string
		absent   []string
	}{
		{
			name: "video",
			spec: Spec{URL: "https://vimeo.com/1", Format: "22/best", OutputTemplate: "/tmp/a.%(ext)s", MergeFormat: MergeFormat},
			expected: []string{
				"--no-mtime", "--no-playlist", "--force-overwrites",
				"--format", "22/best", "--merge-output-format", "mp4",
			},
			absent: []string{"--extract-audio"},
		},
		{
			name:     "audio",
			spec:     Spec{URL: "https://vimeo.com/1", Format: BestAudioFormat, OutputTemplate: "/tmp/a.%(ext)s", ExtractAudio: true, AudioFormat: AudioFormat},
			expected: []string{"--no-mtime", "--extract-audio", "--audio-format", "m4a"},
			absent:   []string{"--merge-output-format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := r.command(tt.spec).BuildCommand(context.Background(), tt.spec.URL).Args
			for _, want := range tt.expected {
				if !hasArg(args, want) {
					t.Errorf("Expected %s in %v", want, args)
				}
			}
			for _, unwanted := range tt.absent {
				if hasArg(args, unwanted) {
					t.Errorf("Expected no %s in %v", unwanted, args)
				}
			}
		})
	}
}
