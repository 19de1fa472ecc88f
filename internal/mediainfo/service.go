package mediainfo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// ffprobe constants
const (
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "quiet"
	FFprobeOutputFormat = "json"
	CodecTypeVideo      = "video"
	DispositionCoverArt = "attached_pic"
)

// Service inspects files with ffprobe
type Service struct {
	ffprobe string
}

// NewService creates an inspector running the ffprobe binary at path, or
// the one on PATH when path is empty
func NewService(path string) *Service {
	if path == "" {
		path = FFprobeCommand
	}
	return &Service{ffprobe: path}
}

// Inspect runs a single ffprobe JSON call against path
func (s *Service) Inspect(ctx context.Context, path string) (*model.MediaMeta, error) {
	cmd := exec.CommandContext(ctx, s.ffprobe, s.BuildArgs(path)...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	meta, err := ParseJSON(out)
	if err != nil {
		return nil, err
	}
	if meta.SizeBytes <= 0 {
		if info, err := os.Stat(path); err == nil {
			meta.SizeBytes = info.Size()
		}
	}
	return meta, nil
}

// BuildArgs builds the ffprobe command arguments
func (s *Service) BuildArgs(path string) []string {
	return []string{
		"-v", FFprobeLogLevel,
		"-print_format", FFprobeOutputFormat,
		"-show_format",
		"-show_streams",
		path,
	}
}

// StatOnly returns metadata holding only the file size
func StatOnly(path string) (*model.MediaMeta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &model.MediaMeta{SizeBytes: info.Size()}, nil
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type ffprobeStream struct {
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Duration    string         `json:"duration"`
	Disposition map[string]int `json:"disposition"`
}

// ParseJSON converts raw ffprobe JSON output into metadata. Cover art
// streams do not count as video.
func ParseJSON(data []byte) (*model.MediaMeta, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	meta := &model.MediaMeta{
		SizeBytes:       parseInt(raw.Format.Size),
		DurationSeconds: parseSeconds(raw.Format.Duration),
	}

	for _, st := range raw.Streams {
		if st.CodecType != CodecTypeVideo || st.Disposition[DispositionCoverArt] == 1 {
			continue
		}
		meta.HasVideo = true
		meta.Width = st.Width
		meta.Height = st.Height
		if meta.DurationSeconds == 0 {
			meta.DurationSeconds = parseSeconds(st.Duration)
		}
		break
	}
	return meta, nil
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseSeconds(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return int(v)
}
