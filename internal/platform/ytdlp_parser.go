package platform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// yt-dlp result types
const (
	TypeVideo    = "video"
	TypePlaylist = "playlist"
)

// Codec value yt-dlp reports for an absent stream
const CodecNone = "none"

// ErrEmptyPlaylist is returned for a playlist result without entries
var ErrEmptyPlaylist = errors.New("playlist has no entries")

// ytdlpInfo is the subset of the yt-dlp info dict the pipeline relies on
type ytdlpInfo struct {
	Type       string            `json:"_type"`
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Duration   *float64          `json:"duration"`
	WebpageURL string            `json:"webpage_url"`
	URL        string            `json:"url"`
	Formats    []ytdlpFormat     `json:"formats"`
	Entries    []json.RawMessage `json:"entries"`
}

type ytdlpFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	VCodec         *string  `json:"vcodec"`
	ACodec         *string  `json:"acodec"`
	Height         *float64 `json:"height"`
	FPS            *float64 `json:"fps"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
}

// ParseVideoInfo decodes yt-dlp --dump-single-json output. A playlist result
// is reduced to its first entry and marked FromPlaylist.
func ParseVideoInfo(data []byte) (*model.VideoInfo, error) {
	info, err := decodeInfo(data)
	if err != nil {
		return nil, err
	}

	switch info.Type {
	case "", TypeVideo:
		return info.toModel()
	case TypePlaylist:
		if len(info.Entries) == 0 {
			return nil, ErrEmptyPlaylist
		}
		entry, err := decodeInfo(info.Entries[0])
		if err != nil {
			return nil, fmt.Errorf("playlist entry: %w", err)
		}
		if entry.Type != "" && entry.Type != TypeVideo {
			return nil, fmt.Errorf("playlist entry: unsupported result type %q", entry.Type)
		}
		vi, err := entry.toModel()
		if err != nil {
			return nil, fmt.Errorf("playlist entry: %w", err)
		}
		vi.FromPlaylist = true
		return vi, nil
	default:
		return nil, fmt.Errorf("unsupported result type %q", info.Type)
	}
}

func decodeInfo(data []byte) (*ytdlpInfo, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &info, nil
}

func (y *ytdlpInfo) toModel() (*model.VideoInfo, error) {
	vi := &model.VideoInfo{
		ID:         y.ID,
		Title:      y.Title,
		WebpageURL: y.WebpageURL,
		Encodings:  make([]model.Encoding, 0, len(y.Formats)),
	}
	if vi.WebpageURL == "" {
		vi.WebpageURL = y.URL
	}
	if y.Duration != nil {
		vi.Duration = *y.Duration
	}

	for i, f := range y.Formats {
		if f.FormatID == "" {
			return nil, fmt.Errorf("format %d has no format_id", i)
		}
		vi.Encodings = append(vi.Encodings, model.Encoding{
			FormatID:       f.FormatID,
			Ext:            f.Ext,
			HasVideo:       hasStream(f.VCodec),
			HasAudio:       hasStream(f.ACodec),
			Height:         int(deref(f.Height)),
			FPS:            deref(f.FPS),
			Filesize:       int64(deref(f.Filesize)),
			FilesizeApprox: int64(deref(f.FilesizeApprox)),
		})
	}
	return vi, nil
}

// hasStream treats a missing codec as present; only an explicit "none"
// marks the stream as absent
func hasStream(codec *string) bool {
	return codec == nil || *codec != CodecNone
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
