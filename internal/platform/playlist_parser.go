package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 30 * time.Second
)

// URL parameters
const (
	PlaylistQueryKey = "list"
	VideoQueryKey    = "v"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// firstItemFunc returns the video id of the first playlist entry
type firstItemFunc func(ctx context.Context, playlistID string) (string, error)

// PlaylistResolver turns YouTube playlist URLs into the URL of their first video
type PlaylistResolver struct {
	timeout   time.Duration
	firstItem firstItemFunc
}

// NewPlaylistResolver creates a resolver backed by the YouTube playlist API client
func NewPlaylistResolver() *PlaylistResolver {
	return &PlaylistResolver{
		timeout:   DefaultPlaylistParseTimeout,
		firstItem: fetchFirstItem,
	}
}

// SetTimeout sets the timeout for resolve operations
func (p *PlaylistResolver) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// ExtractPlaylistID returns the list parameter of a YouTube URL that does
// not also select a video
func ExtractPlaylistID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return ""
	}
	q := u.Query()
	if q.Get(VideoQueryKey) != "" {
		return ""
	}
	return q.Get(PlaylistQueryKey)
}

// ResolveFirst returns the watch URL of the first video of the playlist in
// rawURL. ok is false when rawURL is not a playlist URL.
func (p *PlaylistResolver) ResolveFirst(ctx context.Context, rawURL string) (string, bool, error) {
	playlistID := ExtractPlaylistID(rawURL)
	if playlistID == "" {
		return "", false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	videoID, err := p.firstItem(ctx, playlistID)
	if err != nil {
		return "", true, fmt.Errorf("failed to get playlist items: %w", err)
	}
	if videoID == "" {
		return "", true, ErrEmptyPlaylist
	}
	return fmt.Sprintf(YouTubeVideoURLTemplate, videoID), true, nil
}

func fetchFirstItem(ctx context.Context, playlistID string) (string, error) {
	// limit 0 pages through the whole playlist; only the head is needed
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 1)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrEmptyPlaylist
	}
	return items[0].VideoID, nil
}
