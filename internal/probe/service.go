package probe

import (
	"context"
	"fmt"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"

	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/platform"
)

// Probe arguments
const (
	FirstPlaylistItem = "1"
)

// dumpFunc returns the single-JSON metadata document for url
type dumpFunc func(ctx context.Context, url, cookiesPath string) ([]byte, error)

// playlistResolver maps a playlist URL to the URL of its first item
type playlistResolver interface {
	ResolveFirst(ctx context.Context, rawURL string) (string, bool, error)
}

// Options configures the probe
type Options struct {
	YtdlpPath   string
	CookiesPath string
}

// Service probes source URLs
type Service struct {
	dump        dumpFunc
	resolver    playlistResolver
	cookiesPath string
	log         zerolog.Logger
}

// NewService creates a probe running yt-dlp
func NewService(opts Options, resolver playlistResolver, log zerolog.Logger) *Service {
	return &Service{
		dump:        ytdlpDump(opts.YtdlpPath),
		resolver:    resolver,
		cookiesPath: opts.CookiesPath,
		log:         log,
	}
}

// Probe returns the validated metadata for rawURL. Playlists are reduced
// to their first entry. Every failure matches model.ErrProbe.
func (s *Service) Probe(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	target := rawURL
	resolved := false

	if s.resolver != nil {
		itemURL, ok, err := s.resolver.ResolveFirst(ctx, rawURL)
		switch {
		case ok && err == nil:
			target = itemURL
			resolved = true
		case ok:
			s.log.Warn().Err(err).Str("url", rawURL).Msg("playlist lookup failed, letting yt-dlp pick the first entry")
		}
	}

	out, err := s.dump(ctx, target, s.cookies())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("%w: %v", model.ErrProbe, err)
	}

	info, err := platform.ParseVideoInfo(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProbe, err)
	}

	if resolved {
		info.FromPlaylist = true
		if info.WebpageURL == "" {
			info.WebpageURL = target
		}
	}
	if info.FromPlaylist {
		s.log.Warn().Str("url", rawURL).Str("item", info.WebpageURL).Msg("playlist reduced to its first entry")
	}

	s.log.Debug().
		Str("id", info.ID).
		Int("encodings", len(info.Encodings)).
		Float64("duration", info.Duration).
		Msg("probe complete")
	return info, nil
}

// cookies returns the cookies file path when the file exists
func (s *Service) cookies() string {
	path := platform.ExistingFile(s.cookiesPath)
	if path == "" && s.cookiesPath != "" {
		s.log.Debug().Str("path", s.cookiesPath).Msg("cookies file not found, continuing without")
	}
	return path
}

// dumpCommand builds the metadata-only invocation. NoPlaylist keeps a
// watch URL carrying a list parameter on the linked video; pure playlist
// URLs still expand and are cut to their first entry.
func dumpCommand(executable, cookiesPath string) *ytdlp.Command {
	cmd := ytdlp.New().
		DumpSingleJSON().
		SkipDownload().
		NoPlaylist().
		NoWarnings().
		PlaylistItems(FirstPlaylistItem)

	if executable != "" {
		cmd.SetExecutable(executable)
	}
	if cookiesPath != "" {
		cmd.Cookies(cookiesPath)
	}
	return cmd
}

func ytdlpDump(executable string) dumpFunc {
	return func(ctx context.Context, url, cookiesPath string) ([]byte, error) {
		result, err := dumpCommand(executable, cookiesPath).Run(ctx, url)
		if err != nil {
			return nil, err
		}
		return []byte(result.Stdout), nil
	}
}
