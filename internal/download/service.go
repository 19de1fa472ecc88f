package download

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/ytgrab-bot/internal/mediainfo"
	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/platform"
)

// Format selection
const (
	BestAudioFormat  = "bestaudio[ext=m4a]/bestaudio"
	FallbackFormat   = "best"
	AudioFormat      = "m4a"
	MergeFormat      = "mp4"
	FormatSeparator  = "/"
	ProgressInterval = 2 * time.Second
)

// Options configures the acquirer
type Options struct {
	TempDir     string
	CookiesPath string
}

// Service handles download operations
type Service struct {
	runner    Runner
	inspector mediainfo.Inspector
	opts      Options
	now       func() time.Time
	log       zerolog.Logger
}

// NewService creates an acquirer
func NewService(opts Options, runner Runner, inspector mediainfo.Inspector, log zerolog.Logger) *Service {
	return &Service{
		runner:    runner,
		inspector: inspector,
		opts:      opts,
		now:       time.Now,
		log:       log,
	}
}

// BuildSpec resolves req into a yt-dlp invocation writing to base
func (s *Service) BuildSpec(req Request, base string) Spec {
	spec := Spec{
		URL:            req.URL,
		OutputTemplate: platform.OutputTemplate(base),
		CookiesPath:    platform.ExistingFile(s.opts.CookiesPath),
	}

	if req.EncodingRef == model.BestAudioRef {
		spec.Format = BestAudioFormat
		spec.ExtractAudio = true
		spec.AudioFormat = AudioFormat
		return spec
	}

	// degrade to best when the exact encoding disappeared since the probe
	spec.Format = req.EncodingRef + FormatSeparator + FallbackFormat
	spec.MergeFormat = MergeFormat
	return spec
}

// Fetch downloads req into the scratch directory
func (s *Service) Fetch(ctx context.Context, req Request) (*model.AcquisitionResult, error) {
	if err := platform.CreateDirectoryIfNotExists(s.opts.TempDir); err != nil {
		return nil, fmt.Errorf("%w: scratch dir: %v", model.ErrDownload, err)
	}

	base := platform.ArtifactBase(s.opts.TempDir, req.Platform, req.OwnerID, s.now())
	spec := s.BuildSpec(req, base)
	log := s.log.With().Int64("owner", req.OwnerID).Str("format", spec.Format).Logger()

	log.Info().Str("url", req.URL).Msg("download started")

	result, err := s.fetch(ctx, req, spec, base)
	if err != nil {
		if n := platform.RemoveArtifacts(base); n > 0 {
			log.Debug().Int("files", n).Msg("partial artifacts removed")
		}
		log.Warn().Err(err).Msg("download failed")
		return nil, err
	}

	log.Info().Str("artifact", result.ArtifactPath).Stringer("result", result).Msg("download completed")
	return result, nil
}

func (s *Service) fetch(ctx context.Context, req Request, spec Spec, base string) (*model.AcquisitionResult, error) {
	if err := s.runner.Run(ctx, spec); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("%w: %v", model.ErrDownload, err)
	}

	path, err := platform.FindArtifact(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", model.ErrDownload, model.ErrArtifactNotFound, err)
	}

	meta := s.inspect(ctx, path)
	if meta == nil {
		return nil, fmt.Errorf("%w: artifact vanished: %s", model.ErrDownload, path)
	}

	return &model.AcquisitionResult{
		ArtifactPath:    path,
		SizeBytes:       meta.SizeBytes,
		Width:           meta.Width,
		Height:          meta.Height,
		DurationSeconds: meta.DurationSeconds,
		IsAudioOnly:     req.EncodingRef == model.BestAudioRef || platform.IsAudioFile(path),
	}, nil
}

// inspect reads physical metadata, falling back to the file size alone
func (s *Service) inspect(ctx context.Context, path string) *model.MediaMeta {
	if s.inspector != nil {
		meta, err := s.inspector.Inspect(ctx, path)
		if err == nil && meta != nil && meta.SizeBytes > 0 {
			return meta
		}
		if err != nil {
			s.log.Debug().Err(err).Str("artifact", path).Msg("ffprobe failed, using file size only")
		}
	}

	meta, err := mediainfo.StatOnly(path)
	if err != nil {
		return nil
	}
	return meta
}
