package dispatch

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/platform"
)

// Strategy names
const (
	StrategyAudio    = "audio"
	StrategyVideo    = "video"
	StrategyDocument = "document"
)

// Document naming
const (
	DocumentVideoSuffix = "_video"
	DocumentAudioSuffix = "_audio"
	DefaultDocumentExt  = ".mp4"
)

// Delivery is one artifact to send
type Delivery struct {
	ChatID    int64
	Path      string
	AudioOnly bool
	Meta      model.MediaMeta
	Platform  string
}

// IsAudio reports whether the artifact goes out as audio
func (d Delivery) IsAudio() bool {
	return d.AudioOnly || platform.IsAudioFile(d.Path)
}

// DocumentName returns the file name used for the generic upload
func (d Delivery) DocumentName() string {
	ext := filepath.Ext(d.Path)
	if ext == "" {
		ext = DefaultDocumentExt
	}
	suffix := DocumentVideoSuffix
	if d.IsAudio() {
		suffix = DocumentAudioSuffix
	}
	name := strings.ToLower(d.Platform)
	if name == "" {
		name = platform.DefaultPlatformTag
	}
	return name + suffix + ext
}

// Strategy is one way of delivering an artifact
type Strategy struct {
	Name string
	Send func(ctx context.Context, d Delivery) error
}

// Service tries strategies in order until one succeeds
type Service struct {
	uploader Uploader
	log      zerolog.Logger
}

// NewService creates a dispatcher using uploader
func NewService(uploader Uploader, log zerolog.Logger) *Service {
	return &Service{uploader: uploader, log: log}
}

// Strategies returns the ordered strategies for d
func (s *Service) Strategies(d Delivery) []Strategy {
	typed := Strategy{Name: StrategyVideo, Send: s.sendVideo}
	if d.IsAudio() {
		typed = Strategy{Name: StrategyAudio, Send: s.sendAudio}
	}
	return []Strategy{typed, {Name: StrategyDocument, Send: s.sendDocument}}
}

// Deliver sends d. It returns nil on the first successful strategy and a
// *model.UploadError holding every attempt when all of them fail.
func (s *Service) Deliver(ctx context.Context, d Delivery) error {
	var attempts []model.UploadAttempt

	for _, st := range s.Strategies(d) {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, model.UploadAttempt{Strategy: st.Name, Err: err})
			break
		}

		err := st.Send(ctx, d)
		if err == nil {
			if len(attempts) > 0 {
				s.log.Info().Str("strategy", st.Name).Int("failed_before", len(attempts)).Msg("delivered with fallback")
			}
			return nil
		}

		s.log.Warn().Err(err).Str("strategy", st.Name).Int64("chat", d.ChatID).Msg("upload attempt failed")
		attempts = append(attempts, model.UploadAttempt{Strategy: st.Name, Err: err})
	}

	return &model.UploadError{Attempts: attempts}
}

func (s *Service) sendAudio(ctx context.Context, d Delivery) error {
	return s.uploader.SendAudio(ctx, d.ChatID, d.Path, d.Meta)
}

func (s *Service) sendVideo(ctx context.Context, d Delivery) error {
	return s.uploader.SendVideo(ctx, d.ChatID, d.Path, d.Meta)
}

func (s *Service) sendDocument(ctx context.Context, d Delivery) error {
	return s.uploader.SendDocument(ctx, d.ChatID, d.Path, d.DocumentName())
}
