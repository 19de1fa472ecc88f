package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/ytgrab-bot/internal/dispatch"
	"github.com/ytget/ytgrab-bot/internal/download"
	"github.com/ytget/ytgrab-bot/internal/events"
	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/notice"
	"github.com/ytget/ytgrab-bot/internal/platform"
	"github.com/ytget/ytgrab-bot/internal/quality"
	"github.com/ytget/ytgrab-bot/internal/session"
)

// Limits bounds each stage
type Limits struct {
	ProbeTimeout    time.Duration
	DownloadTimeout time.Duration
	UploadTimeout   time.Duration
	MaxUploadBytes  int64
}

// Deps are the collaborators of the pipeline
type Deps struct {
	Detector   Detector
	Prober     Prober
	Store      session.Store
	Acquirer   download.Acquirer
	Dispatcher dispatch.Dispatcher
	Notifier   Notifier
	Publisher  events.Publisher
	Texts      *notice.Localization
}

// Service runs the acquisition pipeline
type Service struct {
	Deps
	limits Limits
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a pipeline
func NewService(deps Deps, limits Limits, log zerolog.Logger) *Service {
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	if deps.Texts == nil {
		deps.Texts = notice.NewLocalization(notice.DefaultLanguageCode)
	}
	return &Service{
		Deps:   deps,
		limits: limits,
		now:    time.Now,
		log:    log,
	}
}

// progress is the status message shown for one request
type progress struct {
	chatID int64
	ref    model.MessageRef
	posted bool
}

// HandleSubmission handles a URL sent by owner: Idle → Analyzing →
// OptionsPresented, or back to Idle for unsupported platforms.
func (s *Service) HandleSubmission(ctx context.Context, sub model.Submission) model.Outcome {
	log := s.log.With().Int64("owner", sub.OwnerID).Str("url", sub.URL).Logger()

	name, ok := s.Detector.Detect(sub.URL)
	if !ok {
		log.Info().Msg("unsupported platform")
		s.show(ctx, &progress{chatID: sub.ChatID}, s.Texts.Unsupported(s.Detector.Platforms()), nil)
		return model.Outcome{State: model.StateIdle, Err: model.ErrUnsupportedPlatform}
	}

	p := &progress{chatID: sub.ChatID}
	s.show(ctx, p, s.Texts.GetText(notice.KeyAnalyzing), nil)
	log.Debug().Str("platform", name).Stringer("state", model.StateAnalyzing).Msg("probing")

	probeCtx, cancel := context.WithTimeout(ctx, s.limits.ProbeTimeout)
	info, err := s.Prober.Probe(probeCtx, sub.URL)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("probe failed")
		s.show(ctx, p, s.Texts.GetText(notice.KeyAnalyzeFailed), nil)
		return s.abort(ctx, sub.OwnerID, name, model.StateAnalyzing, err)
	}

	buttons := s.buttons(log, name, sub.OwnerID, quality.Derive(info))
	if len(buttons) == 0 {
		log.Warn().Int("encodings", len(info.Encodings)).Msg("no quality options")
		s.show(ctx, p, s.Texts.GetText(notice.KeyNoOptions), nil)
		return s.abort(ctx, sub.OwnerID, name, model.StateAnalyzing, model.ErrNoOptions)
	}

	sess := model.Session{
		OwnerID:   sub.OwnerID,
		SourceURL: sub.URL,
		Platform:  name,
		CreatedAt: s.now(),
	}
	if info.FromPlaylist {
		sess.ItemURL = info.WebpageURL
	}
	if err := s.Store.Put(ctx, sess); err != nil {
		log.Error().Err(err).Msg("failed to store session")
		s.show(ctx, p, s.Texts.GetText(notice.KeyFailed), nil)
		return s.abort(ctx, sub.OwnerID, name, model.StateAnalyzing, err)
	}

	text := s.Texts.SelectQuality(name)
	if info.FromPlaylist {
		text += "\n\n" + s.Texts.GetText(notice.KeyPlaylistReduced)
	}
	s.show(ctx, p, text, buttons)

	log.Info().Str("platform", name).Int("options", len(buttons)).Msg("options presented")
	return model.Outcome{State: model.StateOptionsPresented}
}

// HandleCallback handles a quality button press: OptionsPresented →
// Downloading → Validating → Uploading → Done, or Aborted at any stage.
func (s *Service) HandleCallback(ctx context.Context, cb model.Callback) model.Outcome {
	token, err := model.ParseCallbackToken(cb.Data)
	if err != nil {
		s.log.Debug().Err(err).Str("data", cb.Data).Msg("ignoring callback")
		s.answer(ctx, cb.ID, "", false)
		return model.Outcome{State: model.StateIdle, Ignored: true, Err: err}
	}

	log := s.log.With().Int64("owner", token.OwnerID).Int64("caller", cb.CallerID).Logger()

	if token.OwnerID != cb.CallerID {
		log.Info().Msg("callback from another user")
		s.answer(ctx, cb.ID, s.Texts.GetText(notice.KeyNotYourDownload), true)
		return model.Outcome{State: model.StateOptionsPresented, Err: model.ErrSessionExpiredOrForeign}
	}

	sess, err := s.Store.Take(ctx, token.OwnerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to take session")
	}
	if sess == nil {
		log.Info().Msg("session expired or already used")
		s.answer(ctx, cb.ID, s.Texts.GetText(notice.KeyDownloadExpired), true)
		return model.Outcome{State: model.StateIdle, Err: model.ErrSessionExpiredOrForeign}
	}

	// a button from a superseded options message must not consume the newer session
	if token.Platform != sess.Platform {
		log.Info().Str("token_platform", token.Platform).Str("session_platform", sess.Platform).Msg("stale callback")
		if err := s.Store.Put(ctx, *sess); err != nil {
			log.Error().Err(err).Msg("failed to restore session")
		}
		s.answer(ctx, cb.ID, s.Texts.GetText(notice.KeyDownloadExpired), true)
		return model.Outcome{State: model.StateOptionsPresented, Err: model.ErrSessionExpiredOrForeign}
	}

	s.answer(ctx, cb.ID, s.Texts.GetText(notice.KeyProcessing), false)

	p := &progress{chatID: cb.ChatID}
	if cb.MessageID != 0 {
		p.ref = model.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID}
		p.posted = true
	}
	return s.acquire(ctx, log, sess, token.EncodingRef, p)
}

func (s *Service) acquire(ctx context.Context, log zerolog.Logger, sess *model.Session, ref string, p *progress) model.Outcome {
	s.show(ctx, p, s.Texts.GetText(notice.KeyDownloading), nil)
	log.Debug().Str("encoding", ref).Stringer("state", model.StateDownloading).Msg("acquiring")

	fetchCtx, cancel := context.WithTimeout(ctx, s.limits.DownloadTimeout)
	result, err := s.Acquirer.Fetch(fetchCtx, download.Request{
		URL:         sess.FetchURL(),
		EncodingRef: ref,
		OwnerID:     sess.OwnerID,
		Platform:    sess.Platform,
	})
	cancel()
	if err != nil {
		s.show(ctx, p, s.Texts.GetText(notice.KeyFailed), nil)
		return s.abort(ctx, sess.OwnerID, sess.Platform, model.StateDownloading, err)
	}
	defer s.cleanup(log, result.ArtifactPath)

	s.show(ctx, p, s.Texts.GetText(notice.KeyChecking), nil)
	if limit := s.limits.MaxUploadBytes; limit > 0 && result.SizeBytes > limit {
		log.Info().Int64("size", result.SizeBytes).Int64("limit", limit).Msg("artifact too large")
		s.show(ctx, p, s.Texts.TooLarge(result.SizeMB(), limit/model.MiB), nil)
		return s.abort(ctx, sess.OwnerID, sess.Platform, model.StateValidating,
			&model.SizeExceededError{SizeBytes: result.SizeBytes, LimitBytes: limit})
	}

	s.show(ctx, p, s.Texts.GetText(notice.KeySending), nil)
	uploadCtx, cancel := context.WithTimeout(ctx, s.limits.UploadTimeout)
	err = s.Dispatcher.Deliver(uploadCtx, dispatch.Delivery{
		ChatID:    p.chatID,
		Path:      result.ArtifactPath,
		AudioOnly: result.IsAudioOnly,
		Meta:      result.Meta(),
		Platform:  sess.Platform,
	})
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("upload failed")
		s.show(ctx, p, s.Texts.GetText(notice.KeyFailed), nil)
		return s.abort(ctx, sess.OwnerID, sess.Platform, model.StateUploading, err)
	}

	s.show(ctx, p, s.Texts.Sent(result.SizeMB()), nil)
	log.Info().Stringer("result", result).Msg("delivered")

	e := events.NewEvent(events.TypeDelivered, sess.OwnerID, s.now())
	e.Platform = sess.Platform
	e.SizeBytes = result.SizeBytes
	e.AudioOnly = result.IsAudioOnly
	s.publish(ctx, e)

	return model.Outcome{State: model.StateDone}
}

// abort records a failed stage and publishes it
func (s *Service) abort(ctx context.Context, owner int64, platformName string, stage model.State, err error) model.Outcome {
	e := events.NewEvent(events.TypeAborted, owner, s.now())
	e.Platform = platformName
	e.Stage = stage.String()
	e.Reason = reason(err)
	s.publish(ctx, e)

	return model.Aborted(stage, err)
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.Publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn().Err(err).Str("event", e.Type).Msg("failed to publish event")
	}
}

// cleanup removes the artifact; it runs once per acquired artifact
func (s *Service) cleanup(log zerolog.Logger, path string) {
	if err := platform.RemoveArtifact(path); err != nil {
		log.Warn().Err(err).Str("artifact", path).Msg("failed to remove artifact")
		return
	}
	log.Debug().Str("artifact", path).Msg("artifact removed")
}

func (s *Service) buttons(log zerolog.Logger, platformName string, owner int64, options []model.QualityOption) []model.Button {
	buttons := make([]model.Button, 0, len(options))
	for _, o := range options {
		data, err := model.NewDownloadToken(platformName, o.EncodingRef, owner).Encode()
		if err != nil {
			log.Debug().Err(err).Str("encoding", o.EncodingRef).Msg("skipping option")
			continue
		}
		buttons = append(buttons, model.Button{Text: quality.ButtonText(o), Data: data})
	}
	return buttons
}

// show edits the status message, posting it first when needed
func (s *Service) show(ctx context.Context, p *progress, text string, buttons []model.Button) {
	if p.posted {
		if err := s.Notifier.Edit(ctx, p.ref, text, buttons); err != nil {
			s.log.Debug().Err(err).Msg("failed to edit status message")
		}
		return
	}

	ref, err := s.Notifier.Send(ctx, p.chatID, text, buttons)
	if err != nil {
		s.log.Warn().Err(err).Int64("chat", p.chatID).Msg("failed to send status message")
		return
	}
	p.ref = ref
	p.posted = true
}

func (s *Service) answer(ctx context.Context, callbackID, text string, alert bool) {
	if callbackID == "" {
		return
	}
	if err := s.Notifier.Answer(ctx, callbackID, text, alert); err != nil {
		s.log.Debug().Err(err).Msg("failed to answer callback")
	}
}

// reason maps an error to its taxonomy message
func reason(err error) string {
	for _, target := range []error{
		model.ErrProbe,
		model.ErrNoOptions,
		model.ErrArtifactNotFound,
		model.ErrDownload,
		model.ErrSizeExceeded,
		model.ErrUpload,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
