package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/spf13/cobra"

	"github.com/ytget/ytgrab-bot/internal/config"
	"github.com/ytget/ytgrab-bot/internal/dispatch"
	"github.com/ytget/ytgrab-bot/internal/download"
	"github.com/ytget/ytgrab-bot/internal/events"
	"github.com/ytget/ytgrab-bot/internal/logging"
	"github.com/ytget/ytgrab-bot/internal/mediainfo"
	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/notice"
	"github.com/ytget/ytgrab-bot/internal/pipeline"
	"github.com/ytget/ytgrab-bot/internal/platform"
	"github.com/ytget/ytgrab-bot/internal/probe"
	"github.com/ytget/ytgrab-bot/internal/session"
	"github.com/ytget/ytgrab-bot/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	if cfg.Telegram.Token == "" {
		return errors.New("bot token is required (set BOT_TOKEN or telegram.token)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("version", Version).Msg("ytgrab-bot starting")

	if err := platform.CreateDirectoryIfNotExists(cfg.Download.TempDir); err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}

	if cfg.Download.AutoInstall && cfg.Download.YtdlpPath == "" {
		installed, err := ytdlp.Install(ctx, nil)
		if err != nil {
			return fmt.Errorf("installing yt-dlp: %w", err)
		}
		cfg.Download.YtdlpPath = installed.Executable
		logger.Info().Str("path", installed.Executable).Str("version", installed.Version).Msg("yt-dlp ready")
	}

	texts := notice.NewLocalization(cfg.Language)
	logger.Info().Str("language", texts.GetCurrentLanguage()).Msg("notices loaded")

	store, err := session.Open(cfg.Session.Backend, cfg.Session.DSN, cfg.Session.TTL.Duration)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer store.Close()

	publisher, err := newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	bot, err := telegram.NewBot(telegram.Options{
		Token:           cfg.Telegram.Token,
		APIEndpoint:     cfg.APIEndpoint(),
		WebhookEndpoint: webhookEndpoint(cfg),
		WebhookPath:     cfg.Telegram.WebhookPath,
		ListenAddr:      cfg.Telegram.ListenAddr,
		PollTimeout:     cfg.Telegram.PollTimeout,
		MaxConcurrent:   cfg.GetMaxConcurrent(),
		RequestTimeout:  cfg.Download.UploadTimeout.Duration,
	}, texts, logging.Component(logger, "telegram"))
	if err != nil {
		return err
	}

	inspector := mediainfo.NewService(cfg.Download.FfprobePath)
	runner := download.NewYtdlpRunner(cfg.Download.YtdlpPath, logging.Component(logger, "ytdlp"))

	resolver := platform.NewPlaylistResolver()
	resolver.SetTimeout(cfg.Download.ProbeTimeout.Duration)

	svc := pipeline.NewService(pipeline.Deps{
		Detector: platform.NewDetector(cfg.Platforms),
		Prober: probe.NewService(probe.Options{
			YtdlpPath:   cfg.Download.YtdlpPath,
			CookiesPath: cfg.Download.CookiesPath,
		}, resolver, logging.Component(logger, "probe")),
		Store: store,
		Acquirer: download.NewService(download.Options{
			TempDir:     cfg.Download.TempDir,
			CookiesPath: cfg.Download.CookiesPath,
		}, runner, inspector, logging.Component(logger, "download")),
		Dispatcher: dispatch.NewService(bot, logging.Component(logger, "dispatch")),
		Notifier:   bot,
		Publisher:  publisher,
		Texts:      texts,
	}, pipeline.Limits{
		ProbeTimeout:    cfg.Download.ProbeTimeout.Duration,
		DownloadTimeout: cfg.Download.DownloadTimeout.Duration,
		UploadTimeout:   cfg.Download.UploadTimeout.Duration,
		MaxUploadBytes:  cfg.UploadLimit(),
	}, logging.Component(logger, "pipeline"))
	bot.SetHandler(svc)

	interval := positive(cfg.Download.JanitorInterval, config.DefaultJanitorInterval)
	maxAge := positive(cfg.Download.ArtifactMaxAge, config.DefaultArtifactMaxAge)
	go session.NewJanitor(store, interval, logging.Component(logger, "session")).Start(ctx)
	go download.NewJanitor(cfg.Download.TempDir, maxAge, interval, logging.Component(logger, "janitor")).Start(ctx)

	logger.Info().
		Str("session_backend", cfg.Session.Backend).
		Int64("upload_limit_mb", cfg.UploadLimit()/model.MiB).
		Bool("webhook", cfg.UseWebhook()).
		Bool("events", cfg.Events.Enabled).
		Msg("pipeline ready")

	err = bot.Run(ctx)
	logger.Info().Msg("ytgrab-bot stopped")
	return err
}

func newPublisher() (events.Publisher, error) {
	if !cfg.Events.Enabled {
		return events.Nop{}, nil
	}
	p, err := events.NewRabbitPublisher(events.Config{
		URL:        cfg.Events.URL,
		Exchange:   cfg.Events.Exchange,
		RoutingKey: cfg.Events.RoutingKey,
	}, logging.Component(logger, "events"))
	if err != nil {
		return nil, fmt.Errorf("connecting event sink: %w", err)
	}
	return p, nil
}

func webhookEndpoint(s *config.Settings) string {
	if !s.UseWebhook() {
		return ""
	}
	return s.WebhookEndpoint()
}

func positive(d config.Duration, fallback time.Duration) time.Duration {
	if d.Duration > 0 {
		return d.Duration
	}
	return fallback
}
