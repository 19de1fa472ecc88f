package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/notice"
)

// Transport defaults
const (
	DefaultPollTimeout     = 60
	DefaultMaxConcurrent   = 4
	DefaultRequestTimeout  = 5 * time.Minute
	ShutdownTimeout        = 10 * time.Second
	ReadHeaderTimeout      = 10 * time.Second
	requestTimeoutHeadroom = 15 * time.Second
)

// Options configures the Bot API connection
type Options struct {
	Token           string
	APIEndpoint     string // endpoint template, "" for the public API
	WebhookEndpoint string // public webhook URL, "" for long polling
	WebhookPath     string
	ListenAddr      string
	PollTimeout     int
	MaxConcurrent   int
	RequestTimeout  time.Duration
}

// Bot receives updates and talks to users
type Bot struct {
	api     *tgbotapi.BotAPI
	opts    Options
	texts   *notice.Localization
	handler Handler
	sem     chan struct{}
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewBot connects to the Bot API
func NewBot(opts Options, texts *notice.Localization, log zerolog.Logger) (*Bot, error) {
	if opts.Token == "" {
		return nil, errors.New("telegram: token is required")
	}
	if opts.APIEndpoint == "" {
		opts.APIEndpoint = tgbotapi.APIEndpoint
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	client := &http.Client{Timeout: clientTimeout(opts)}
	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, opts.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to connect: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("connected to Bot API")

	return &Bot{
		api:   api,
		opts:  opts,
		texts: texts,
		sem:   make(chan struct{}, opts.MaxConcurrent),
		log:   log,
	}, nil
}

// clientTimeout covers both the long poll and the slowest upload
func clientTimeout(opts Options) time.Duration {
	poll := time.Duration(opts.PollTimeout) * time.Second
	if opts.RequestTimeout > poll {
		return opts.RequestTimeout + requestTimeoutHeadroom
	}
	return poll + requestTimeoutHeadroom
}

// SetHandler sets the consumer of inbound events
func (b *Bot) SetHandler(h Handler) {
	b.handler = h
}

// Run receives updates until ctx is done, then waits for in-flight handlers
func (b *Bot) Run(ctx context.Context) error {
	if b.handler == nil {
		return errors.New("telegram: handler is not set")
	}
	defer b.wg.Wait()

	if b.opts.WebhookEndpoint != "" {
		return b.runWebhook(ctx)
	}
	return b.runPolling(ctx)
}

func (b *Bot) runPolling(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.log.Warn().Err(err).Msg("failed to delete webhook")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info().Int("timeout", u.Timeout).Msg("long polling started")

	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("long polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram: update channel closed")
			}
			b.route(ctx, update)
		}
	}
}

func (b *Bot) runWebhook(ctx context.Context) error {
	wh, err := tgbotapi.NewWebhook(b.opts.WebhookEndpoint)
	if err != nil {
		return fmt.Errorf("telegram: invalid webhook: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("telegram: failed to set webhook: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(b.opts.WebhookPath, func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			b.log.Warn().Err(err).Msg("bad webhook request")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.route(ctx, *update)
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              b.opts.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		b.log.Info().Str("addr", srv.Addr).Str("path", b.opts.WebhookPath).Msg("webhook server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("telegram: webhook server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// route hands an update to the handler on its own goroutine
func (b *Bot) route(ctx context.Context, update tgbotapi.Update) {
	switch classify(update) {
	case kindWelcome:
		b.spawn(ctx, func() {
			if _, err := b.Send(ctx, update.Message.Chat.ID, b.texts.GetText(notice.KeyWelcome), nil); err != nil {
				b.log.Warn().Err(err).Msg("failed to send welcome")
			}
		})
	case kindSubmission:
		sub, ok := submissionFrom(update.Message)
		if !ok {
			return
		}
		b.spawn(ctx, func() {
			out := b.handler.HandleSubmission(ctx, sub)
			b.logOutcome(out, sub.OwnerID)
		})
	case kindCallback:
		cb, ok := callbackFrom(update.CallbackQuery)
		if !ok {
			return
		}
		b.spawn(ctx, func() {
			out := b.handler.HandleCallback(ctx, cb)
			b.logOutcome(out, cb.CallerID)
		})
	}
}

// spawn runs fn once a concurrency slot is free
func (b *Bot) spawn(ctx context.Context, fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		select {
		case b.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-b.sem }()

		fn()
	}()
}

func (b *Bot) logOutcome(out model.Outcome, owner int64) {
	if out.Ignored {
		return
	}
	event := b.log.Debug()
	if out.State.IsTerminal() {
		event = b.log.Info()
	}
	if out.State == model.StateAborted {
		event = event.Stringer("stage", out.FailedAt)
	}
	event.Int64("owner", owner).Stringer("state", out.State).Err(out.Err).Msg("request handled")
}

// Send posts a message with optional buttons
func (b *Bot) Send(ctx context.Context, chatID int64, text string, buttons []model.Button) (model.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = keyboard(buttons)
	}

	var sent tgbotapi.Message
	err := withContext(ctx, func() error {
		var err error
		sent, err = b.api.Send(msg)
		return err
	})
	if err != nil {
		return model.MessageRef{}, err
	}
	return model.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// Edit replaces the text and buttons of a message
func (b *Bot) Edit(ctx context.Context, ref model.MessageRef, text string, buttons []model.Button) error {
	var edit tgbotapi.Chattable
	if len(buttons) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, ref.MessageID, text, keyboard(buttons))
	} else {
		edit = tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	}
	return withContext(ctx, func() error {
		_, err := b.api.Request(edit)
		return err
	})
}

// Answer acknowledges a button press
func (b *Bot) Answer(ctx context.Context, callbackID, text string, alert bool) error {
	answer := tgbotapi.NewCallback(callbackID, text)
	if alert {
		answer = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	return withContext(ctx, func() error {
		_, err := b.api.Request(answer)
		return err
	})
}
