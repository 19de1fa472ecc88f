package telegram

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Bot API upload methods and their file fields
const (
	MethodSendVideo    = "sendVideo"
	MethodSendAudio    = "sendAudio"
	MethodSendDocument = "sendDocument"

	FieldVideo    = "video"
	FieldAudio    = "audio"
	FieldDocument = "document"
)

// videoParams builds the sendVideo parameters; zero dimensions are omitted
func videoParams(chatID int64, meta model.MediaMeta) tgbotapi.Params {
	params := tgbotapi.Params{"chat_id": strconv.FormatInt(chatID, 10)}
	params.AddNonZero("width", meta.Width)
	params.AddNonZero("height", meta.Height)
	params.AddNonZero("duration", meta.DurationSeconds)
	params.AddBool("supports_streaming", true)
	return params
}

func audioParams(chatID int64, meta model.MediaMeta) tgbotapi.Params {
	params := tgbotapi.Params{"chat_id": strconv.FormatInt(chatID, 10)}
	params.AddNonZero("duration", meta.DurationSeconds)
	return params
}

// SendVideo uploads path as a streamable video
func (b *Bot) SendVideo(ctx context.Context, chatID int64, path string, meta model.MediaMeta) error {
	return b.upload(ctx, MethodSendVideo, videoParams(chatID, meta), tgbotapi.RequestFile{
		Name: FieldVideo,
		Data: tgbotapi.FilePath(path),
	})
}

// SendAudio uploads path as an audio track
func (b *Bot) SendAudio(ctx context.Context, chatID int64, path string, meta model.MediaMeta) error {
	return b.upload(ctx, MethodSendAudio, audioParams(chatID, meta), tgbotapi.RequestFile{
		Name: FieldAudio,
		Data: tgbotapi.FilePath(path),
	})
}

// SendDocument uploads path as a generic file named filename
func (b *Bot) SendDocument(ctx context.Context, chatID int64, path, filename string) error {
	params := tgbotapi.Params{"chat_id": strconv.FormatInt(chatID, 10)}
	return withContext(ctx, func() error {
		// opened and closed on the upload goroutine so an abandoned upload
		// never reads a closed file
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open artifact: %w", err)
		}
		defer f.Close()

		return b.uploadFile(MethodSendDocument, params, tgbotapi.RequestFile{
			Name: FieldDocument,
			Data: tgbotapi.FileReader{Name: filename, Reader: f},
		})
	})
}

func (b *Bot) upload(ctx context.Context, method string, params tgbotapi.Params, file tgbotapi.RequestFile) error {
	return withContext(ctx, func() error {
		return b.uploadFile(method, params, file)
	})
}

func (b *Bot) uploadFile(method string, params tgbotapi.Params, file tgbotapi.RequestFile) error {
	resp, err := b.api.UploadFiles(method, params, []tgbotapi.RequestFile{file})
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if !resp.Ok {
		return fmt.Errorf("%s: %s", method, resp.Description)
	}
	return nil
}

// withContext runs fn and gives up when ctx ends first. The Bot API
// client has no per-request context; its own timeout bounds fn. An
// abandoned fn keeps running until that timeout; an artifact removed
// meanwhile stays readable through descriptors fn already holds.
func withContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
