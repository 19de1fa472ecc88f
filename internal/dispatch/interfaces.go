package dispatch

import (
	"context"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Uploader sends files through the messaging transport.
type Uploader interface {
	SendAudio(ctx context.Context, chatID int64, path string, meta model.MediaMeta) error
	SendVideo(ctx context.Context, chatID int64, path string, meta model.MediaMeta) error
	SendDocument(ctx context.Context, chatID int64, path, filename string) error
}

// Dispatcher delivers artifacts.
type Dispatcher interface {
	Deliver(ctx context.Context, d Delivery) error
}
