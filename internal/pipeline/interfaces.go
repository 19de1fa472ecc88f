package pipeline

import (
	"context"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Detector maps URLs to platform names.
type Detector interface {
	Detect(rawURL string) (string, bool)
	Platforms() []string
}

// Prober fetches metadata for a URL.
type Prober interface {
	Probe(ctx context.Context, rawURL string) (*model.VideoInfo, error)
}

// Notifier talks to the user through the messaging transport.
type Notifier interface {
	// Send posts a new message and returns a reference for later edits
	Send(ctx context.Context, chatID int64, text string, buttons []model.Button) (model.MessageRef, error)

	// Edit replaces the text and buttons of a message
	Edit(ctx context.Context, ref model.MessageRef, text string, buttons []model.Button) error

	// Answer acknowledges a button press, optionally as an alert
	Answer(ctx context.Context, callbackID, text string, alert bool) error
}
