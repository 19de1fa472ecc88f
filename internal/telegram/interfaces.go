package telegram

import (
	"context"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Handler consumes inbound events
type Handler interface {
	HandleSubmission(ctx context.Context, sub model.Submission) model.Outcome
	HandleCallback(ctx context.Context, cb model.Callback) model.Outcome
}
