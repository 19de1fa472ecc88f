package session

import (
	"context"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Store defines the session storage contract.
type Store interface {
	// Put stores s, replacing any session of the same owner
	Put(ctx context.Context, s model.Session) error

	// Take atomically removes and returns the live session of owner.
	// It returns nil without error when none exists or it has expired.
	Take(ctx context.Context, ownerID int64) (*model.Session, error)

	// Sweep removes expired sessions and returns how many were removed
	Sweep(ctx context.Context) (int, error)

	Close() error
}
