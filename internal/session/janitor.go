package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Janitor periodically sweeps expired sessions
type Janitor struct {
	store    Store
	interval time.Duration
	log      zerolog.Logger
}

// NewJanitor creates a janitor for store
func NewJanitor(store Store, interval time.Duration, log zerolog.Logger) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		log:      log,
	}
}

// Start sweeps every interval until ctx is done
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.Debug().Dur("interval", j.interval).Msg("session janitor started")

	for {
		select {
		case <-ctx.Done():
			j.log.Debug().Msg("session janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	removed, err := j.store.Sweep(ctx)
	if err != nil {
		j.log.Warn().Err(err).Msg("session sweep failed")
		return
	}
	if removed > 0 {
		j.log.Debug().Int("removed", removed).Msg("expired sessions swept")
	}
}
