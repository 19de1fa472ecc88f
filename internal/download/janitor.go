package download

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/ytgrab-bot/internal/platform"
)

// Janitor removes stale artifacts left behind by crashed requests
type Janitor struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewJanitor creates a janitor for the scratch directory
func NewJanitor(dir string, maxAge, interval time.Duration, log zerolog.Logger) *Janitor {
	return &Janitor{
		dir:      dir,
		maxAge:   maxAge,
		interval: interval,
		now:      time.Now,
		log:      log,
	}
}

// Start sweeps immediately and then every interval until ctx is done
func (j *Janitor) Start(ctx context.Context) {
	j.Sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep removes artifacts older than maxAge and returns how many were removed
func (j *Janitor) Sweep() int {
	removed, err := platform.SweepStaleArtifacts(j.dir, j.maxAge, j.now())
	if err != nil {
		j.log.Warn().Err(err).Str("dir", j.dir).Msg("artifact sweep failed")
	}
	if removed > 0 {
		j.log.Info().Int("removed", removed).Msg("removed stale artifacts")
	}
	return removed
}
