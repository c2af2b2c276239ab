// Package app hosts background tasks that run beside the HTTP server.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gather/internal/core"
)

// Sweeper periodically removes rooms whose last activity exceeds TTL.
type Sweeper struct {
	Registry *core.Registry
	Interval time.Duration
	TTL      time.Duration
}

// Run ticks until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return nil
		case <-ticker.C:
			if removed := s.Registry.Sweep(s.TTL); removed > 0 {
				log.Info().Str("module", "app.sweeper").Int("removed", removed).Msg("cleanup complete")
			}
		}
	}
}
