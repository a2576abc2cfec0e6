package remind

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/remind/internal/gateway"
)

// Syncer pulls authoritative state from the gateway at startup and on a
// fixed interval. Pulls are best-effort and never block the UI; overlapping
// ticks are collapsed so at most one sync is in flight.
type Syncer struct {
	svc      *ReminderService
	gw       gateway.Gateway
	log      zerolog.Logger
	interval time.Duration
	inFlight atomic.Bool
}

// NewSyncer creates a Syncer.
func NewSyncer(svc *ReminderService, gw gateway.Gateway, log zerolog.Logger, interval time.Duration) *Syncer {
	return &Syncer{
		svc:      svc,
		gw:       gw,
		log:      log.With().Str("component", "syncer").Logger(),
		interval: interval,
	}
}

// Startup attempts the initial cloud merge, then always refreshes the store
// from local storage so the UI has data even when the cloud is unreachable
// or unconfigured.
func (s *Syncer) Startup(ctx context.Context) error {
	if _, err := s.gw.SyncOnStartup(ctx); err != nil {
		s.log.Warn().Err(err).Msg("startup cloud sync failed, continuing with local data")
	}
	return s.svc.Refresh(ctx)
}

// Run fires periodic background pulls until ctx is cancelled. The ticker
// keeps firing on schedule; a tick that arrives while a previous sync is
// still in flight is dropped.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one pull-and-merge cycle. Returns immediately when a
// previous cycle has not finished.
func (s *Syncer) Tick(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Debug().Msg("sync already in flight, skipping tick")
		return
	}
	defer s.inFlight.Store(false)

	synced, err := s.gw.RefreshFromCloud(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("periodic cloud sync failed")
		return
	}
	if !synced {
		return
	}

	if err := s.svc.Refresh(ctx); err != nil {
		s.log.Warn().Err(err).Msg("post-sync refresh failed")
	}
}
