package service

import (
	"context"
	"time"

	"pixelgram/internal/metrics"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically evicts pending-action entries that outlived their
// TTL. A safety net only: the normal lifecycle consumes entries via the
// decision handlers within seconds.
type Sweeper struct {
	pending  *PendingActions
	interval time.Duration
	logger   *logrus.Logger
	stopCh   chan struct{}
}

func NewSweeper(pending *PendingActions, interval time.Duration, logger *logrus.Logger) *Sweeper {
	return &Sweeper{
		pending:  pending,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval).Info("Starting pending-action sweeper")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper context cancelled, stopping")
			return
		case <-s.stopCh:
			s.logger.Info("Sweeper stop signal received, stopping")
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
}

func (s *Sweeper) runSweep() {
	removed := s.pending.SweepExpired()
	if removed > 0 {
		metrics.AddToCounter("pending_actions_expired_total", float64(removed), nil, "Pending batches evicted by the TTL sweep")
		metrics.SetGauge("pending_actions", float64(s.pending.Len()), nil, "Batches awaiting a build/discard decision")
		s.logger.WithField("removed", removed).Info("Swept expired pending batches")
	}
}
