package services

import (
	"context"
	"time"

	"github.com/gamehost/siteadmin/src/logging"
	"github.com/rs/zerolog"
)

// Reconciler is implemented by anything that can repair drifted env mirrors
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// MirrorReconciler periodically re-mirrors stored credentials into the env files
type MirrorReconciler struct {
	target   Reconciler
	interval time.Duration
	logger   zerolog.Logger
	done     chan struct{}
	stopped  chan struct{}
}

// NewMirrorReconciler creates a reconciler; a non-positive interval disables it
func NewMirrorReconciler(target Reconciler, interval time.Duration) *MirrorReconciler {
	return &MirrorReconciler{
		target:   target,
		interval: interval,
		logger:   logging.NewLogger("mirror"),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start runs the reconcile loop in the background until ctx is cancelled or Stop is called
func (mr *MirrorReconciler) Start(ctx context.Context) {
	if mr.interval <= 0 {
		mr.logger.Info().Msg("Mirror reconciler is disabled")
		close(mr.stopped)
		return
	}

	go func() {
		defer close(mr.stopped)
		ticker := time.NewTicker(mr.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				mr.logger.Info().Msg("Mirror reconciler stopped")
				return
			case <-mr.done:
				mr.logger.Info().Msg("Mirror reconciler stopped")
				return
			case <-ticker.C:
				mr.run(ctx)
			}
		}
	}()

	mr.logger.Info().Dur("interval", mr.interval).Msg("Mirror reconciler started")
}

// Stop ends the loop and waits for an in-flight pass to finish
func (mr *MirrorReconciler) Stop() {
	select {
	case <-mr.done:
	default:
		close(mr.done)
	}
	<-mr.stopped
}

func (mr *MirrorReconciler) run(ctx context.Context) {
	if err := mr.target.Reconcile(ctx); err != nil {
		mr.logger.Error().Err(err).Msg("Mirror reconcile failed")
	}
}
