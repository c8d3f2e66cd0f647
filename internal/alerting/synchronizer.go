package alerting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"custody-tracker/internal/model"
	"custody-tracker/internal/repository"
	pkgerrors "custody-tracker/pkg/errors"
)

// SyncResult events moved from pending to fired by one Synchronize call
type SyncResult struct {
	Transitioned []model.Event
}

// IDs of the transitioned events
func (r *SyncResult) IDs() []string {
	ids := make([]string, 0, len(r.Transitioned))
	for _, ev := range r.Transitioned {
		ids = append(ids, ev.EventID)
	}
	return ids
}

// Synchronizer brings alert states in line with the current time
type Synchronizer struct {
	repo    repository.AlertRepository
	horizon time.Duration
	logger  *zap.Logger
}

func NewSynchronizer(repo repository.AlertRepository, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{repo: repo, horizon: Horizon, logger: logger}
}

// Synchronize fires every pending event whose time is inside the window at now.
// All changes happen in one transaction; any failure leaves no event changed.
// A second call with no new qualifying events returns an empty result.
func (s *Synchronizer) Synchronize(ctx context.Context, now time.Time) (*SyncResult, error) {
	w := WindowAt(now, s.horizon)
	result := &SyncResult{}

	err := s.repo.WithTx(ctx, func(tx repository.AlertTx) error {
		locked, err := tx.LockPending(ctx, w.After, w.Until)
		if err != nil {
			return fmt.Errorf("lock pending events: %w", err)
		}

		due := Evaluate(locked, now, s.horizon)
		if len(due) == 0 {
			return nil
		}

		ids := make([]string, 0, len(due))
		for _, ev := range due {
			if !ev.AlertStatus.CanTransition(model.AlertFired, model.ActorSynchronizer) {
				return fmt.Errorf("event %s in state %s: %w", ev.EventID, ev.AlertStatus, pkgerrors.ErrTransitionConflict)
			}
			ids = append(ids, ev.EventID)
		}

		n, err := tx.MarkFired(ctx, ids)
		if err != nil {
			return fmt.Errorf("mark events fired: %w", err)
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("marked %d of %d events: %w", n, len(ids), pkgerrors.ErrTransitionConflict)
		}

		for i := range due {
			due[i].AlertStatus = model.AlertFired
		}
		result.Transitioned = due
		return nil
	})
	if err != nil {
		s.logger.Error("alert synchronization rolled back",
			zap.Time("now", now.UTC()),
			zap.Error(err),
		)
		return nil, err
	}

	if len(result.Transitioned) > 0 {
		s.logger.Info("alerts fired",
			zap.Int("count", len(result.Transitioned)),
			zap.Time("window_until", w.Until),
		)
	}
	return result, nil
}
