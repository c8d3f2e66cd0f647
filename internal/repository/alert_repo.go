package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custody-tracker/internal/model"
)

// AlertRepository alert lifecycle data access
type AlertRepository interface {
	// WithTx runs fn in one database transaction; a returned error or a
	// cancelled ctx rolls everything back
	WithTx(ctx context.Context, fn func(tx AlertTx) error) error
	// ListByIDs reloads events with Process and Person, ordered by event_at ascending
	ListByIDs(ctx context.Context, ids []string) ([]model.Event, error)
	// ListUpcoming pending or fired events strictly after now, ascending
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]model.Event, error)
	// ListActive fired events strictly after now, ascending, with the total count
	ListActive(ctx context.Context, now time.Time, offset, limit int) ([]model.Event, int64, error)
	// CountActiveUntil fired events in (now, until]
	CountActiveUntil(ctx context.Context, now, until time.Time) (int64, error)
}

// AlertTx operations available inside an alert transaction
type AlertTx interface {
	// LockPending row-locks pending events with after < event_at <= until,
	// skipping rows already locked by a concurrent transaction
	LockPending(ctx context.Context, after, until time.Time) ([]model.Event, error)
	// MarkFired moves the given events from pending to fired and returns the affected row count
	MarkFired(ctx context.Context, ids []string) (int64, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db: db}
}

func (r *alertRepo) WithTx(ctx context.Context, fn func(tx AlertTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&alertTx{db: tx})
	})
}

func (r *alertRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var events []model.Event
	err := r.db.WithContext(ctx).
		Preload("Process.Person").
		Where("event_id IN ?", ids).
		Order("event_at ASC").
		Find(&events).Error
	return events, err
}

func (r *alertRepo) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Preload("Process.Person").
		Where("alert_status IN ? AND event_at > ?",
			[]model.AlertStatus{model.AlertPending, model.AlertFired}, now.UTC()).
		Order("event_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *alertRepo) ListActive(ctx context.Context, now time.Time, offset, limit int) ([]model.Event, int64, error) {
	var events []model.Event
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("alert_status = ? AND event_at > ?", model.AlertFired, now.UTC())

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Process.Person").
		Order("event_at ASC").
		Offset(offset).Limit(limit).
		Find(&events).Error
	return events, total, err
}

func (r *alertRepo) CountActiveUntil(ctx context.Context, now, until time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("alert_status = ? AND event_at > ? AND event_at <= ?", model.AlertFired, now.UTC(), until.UTC()).
		Count(&count).Error
	return count, err
}

// ── transaction scope ──

type alertTx struct {
	db *gorm.DB
}

func (t *alertTx) LockPending(ctx context.Context, after, until time.Time) ([]model.Event, error) {
	var events []model.Event
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("alert_status = ? AND event_at > ? AND event_at <= ?", model.AlertPending, after.UTC(), until.UTC()).
		Order("event_at ASC").
		Find(&events).Error
	return events, err
}

func (t *alertTx) MarkFired(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := t.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("event_id IN ? AND alert_status = ?", ids, model.AlertPending).
		Updates(map[string]interface{}{
			"alert_status": model.AlertFired,
			"updated_at":   gorm.Expr("now()"),
		})
	return result.RowsAffected, result.Error
}
