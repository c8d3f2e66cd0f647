package repository

import (
	"context"

	"gorm.io/gorm"

	"custody-tracker/internal/model"
	pkgerrors "custody-tracker/pkg/errors"
)

// EventRepository event CRUD data access
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// Update writes the editable fields; alert_status is not touched
	Update(ctx context.Context, event *model.Event) error
	// UpdateStatus moves the event from one state to another, failing with
	// ErrTransitionConflict when the stored state is no longer `from`
	UpdateStatus(ctx context.Context, id string, from, to model.AlertStatus) error
	Delete(ctx context.Context, id string) error
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Preload("Process.Person").
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).
		Model(event).
		Where("event_id = ?", event.EventID).
		Updates(map[string]interface{}{
			"event_at":    event.EventAt.UTC(),
			"category":    event.Category,
			"description": event.Description,
		}).Error
}

func (r *eventRepo) UpdateStatus(ctx context.Context, id string, from, to model.AlertStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("event_id = ? AND alert_status = ?", id, from).
		Update("alert_status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrTransitionConflict
	}
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		Delete(&model.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
