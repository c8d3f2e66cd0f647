package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custody-tracker/internal/model"
)

// NotificationPreferenceRepository alert digest opt-in data access
type NotificationPreferenceRepository interface {
	// Get returns gorm.ErrRecordNotFound when the user never stored a preference
	Get(ctx context.Context, userID string) (*model.NotificationPreference, error)
	Upsert(ctx context.Context, pref *model.NotificationPreference) error
	// ListRecipients returns active, opted-in users that have an e-mail address
	ListRecipients(ctx context.Context) ([]model.User, error)
}

type notificationPreferenceRepo struct {
	db *gorm.DB
}

func NewNotificationPreferenceRepo(db *gorm.DB) NotificationPreferenceRepository {
	return &notificationPreferenceRepo{db: db}
}

func (r *notificationPreferenceRepo) Get(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	var pref model.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *notificationPreferenceRepo) Upsert(ctx context.Context, pref *model.NotificationPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email_alerts", "updated_at"}),
		}).
		Create(pref).Error
}

func (r *notificationPreferenceRepo) ListRecipients(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN notification_preferences np ON np.user_id = users.user_id").
		Where("np.email_alerts = ? AND users.is_active = ?", true, true).
		Where("users.email IS NOT NULL AND users.email <> ''").
		Order("users.full_name ASC").
		Find(&users).Error
	return users, err
}
