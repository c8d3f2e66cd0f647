package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregate of every repository
type Repository struct {
	User                   UserRepository
	NotificationPreference NotificationPreferenceRepository
	Person                 PersonRepository
	Process                ProcessRepository
	Event                  EventRepository
	Alert                  AlertRepository
	Tx                     TxRunner
}

// TxRunner runs fn against repositories bound to one transaction
type TxRunner interface {
	Transaction(ctx context.Context, fn func(repo *Repository) error) error
}

// NewRepository builds the aggregate over db
func NewRepository(db *gorm.DB) *Repository {
	repo := bind(db)
	repo.Tx = &gormTxRunner{db: db}
	return repo
}

func bind(db *gorm.DB) *Repository {
	return &Repository{
		User:                   NewUserRepo(db),
		NotificationPreference: NewNotificationPreferenceRepo(db),
		Person:                 NewPersonRepo(db),
		Process:                NewProcessRepo(db),
		Event:                  NewEventRepo(db),
		Alert:                  NewAlertRepo(db),
	}
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) Transaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := bind(tx)
		txRepo.Tx = &gormTxRunner{db: tx}
		return fn(txRepo)
	})
}
