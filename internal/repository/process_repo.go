package repository

import (
	"context"

	"gorm.io/gorm"

	"custody-tracker/internal/model"
)

// ProcessRepository legal process data access
type ProcessRepository interface {
	Create(ctx context.Context, process *model.Process) error
	BatchCreate(ctx context.Context, processes []model.Process) error
	GetByID(ctx context.Context, id string) (*model.Process, error)
	Update(ctx context.Context, process *model.Process) error
}

type processRepo struct {
	db *gorm.DB
}

func NewProcessRepo(db *gorm.DB) ProcessRepository {
	return &processRepo{db: db}
}

func (r *processRepo) Create(ctx context.Context, process *model.Process) error {
	return r.db.WithContext(ctx).Create(process).Error
}

func (r *processRepo) BatchCreate(ctx context.Context, processes []model.Process) error {
	if len(processes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&processes).Error
}

func (r *processRepo) GetByID(ctx context.Context, id string) (*model.Process, error) {
	var process model.Process
	err := r.db.WithContext(ctx).
		Where("process_id = ?", id).
		First(&process).Error
	if err != nil {
		return nil, err
	}
	return &process, nil
}

func (r *processRepo) Update(ctx context.Context, process *model.Process) error {
	return r.db.WithContext(ctx).
		Model(process).
		Where("process_id = ?", process.ProcessID).
		Updates(map[string]interface{}{
			"process_number":    process.ProcessNumber,
			"procedural_status": process.ProceduralStatus,
			"custody_type":      process.CustodyType,
			"arrested_on":       process.ArrestedOn,
			"detention_site":    process.DetentionSite,
		}).Error
}
