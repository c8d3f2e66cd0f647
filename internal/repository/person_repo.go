package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"custody-tracker/internal/model"
)

// PersonSearchFilters optional person search criteria
type PersonSearchFilters struct {
	Name             string
	ProceduralStatus string
	ArrestedOn       *time.Time
}

// PersonRepository person data access
type PersonRepository interface {
	Create(ctx context.Context, person *model.Person) error
	GetByID(ctx context.Context, id string) (*model.Person, error)
	GetByCPF(ctx context.Context, cpf string) (*model.Person, error)
	Search(ctx context.Context, filters *PersonSearchFilters, offset, limit int) ([]model.Person, int64, error)
	Update(ctx context.Context, person *model.Person) error
	// Delete removes the person; processes and events go with it through ON DELETE CASCADE
	Delete(ctx context.Context, id string) error
}

type personRepo struct {
	db *gorm.DB
}

func NewPersonRepo(db *gorm.DB) PersonRepository {
	return &personRepo{db: db}
}

func (r *personRepo) Create(ctx context.Context, person *model.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *personRepo) GetByID(ctx context.Context, id string) (*model.Person, error) {
	var person model.Person
	err := r.db.WithContext(ctx).
		Preload("Processes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Processes.Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("event_at ASC")
		}).
		Where("person_id = ?", id).
		First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepo) GetByCPF(ctx context.Context, cpf string) (*model.Person, error) {
	var person model.Person
	err := r.db.WithContext(ctx).
		Where("cpf = ?", cpf).
		First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepo) Search(ctx context.Context, filters *PersonSearchFilters, offset, limit int) ([]model.Person, int64, error) {
	var persons []model.Person
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Person{})
	if filters != nil {
		if name := strings.TrimSpace(filters.Name); name != "" {
			db = db.Where("lower(persons.full_name) LIKE ?", "%"+strings.ToLower(name)+"%")
		}
		if filters.ProceduralStatus != "" || filters.ArrestedOn != nil {
			sub := r.db.Model(&model.Process{}).Select("person_id")
			if filters.ProceduralStatus != "" {
				sub = sub.Where("procedural_status = ?", filters.ProceduralStatus)
			}
			if filters.ArrestedOn != nil {
				sub = sub.Where("arrested_on = ?", filters.ArrestedOn.Format("2006-01-02"))
			}
			db = db.Where("persons.person_id IN (?)", sub)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Processes").
		Order("persons.full_name ASC").
		Offset(offset).Limit(limit).
		Find(&persons).Error
	return persons, total, err
}

func (r *personRepo) Update(ctx context.Context, person *model.Person) error {
	return r.db.WithContext(ctx).
		Model(person).
		Where("person_id = ?", person.PersonID).
		Updates(map[string]interface{}{
			"full_name":   person.FullName,
			"cpf":         person.CPF,
			"mother_name": person.MotherName,
			"birth_date":  person.BirthDate,
		}).Error
}

func (r *personRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("person_id = ?", id).
		Delete(&model.Person{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
