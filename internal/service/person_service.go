package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/model"
	"custody-tracker/internal/repository"
	"custody-tracker/pkg/cpf"
)

// ── person module errors ──

var (
	ErrPersonNotFound   = errors.New("person not found")
	ErrProcessNotFound  = errors.New("process not found")
	ErrPersonCPFExists  = errors.New("a person with this CPF is already registered")
	ErrInvalidPersonCPF = errors.New("invalid CPF")
	ErrInvalidDate      = errors.New("dates must use the YYYY-MM-DD format")
)

// PersonService detained persons and their legal processes
type PersonService interface {
	// CreateFull registers a person and the initial processes atomically
	CreateFull(ctx context.Context, req *dto.FullRegistrationRequest) (*dto.PersonResponse, error)
	Create(ctx context.Context, req *dto.PersonRequest) (*dto.PersonResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PersonResponse, error)
	Search(ctx context.Context, req *dto.PersonSearchRequest) ([]dto.PersonResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.PersonRequest) (*dto.PersonResponse, error)
	// Delete removes the person with every process and event
	Delete(ctx context.Context, id string) error

	AddProcess(ctx context.Context, personID string, req *dto.ProcessRequest) (*dto.ProcessResponse, error)
	UpdateProcess(ctx context.Context, id string, req *dto.ProcessRequest) (*dto.ProcessResponse, error)
}

type personService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewPersonService(repo *repository.Repository, logger *zap.Logger) PersonService {
	return &personService{repo: repo, logger: logger}
}

// ────────────────────── persons ──────────────────────

func (s *personService) CreateFull(ctx context.Context, req *dto.FullRegistrationRequest) (*dto.PersonResponse, error) {
	person, err := buildPerson(&req.Person)
	if err != nil {
		return nil, err
	}
	processes := make([]model.Process, 0, len(req.Processes))
	for i := range req.Processes {
		p, err := buildProcess(&req.Processes[i])
		if err != nil {
			return nil, err
		}
		processes = append(processes, *p)
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := ensureCPFFree(ctx, tx, person.CPF, ""); err != nil {
			return err
		}
		if err := tx.Person.Create(ctx, person); err != nil {
			return err
		}
		for i := range processes {
			processes[i].PersonID = person.PersonID
		}
		return tx.Process.BatchCreate(ctx, processes)
	})
	if err != nil {
		if errors.Is(err, ErrPersonCPFExists) {
			return nil, err
		}
		s.logger.Error("full registration failed", zap.Error(err))
		return nil, err
	}

	person.Processes = processes
	s.logger.Info("person registered",
		zap.String("id", person.PersonID),
		zap.Int("processes", len(processes)),
	)
	return toPersonResponse(person), nil
}

func (s *personService) Create(ctx context.Context, req *dto.PersonRequest) (*dto.PersonResponse, error) {
	person, err := buildPerson(req)
	if err != nil {
		return nil, err
	}
	if err := ensureCPFFree(ctx, s.repo, person.CPF, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Person.Create(ctx, person); err != nil {
		s.logger.Error("create person failed", zap.Error(err))
		return nil, err
	}
	return toPersonResponse(person), nil
}

func (s *personService) GetByID(ctx context.Context, id string) (*dto.PersonResponse, error) {
	person, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPersonResponse(person), nil
}

func (s *personService) Search(ctx context.Context, req *dto.PersonSearchRequest) ([]dto.PersonResponse, int64, error) {
	filters := &repository.PersonSearchFilters{
		Name:             req.Name,
		ProceduralStatus: strings.TrimSpace(req.ProceduralStatus),
	}
	if req.ArrestedOn != "" {
		d, err := time.Parse(dateLayout, req.ArrestedOn)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filters.ArrestedOn = &d
	}

	offset, limit := req.Normalize()
	persons, total, err := s.repo.Person.Search(ctx, filters, offset, limit)
	if err != nil {
		s.logger.Error("search persons failed", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.PersonResponse, 0, len(persons))
	for i := range persons {
		result = append(result, *toPersonResponse(&persons[i]))
	}
	return result, total, nil
}

func (s *personService) Update(ctx context.Context, id string, req *dto.PersonRequest) (*dto.PersonResponse, error) {
	person, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := buildPerson(req)
	if err != nil {
		return nil, err
	}
	if err := ensureCPFFree(ctx, s.repo, next.CPF, id); err != nil {
		return nil, err
	}

	person.FullName = next.FullName
	person.CPF = next.CPF
	person.MotherName = next.MotherName
	person.BirthDate = next.BirthDate
	if err := s.repo.Person.Update(ctx, person); err != nil {
		s.logger.Error("update person failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPersonResponse(person), nil
}

func (s *personService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Person.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPersonNotFound
		}
		s.logger.Error("delete person failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("person deleted", zap.String("id", id))
	return nil
}

// ────────────────────── processes ──────────────────────

func (s *personService) AddProcess(ctx context.Context, personID string, req *dto.ProcessRequest) (*dto.ProcessResponse, error) {
	if _, err := s.repo.Person.GetByID(ctx, personID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	process, err := buildProcess(req)
	if err != nil {
		return nil, err
	}
	process.PersonID = personID
	if err := s.repo.Process.Create(ctx, process); err != nil {
		s.logger.Error("create process failed", zap.String("person_id", personID), zap.Error(err))
		return nil, err
	}
	return toProcessResponse(process), nil
}

func (s *personService) UpdateProcess(ctx context.Context, id string, req *dto.ProcessRequest) (*dto.ProcessResponse, error) {
	process, err := s.repo.Process.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProcessNotFound
		}
		return nil, err
	}
	next, err := buildProcess(req)
	if err != nil {
		return nil, err
	}

	process.ProcessNumber = next.ProcessNumber
	process.ProceduralStatus = next.ProceduralStatus
	process.CustodyType = next.CustodyType
	process.ArrestedOn = next.ArrestedOn
	process.DetentionSite = next.DetentionSite
	if err := s.repo.Process.Update(ctx, process); err != nil {
		s.logger.Error("update process failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toProcessResponse(process), nil
}

// ── helpers ──

func (s *personService) load(ctx context.Context, id string) (*model.Person, error) {
	person, err := s.repo.Person.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		s.logger.Error("load person failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return person, nil
}

func buildPerson(req *dto.PersonRequest) (*model.Person, error) {
	person := &model.Person{
		FullName:   strings.TrimSpace(req.FullName),
		MotherName: nonEmpty(req.MotherName),
	}
	if raw := nonEmpty(req.CPF); raw != nil {
		digits := cpf.Normalize(*raw)
		if !cpf.Valid(digits) {
			return nil, ErrInvalidPersonCPF
		}
		person.CPF = &digits
	}
	birth, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	person.BirthDate = birth
	return person, nil
}

func buildProcess(req *dto.ProcessRequest) (*model.Process, error) {
	arrested, err := parseDate(req.ArrestedOn)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &model.Process{
		ProcessNumber:    strings.TrimSpace(req.ProcessNumber),
		ProceduralStatus: nonEmpty(req.ProceduralStatus),
		CustodyType:      nonEmpty(req.CustodyType),
		ArrestedOn:       arrested,
		DetentionSite:    nonEmpty(req.DetentionSite),
	}, nil
}

// ensureCPFFree rejects a CPF already held by a person other than selfID
func ensureCPFFree(ctx context.Context, repo *repository.Repository, digits *string, selfID string) error {
	if digits == nil {
		return nil
	}
	existing, err := repo.Person.GetByCPF(ctx, *digits)
	if err == nil && existing.PersonID != selfID {
		return ErrPersonCPFExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}
