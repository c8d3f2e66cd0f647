package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/model"
	"custody-tracker/internal/repository"
	pkgerrors "custody-tracker/pkg/errors"
)

// ── event module errors ──

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidCategory   = errors.New("unknown event category")
	ErrInvalidTransition = errors.New("alert status transition not allowed")
)

// EventService dated occurrences of a process
type EventService interface {
	Create(ctx context.Context, processID string, req *dto.EventRequest) (*dto.EventResponse, error)
	// Update edits date, category and description; the alert status is kept
	Update(ctx context.Context, id string, req *dto.EventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, id string) error
	// UpdateStatus applies a caller transition; only fired → resolved is accepted
	UpdateStatus(ctx context.Context, id string, req *dto.EventStatusRequest) (*dto.EventResponse, error)
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

func (s *eventService) Create(ctx context.Context, processID string, req *dto.EventRequest) (*dto.EventResponse, error) {
	if _, err := s.repo.Process.GetByID(ctx, processID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProcessNotFound
		}
		return nil, err
	}
	category, err := parseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	event := &model.Event{
		ProcessID:   processID,
		EventAt:     req.EventAt.UTC(),
		Category:    category,
		Description: nonEmpty(req.Description),
		AlertStatus: model.AlertPending,
	}
	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("create event failed", zap.String("process_id", processID), zap.Error(err))
		return nil, err
	}
	return toEventResponse(event), nil
}

func (s *eventService) Update(ctx context.Context, id string, req *dto.EventRequest) (*dto.EventResponse, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	category, err := parseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	event.EventAt = req.EventAt.UTC()
	event.Category = category
	event.Description = nonEmpty(req.Description)
	if err := s.repo.Event.Update(ctx, event); err != nil {
		s.logger.Error("update event failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toEventResponse(event), nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Event.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error("delete event failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *eventService) UpdateStatus(ctx context.Context, id string, req *dto.EventStatusRequest) (*dto.EventResponse, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next := model.AlertStatus(req.AlertStatus)
	if !next.Valid() || !event.AlertStatus.CanTransition(next, model.ActorCaller) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.Event.UpdateStatus(ctx, id, event.AlertStatus, next); err != nil {
		if errors.Is(err, pkgerrors.ErrTransitionConflict) {
			return nil, ErrInvalidTransition
		}
		s.logger.Error("update alert status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("alert status changed",
		zap.String("id", id),
		zap.String("from", string(event.AlertStatus)),
		zap.String("to", string(next)),
	)
	event.AlertStatus = next
	return toEventResponse(event), nil
}

// ── helpers ──

func (s *eventService) load(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("load event failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return event, nil
}

// parseCategory defaults an empty category to other
func parseCategory(raw string) (model.EventCategory, error) {
	if raw == "" {
		return model.CategoryOther, nil
	}
	c := model.EventCategory(raw)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}
