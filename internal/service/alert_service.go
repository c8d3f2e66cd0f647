package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"custody-tracker/config"
	"custody-tracker/internal/alerting"
	"custody-tracker/internal/dto"
	"custody-tracker/internal/repository"
	"custody-tracker/pkg/clock"
)

// ── alert module errors ──

var (
	ErrAlertSyncFailed     = errors.New("alert synchronization failed")
	ErrAlertTriggerFailed  = errors.New("alert cycle failed")
	ErrExportGenerateFail  = errors.New("failed to generate the spreadsheet")
	ErrCalendarGenerateErr = errors.New("failed to generate the calendar feed")
)

const (
	defaultUpcomingLimit = 50
	defaultActiveLimit   = 20
	maxQueryLimit        = 100
	// upper bound for the export and calendar projections
	maxFeedRows = 5000
)

// AlertService alert query surface and on-demand trigger.
// Every read runs the alert cycle first so anything it fires is also notified.
type AlertService interface {
	Upcoming(ctx context.Context, req *dto.UpcomingAlertsRequest) ([]dto.AlertResponse, error)
	Active(ctx context.Context, req *dto.ActiveAlertsRequest) (*dto.ActiveAlertsResponse, error)
	Trigger(ctx context.Context) (*dto.TriggerResponse, error)
	// ExportActive renders the active alerts as an xlsx workbook; returns content and file name
	ExportActive(ctx context.Context) (*bytes.Buffer, string, error)
	// CalendarFeed renders upcoming alerts as an iCalendar document
	CalendarFeed(ctx context.Context) ([]byte, error)
}

type alertService struct {
	repo           *repository.Repository
	cycle          AlertCycle
	clock          clock.Clock
	triggerTimeout time.Duration
	location       *time.Location
	baseURL        string
	logger         *zap.Logger
}

func NewAlertService(cfg *config.Config, repo *repository.Repository, cycle AlertCycle, clk clock.Clock, logger *zap.Logger) AlertService {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil || cfg.Scheduler.Timezone == "" {
		loc = time.UTC
	}
	return &alertService{
		repo:           repo,
		cycle:          cycle,
		clock:          clk,
		triggerTimeout: cfg.Alerts.TriggerTimeout,
		location:       loc,
		baseURL:        cfg.Server.BaseURL,
		logger:         logger,
	}
}

// ────────────────────── queries ──────────────────────

func (s *alertService) Upcoming(ctx context.Context, req *dto.UpcomingAlertsRequest) ([]dto.AlertResponse, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	limit := clampLimit(req.Limit, defaultUpcomingLimit)

	events, err := s.repo.Alert.ListUpcoming(ctx, s.clock.Now(), limit)
	if err != nil {
		s.logger.Error("list upcoming alerts failed", zap.Error(err))
		return nil, err
	}
	return toAlertResponses(events), nil
}

func (s *alertService) Active(ctx context.Context, req *dto.ActiveAlertsRequest) (*dto.ActiveAlertsResponse, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	limit := clampLimit(req.Limit, defaultActiveLimit)
	now := s.clock.Now()

	events, total, err := s.repo.Alert.ListActive(ctx, now, offset, limit)
	if err != nil {
		s.logger.Error("list active alerts failed", zap.Error(err))
		return nil, err
	}
	windowCount, err := s.repo.Alert.CountActiveUntil(ctx, now, alerting.WindowAt(now, alerting.Horizon).Until)
	if err != nil {
		s.logger.Error("count active alerts failed", zap.Error(err))
		return nil, err
	}

	return &dto.ActiveAlertsResponse{
		Items:       toAlertResponses(events),
		Total:       total,
		WindowCount: windowCount,
		Offset:      offset,
		Limit:       limit,
	}, nil
}

// ────────────────────── trigger ──────────────────────

func (s *alertService) Trigger(ctx context.Context) (*dto.TriggerResponse, error) {
	if s.triggerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.triggerTimeout)
		defer cancel()
	}

	out, err := s.cycle.Run(ctx, alerting.TriggerOnDemand)
	if err != nil {
		s.logger.Error("on-demand alert cycle failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAlertTriggerFailed, err)
	}
	return &dto.TriggerResponse{
		Status:      "ok",
		AlertsFired: out.AlertsFired,
		EmailsSent:  out.EmailsSent,
		EmailStatus: string(out.EmailStatus),
	}, nil
}

// ── helpers ──

func (s *alertService) refresh(ctx context.Context) error {
	if _, err := s.cycle.Run(ctx, alerting.TriggerQuery); err != nil {
		s.logger.Error("alert cycle before query failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrAlertSyncFailed, err)
	}
	return nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}
