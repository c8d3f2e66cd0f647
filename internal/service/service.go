package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"custody-tracker/config"
	"custody-tracker/internal/alerting"
	"custody-tracker/internal/lookup"
	"custody-tracker/internal/repository"
	"custody-tracker/pkg/clock"
	"custody-tracker/pkg/jwt"
)

// Service aggregate of every service
type Service struct {
	Auth   AuthService
	User   UserService
	Person PersonService
	Event  EventService
	Alert  AlertService
	Lookup LookupService
}

// TokenBlacklist revokes token IDs until they expire
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AlertCycle runs one synchronize, publish and notify pass
type AlertCycle interface {
	Run(ctx context.Context, trigger alerting.Trigger) (*alerting.Outcome, error)
}

// Lookuper external registry client
type Lookuper interface {
	LookupProcess(ctx context.Context, number string, sources []string, court string) (*lookup.ProcessLookup, error)
	LookupCPF(ctx context.Context, raw string) (*lookup.CPFLookup, error)
}

// Deps collaborators that live outside the database
type Deps struct {
	JWT       *jwt.Manager
	Blacklist TokenBlacklist // nil disables logout revocation
	Cycle     AlertCycle
	Lookup    Lookuper
	Clock     clock.Clock
}

// NewService builds the aggregate
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		Auth:   NewAuthService(repo, deps.JWT, deps.Blacklist, clk, logger),
		User:   NewUserService(repo, logger),
		Person: NewPersonService(repo, logger),
		Event:  NewEventService(repo, logger),
		Alert:  NewAlertService(cfg, repo, deps.Cycle, clk, logger),
		Lookup: NewLookupService(deps.Lookup, logger),
	}
}
