package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/lookup"
)

// ErrLookupUnavailable no lookup client was wired
var ErrLookupUnavailable = errors.New("external lookups are not available")

// LookupService court and identity registry lookups.
// A failing source is reported inside the result, never as an error.
type LookupService interface {
	Process(ctx context.Context, req *dto.ProcessLookupRequest) (*lookup.ProcessLookup, error)
	CPF(ctx context.Context, req *dto.CPFLookupRequest) (*lookup.CPFLookup, error)
}

type lookupService struct {
	client Lookuper
	logger *zap.Logger
}

func NewLookupService(client Lookuper, logger *zap.Logger) LookupService {
	return &lookupService{client: client, logger: logger}
}

func (s *lookupService) Process(ctx context.Context, req *dto.ProcessLookupRequest) (*lookup.ProcessLookup, error) {
	if s.client == nil {
		return nil, ErrLookupUnavailable
	}
	res, err := s.client.LookupProcess(ctx, req.ProcessNumber, req.Sources, req.Court)
	if err != nil {
		return nil, err
	}
	succeeded := 0
	for _, r := range res.Results {
		if r.Success {
			succeeded++
		}
	}
	s.logger.Info("process lookup",
		zap.String("process_number", res.ProcessNumber),
		zap.Int("sources", len(res.Results)),
		zap.Int("succeeded", succeeded),
	)
	return res, nil
}

func (s *lookupService) CPF(ctx context.Context, req *dto.CPFLookupRequest) (*lookup.CPFLookup, error) {
	if s.client == nil {
		return nil, ErrLookupUnavailable
	}
	return s.client.LookupCPF(ctx, req.CPF)
}
