package service

import (
	"time"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/model"
)

// ── model → dto ──

const dateLayout = "2006-01-02"

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:        u.UserID,
		FullName:  u.FullName,
		CPF:       u.CPF,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.NotificationPreference != nil {
		resp.EmailAlerts = u.NotificationPreference.EmailAlerts
	}
	return resp
}

func toPersonResponse(p *model.Person) *dto.PersonResponse {
	resp := &dto.PersonResponse{
		ID:         p.PersonID,
		FullName:   p.FullName,
		CPF:        p.CPF,
		MotherName: p.MotherName,
		BirthDate:  formatDate(p.BirthDate),
		CreatedAt:  p.CreatedAt,
	}
	for i := range p.Processes {
		resp.Processes = append(resp.Processes, *toProcessResponse(&p.Processes[i]))
	}
	return resp
}

func toProcessResponse(p *model.Process) *dto.ProcessResponse {
	resp := &dto.ProcessResponse{
		ID:               p.ProcessID,
		PersonID:         p.PersonID,
		ProcessNumber:    p.ProcessNumber,
		ProceduralStatus: p.ProceduralStatus,
		CustodyType:      p.CustodyType,
		ArrestedOn:       formatDate(p.ArrestedOn),
		DetentionSite:    p.DetentionSite,
	}
	for i := range p.Events {
		resp.Events = append(resp.Events, *toEventResponse(&p.Events[i]))
	}
	return resp
}

func toEventResponse(e *model.Event) *dto.EventResponse {
	return &dto.EventResponse{
		ID:          e.EventID,
		ProcessID:   e.ProcessID,
		EventAt:     e.EventAt.UTC(),
		Category:    string(e.Category),
		Description: e.Description,
		AlertStatus: string(e.AlertStatus),
	}
}

func toAlertResponse(e *model.Event) dto.AlertResponse {
	resp := dto.AlertResponse{EventResponse: *toEventResponse(e)}
	if e.Process != nil {
		ref := &dto.AlertProcessRef{
			ID:            e.Process.ProcessID,
			ProcessNumber: e.Process.ProcessNumber,
		}
		if e.Process.Person != nil {
			ref.Person = &dto.AlertPersonRef{
				ID:       e.Process.Person.PersonID,
				FullName: e.Process.Person.FullName,
			}
		}
		resp.Process = ref
	}
	return resp
}

func toAlertResponses(events []model.Event) []dto.AlertResponse {
	out := make([]dto.AlertResponse, 0, len(events))
	for i := range events {
		out = append(out, toAlertResponse(&events[i]))
	}
	return out
}

// ── helpers ──

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseDate accepts nil or empty as "no date"
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
