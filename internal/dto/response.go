package dto

import "time"

// ── auth responses ──

// TokenResponse issued access token
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // seconds
	User        UserResponse `json:"user"`
}

// ── user responses ──

// UserResponse user without credentials
type UserResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	CPF         string    `json:"cpf"`
	Email       *string   `json:"email,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	EmailAlerts bool      `json:"email_alerts"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationPreferenceResponse alert digest opt-in
type NotificationPreferenceResponse struct {
	EmailAlerts bool `json:"email_alerts"`
}

// ── record responses ──

// PersonResponse person with optional processes
type PersonResponse struct {
	ID         string            `json:"id"`
	FullName   string            `json:"full_name"`
	CPF        *string           `json:"cpf,omitempty"`
	MotherName *string           `json:"mother_name,omitempty"`
	BirthDate  *string           `json:"birth_date,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	Processes  []ProcessResponse `json:"processes,omitempty"`
}

// ProcessResponse process with optional events
type ProcessResponse struct {
	ID               string          `json:"id"`
	PersonID         string          `json:"person_id"`
	ProcessNumber    string          `json:"process_number"`
	ProceduralStatus *string         `json:"procedural_status,omitempty"`
	CustodyType      *string         `json:"custody_type,omitempty"`
	ArrestedOn       *string         `json:"arrested_on,omitempty"`
	DetentionSite    *string         `json:"detention_site,omitempty"`
	Events           []EventResponse `json:"events,omitempty"`
}

// EventResponse event
type EventResponse struct {
	ID          string    `json:"id"`
	ProcessID   string    `json:"process_id"`
	EventAt     time.Time `json:"event_at"`
	Category    string    `json:"category"`
	Description *string   `json:"description,omitempty"`
	AlertStatus string    `json:"alert_status"`
}

// ── alert responses ──

// AlertPersonRef minimal person inside an alert
type AlertPersonRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// AlertProcessRef minimal process inside an alert
type AlertProcessRef struct {
	ID            string          `json:"id"`
	ProcessNumber string          `json:"process_number"`
	Person        *AlertPersonRef `json:"person,omitempty"`
}

// AlertResponse event with its process and person
type AlertResponse struct {
	EventResponse
	Process *AlertProcessRef `json:"process,omitempty"`
}

// ActiveAlertsResponse page of fired alerts
type ActiveAlertsResponse struct {
	Items       []AlertResponse `json:"items"`
	Total       int64           `json:"total"`
	WindowCount int64           `json:"window_count"`
	Offset      int             `json:"offset"`
	Limit       int             `json:"limit"`
}

// TriggerResponse outcome of POST /alerts/trigger
type TriggerResponse struct {
	Status      string `json:"status"`
	AlertsFired int    `json:"alerts_fired"`
	EmailsSent  int    `json:"emails_sent"`
	EmailStatus string `json:"email_status"`
}

// ── pagination ──

// PaginationRequest page and page_size query parameters
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize applies defaults and returns offset and limit
func (p *PaginationRequest) Normalize() (offset, limit int) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	return (p.Page - 1) * p.PageSize, p.PageSize
}
