package dto

import "time"

// ── events ──

// EventRequest create or replace an event
type EventRequest struct {
	EventAt     time.Time `json:"event_at"    binding:"required"`
	Category    string    `json:"category"    binding:"omitempty,oneof=hearing preventive_review appeal_deadline other"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
}

// EventStatusRequest caller-driven alert transition
type EventStatusRequest struct {
	AlertStatus string `json:"alert_status" binding:"required,oneof=pending fired resolved"`
}
