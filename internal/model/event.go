package model

import "time"

// EventCategory kind of dated occurrence
type EventCategory string

const (
	CategoryHearing          EventCategory = "hearing"
	CategoryPreventiveReview EventCategory = "preventive_review"
	CategoryAppealDeadline   EventCategory = "appeal_deadline"
	CategoryOther            EventCategory = "other"
)

// Valid reports whether c is a known category
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryHearing, CategoryPreventiveReview, CategoryAppealDeadline, CategoryOther:
		return true
	}
	return false
}

// Label human readable category name used in digests and exports
func (c EventCategory) Label() string {
	switch c {
	case CategoryHearing:
		return "Hearing"
	case CategoryPreventiveReview:
		return "Preventive custody review"
	case CategoryAppealDeadline:
		return "Appeal deadline"
	case CategoryOther:
		return "Other"
	}
	return string(c)
}

// AlertStatus alert lifecycle state of an event
type AlertStatus string

const (
	AlertPending  AlertStatus = "pending"
	AlertFired    AlertStatus = "fired"
	AlertResolved AlertStatus = "resolved"
)

// Valid reports whether s is a known state
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertPending, AlertFired, AlertResolved:
		return true
	}
	return false
}

// Actor who requests a state change
type Actor int

const (
	// ActorSynchronizer the automatic alert cycle
	ActorSynchronizer Actor = iota
	// ActorCaller an authenticated user acting explicitly
	ActorCaller
)

// CanTransition reports whether actor may move an event from s to next.
//
//	pending  -> fired     synchronizer only
//	fired    -> resolved  caller only
//	resolved              terminal
func (s AlertStatus) CanTransition(next AlertStatus, actor Actor) bool {
	switch s {
	case AlertPending:
		return next == AlertFired && actor == ActorSynchronizer
	case AlertFired:
		return next == AlertResolved && actor == ActorCaller
	case AlertResolved:
		return false
	}
	return false
}

// Event dated occurrence tied to a process, table events
type Event struct {
	EventID     string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	ProcessID   string        `gorm:"type:uuid;not null;index"                       json:"process_id"`
	EventAt     time.Time     `gorm:"type:timestamptz;not null"                      json:"event_at"`
	Category    EventCategory `gorm:"type:varchar(30);not null;default:'other'"      json:"category"`
	Description *string       `gorm:"type:text"                                      json:"description,omitempty"`
	AlertStatus AlertStatus   `gorm:"type:varchar(20);not null;default:'pending'"    json:"alert_status"`
	BaseModel

	Process *Process `gorm:"foreignKey:ProcessID;references:ProcessID" json:"process,omitempty"`
}

func (Event) TableName() string { return "events" }
