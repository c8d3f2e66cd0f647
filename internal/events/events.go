// Package events publishes fired alerts to a Kafka topic so downstream
// consumers can react without polling the database.
package events

import (
	"time"

	"custody-tracker/internal/model"
)

// SchemaVersion version of the AlertFired payload
const SchemaVersion = "1"

// AlertFired record written once per pending -> fired transition
type AlertFired struct {
	SchemaVersion string              `json:"schema_version"`
	EventID       string              `json:"event_id"`
	ProcessID     string              `json:"process_id"`
	EventAt       time.Time           `json:"event_at"`
	Category      model.EventCategory `json:"category"`
	FiredAt       time.Time           `json:"fired_at"`
}

// NewAlertFired builds the payload for one transitioned event
func NewAlertFired(ev *model.Event, firedAt time.Time) AlertFired {
	return AlertFired{
		SchemaVersion: SchemaVersion,
		EventID:       ev.EventID,
		ProcessID:     ev.ProcessID,
		EventAt:       ev.EventAt.UTC(),
		Category:      ev.Category,
		FiredAt:       firedAt.UTC(),
	}
}
