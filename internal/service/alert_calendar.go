package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"custody-tracker/internal/model"
)

// ── iCalendar feed ──────────────────────────────────────────
//
// One VEVENT per pending or fired event after now. Events are stored as
// instants, so each entry is a one hour block starting at event_at (UTC).
// UIDs are stable per event so subscribed calendars update in place.
// ─────────────────────────────────────────────────────────────

const (
	calendarProductID  = "-//custody-tracker//alerts//EN"
	calendarName       = "Custody alerts"
	calendarEventBlock = time.Hour
	calendarUIDDomain  = "custody-tracker"
)

func (s *alertService) CalendarFeed(ctx context.Context) ([]byte, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	events, err := s.repo.Alert.ListUpcoming(ctx, now, maxFeedRows)
	if err != nil {
		s.logger.Error("list upcoming alerts for calendar failed", zap.Error(err))
		return nil, err
	}

	cal := buildCalendar(events, now, s.baseURL)
	return []byte(cal.Serialize()), nil
}

func buildCalendar(events []model.Event, now time.Time, baseURL string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(calendarName)

	for i := range events {
		ev := &events[i]
		entry := cal.AddEvent(fmt.Sprintf("%s@%s", ev.EventID, calendarUIDDomain))
		entry.SetDtStampTime(now.UTC())
		entry.SetStartAt(ev.EventAt.UTC())
		entry.SetEndAt(ev.EventAt.UTC().Add(calendarEventBlock))
		entry.SetSummary(calendarSummary(ev))
		entry.SetDescription(calendarDescription(ev))
		entry.AddProperty(ics.ComponentPropertyCategories, strings.ToUpper(string(ev.Category)))
		if baseURL != "" && ev.Process != nil {
			entry.SetURL(strings.TrimRight(baseURL, "/") + "/persons/" + ev.Process.PersonID)
		}
	}
	return cal
}

func calendarSummary(ev *model.Event) string {
	return fmt.Sprintf("%s: %s", ev.Category.Label(), personName(ev))
}

func calendarDescription(ev *model.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Process %s", processNumber(ev))
	fmt.Fprintf(&b, "\nAlert status: %s", ev.AlertStatus)
	if ev.Description != nil && *ev.Description != "" {
		b.WriteString("\n")
		b.WriteString(*ev.Description)
	}
	return b.String()
}
