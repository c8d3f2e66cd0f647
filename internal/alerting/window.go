// Package alerting implements the alert lifecycle: selecting pending events that
// entered the look-ahead window, firing them exactly once, and sending the digest.
package alerting

import (
	"time"

	"custody-tracker/internal/model"
)

// Horizon look-ahead interval of the alert window
const Horizon = 7 * 24 * time.Hour

// Window half-open interval (After, Until] of UTC instants
type Window struct {
	After time.Time
	Until time.Time
}

// WindowAt returns the window that starts at now and spans horizon
func WindowAt(now time.Time, horizon time.Duration) Window {
	n := now.UTC()
	return Window{After: n, Until: n.Add(horizon)}
}

// Contains reports After < t <= Until
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return t.After(w.After) && !t.After(w.Until)
}

// Evaluate returns the pending events inside the window at now, in input order.
// Past-due pending events never qualify.
func Evaluate(events []model.Event, now time.Time, horizon time.Duration) []model.Event {
	w := WindowAt(now, horizon)
	var due []model.Event
	for _, ev := range events {
		if ev.AlertStatus != model.AlertPending {
			continue
		}
		if w.Contains(ev.EventAt) {
			due = append(due, ev)
		}
	}
	return due
}
