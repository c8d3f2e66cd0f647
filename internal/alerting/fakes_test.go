package alerting

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"custody-tracker/internal/mailer"
	"custody-tracker/internal/model"
	"custody-tracker/internal/repository"
)

// memStore in-memory AlertRepository. A transaction holds the store lock for its
// whole duration and works on a copy that replaces the committed state only on success.
type memStore struct {
	mu     sync.Mutex
	events map[string]model.Event

	// shortMark makes MarkFired report one row fewer than requested
	shortMark bool
	lockErr   error
}

func newMemStore(events ...model.Event) *memStore {
	s := &memStore{events: make(map[string]model.Event)}
	for _, ev := range events {
		s.events[ev.EventID] = ev
	}
	return s
}

func (s *memStore) status(id string) model.AlertStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id].AlertStatus
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx repository.AlertTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make(map[string]model.Event, len(s.events))
	for k, v := range s.events {
		work[k] = v
	}
	if err := fn(&memTx{store: s, events: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.events = work
	return nil
}

func (s *memStore) sorted(pred func(model.Event) bool) []model.Event {
	var out []model.Event
	for _, ev := range s.events {
		if pred(ev) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventAt.Before(out[j].EventAt) })
	return out
}

func (s *memStore) ListByIDs(_ context.Context, ids []string) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.sorted(func(ev model.Event) bool { return want[ev.EventID] }), nil
}

func (s *memStore) ListUpcoming(_ context.Context, now time.Time, limit int) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sorted(func(ev model.Event) bool {
		return (ev.AlertStatus == model.AlertPending || ev.AlertStatus == model.AlertFired) && ev.EventAt.After(now)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListActive(_ context.Context, now time.Time, offset, limit int) ([]model.Event, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sorted(func(ev model.Event) bool {
		return ev.AlertStatus == model.AlertFired && ev.EventAt.After(now)
	})
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *memStore) CountActiveUntil(_ context.Context, now, until time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, ev := range s.events {
		if ev.AlertStatus == model.AlertFired && ev.EventAt.After(now) && !ev.EventAt.After(until) {
			n++
		}
	}
	return n, nil
}

type memTx struct {
	store  *memStore
	events map[string]model.Event
}

func (t *memTx) LockPending(_ context.Context, after, until time.Time) ([]model.Event, error) {
	if t.store.lockErr != nil {
		return nil, t.store.lockErr
	}
	var out []model.Event
	for _, ev := range t.events {
		if ev.AlertStatus == model.AlertPending && ev.EventAt.After(after) && !ev.EventAt.After(until) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventAt.Before(out[j].EventAt) })
	return out, nil
}

func (t *memTx) MarkFired(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		ev, ok := t.events[id]
		if !ok || ev.AlertStatus != model.AlertPending {
			continue
		}
		ev.AlertStatus = model.AlertFired
		t.events[id] = ev
		n++
	}
	if t.store.shortMark && n > 0 {
		n--
	}
	return n, nil
}

// ── notification fakes ──

type staticRecipients struct {
	users []model.User
	err   error
}

func (r staticRecipients) ListRecipients(context.Context) ([]model.User, error) {
	return r.users, r.err
}

type recordingMailer struct {
	mu         sync.Mutex
	configured bool
	err        error
	sent       []*mailer.Message
}

func (m *recordingMailer) Configured() bool { return m.configured }

func (m *recordingMailer) Send(_ context.Context, msg *mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls [][]model.Event
	err   error
}

func (p *recordingPublisher) PublishFired(_ context.Context, fired []model.Event, _ time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fired)
	return p.err
}

var errStorage = errors.New("storage unavailable")

// ── builders ──

var baseNow = time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

func pendingAt(id string, at time.Time) model.Event {
	return model.Event{
		EventID:     id,
		ProcessID:   "proc-" + id,
		EventAt:     at,
		Category:    model.CategoryHearing,
		AlertStatus: model.AlertPending,
	}
}

func withStatus(ev model.Event, s model.AlertStatus) model.Event {
	ev.AlertStatus = s
	return ev
}

func strPtr(s string) *string { return &s }

func lawyer(email string) model.User {
	return model.User{UserID: email, FullName: email, Email: strPtr(email), Role: model.RoleLawyer, IsActive: true}
}
