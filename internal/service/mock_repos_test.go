package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"custody-tracker/config"
	"custody-tracker/internal/alerting"
	"custody-tracker/internal/model"
	"custody-tracker/internal/repository"
	pkgerrors "custody-tracker/pkg/errors"
)

var errStorage = errors.New("storage unavailable")

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByCPF(_ context.Context, cpf string) (*model.User, error) {
	for _, u := range m.users {
		if u.CPF == cpf {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email != nil && strings.EqualFold(*u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].FullName < all[j].FullName })
	return page(all, offset, limit), int64(len(all)), nil
}

// ── Mock NotificationPreferenceRepository ──

type mockPrefRepo struct {
	prefs map[string]*model.NotificationPreference
}

func newMockPrefRepo() *mockPrefRepo {
	return &mockPrefRepo{prefs: make(map[string]*model.NotificationPreference)}
}

func (m *mockPrefRepo) Get(_ context.Context, userID string) (*model.NotificationPreference, error) {
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPrefRepo) Upsert(_ context.Context, pref *model.NotificationPreference) error {
	cp := *pref
	m.prefs[pref.UserID] = &cp
	return nil
}

func (m *mockPrefRepo) ListRecipients(context.Context) ([]model.User, error) {
	return nil, nil
}

// ── Mock PersonRepository ──

type mockPersonRepo struct {
	persons   map[string]*model.Person
	processes *mockProcessRepo
	seq       int
	createErr error
}

func newMockPersonRepo(processes *mockProcessRepo) *mockPersonRepo {
	return &mockPersonRepo{persons: make(map[string]*model.Person), processes: processes}
}

func (m *mockPersonRepo) Create(_ context.Context, person *model.Person) error {
	if m.createErr != nil {
		return m.createErr
	}
	if person.PersonID == "" {
		m.seq++
		person.PersonID = fmt.Sprintf("person-%d", m.seq)
	}
	cp := *person
	cp.Processes = nil
	m.persons[person.PersonID] = &cp
	return nil
}

func (m *mockPersonRepo) GetByID(_ context.Context, id string) (*model.Person, error) {
	p, ok := m.persons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Processes = m.processes.byPerson(id)
	return &cp, nil
}

func (m *mockPersonRepo) GetByCPF(_ context.Context, cpf string) (*model.Person, error) {
	for _, p := range m.persons {
		if p.CPF != nil && *p.CPF == cpf {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPersonRepo) Search(_ context.Context, filters *repository.PersonSearchFilters, offset, limit int) ([]model.Person, int64, error) {
	var all []model.Person
	for _, p := range m.persons {
		if filters != nil && filters.Name != "" &&
			!strings.Contains(strings.ToLower(p.FullName), strings.ToLower(filters.Name)) {
			continue
		}
		procs := m.processes.byPerson(p.PersonID)
		if filters != nil && (filters.ProceduralStatus != "" || filters.ArrestedOn != nil) {
			matched := false
			for _, pr := range procs {
				if filters.ProceduralStatus != "" && (pr.ProceduralStatus == nil || *pr.ProceduralStatus != filters.ProceduralStatus) {
					continue
				}
				if filters.ArrestedOn != nil && (pr.ArrestedOn == nil || !pr.ArrestedOn.Equal(*filters.ArrestedOn)) {
					continue
				}
				matched = true
			}
			if !matched {
				continue
			}
		}
		cp := *p
		cp.Processes = procs
		all = append(all, cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].FullName < all[j].FullName })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockPersonRepo) Update(_ context.Context, person *model.Person) error {
	cp := *person
	cp.Processes = nil
	m.persons[person.PersonID] = &cp
	return nil
}

func (m *mockPersonRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.persons[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.persons, id)
	for pid, pr := range m.processes.processes {
		if pr.PersonID == id {
			delete(m.processes.processes, pid)
		}
	}
	return nil
}

// ── Mock ProcessRepository ──

type mockProcessRepo struct {
	processes map[string]*model.Process
	seq       int
	batchErr  error
}

func newMockProcessRepo() *mockProcessRepo {
	return &mockProcessRepo{processes: make(map[string]*model.Process)}
}

func (m *mockProcessRepo) Create(_ context.Context, process *model.Process) error {
	if process.ProcessID == "" {
		m.seq++
		process.ProcessID = fmt.Sprintf("process-%d", m.seq)
	}
	cp := *process
	m.processes[process.ProcessID] = &cp
	return nil
}

func (m *mockProcessRepo) BatchCreate(ctx context.Context, processes []model.Process) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	for i := range processes {
		if err := m.Create(ctx, &processes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockProcessRepo) GetByID(_ context.Context, id string) (*model.Process, error) {
	if p, ok := m.processes[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProcessRepo) Update(_ context.Context, process *model.Process) error {
	cp := *process
	m.processes[process.ProcessID] = &cp
	return nil
}

func (m *mockProcessRepo) byPerson(personID string) []model.Process {
	var out []model.Process
	for _, p := range m.processes {
		if p.PersonID == personID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessID < out[j].ProcessID })
	return out
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	events map[string]*model.Event
	seq    int
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if event.EventID == "" {
		m.seq++
		event.EventID = fmt.Sprintf("event-%d", m.seq)
	}
	cp := *event
	m.events[event.EventID] = &cp
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	e, ok := m.events[event.EventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.EventAt = event.EventAt.UTC()
	e.Category = event.Category
	e.Description = event.Description
	return nil
}

func (m *mockEventRepo) UpdateStatus(_ context.Context, id string, from, to model.AlertStatus) error {
	e, ok := m.events[id]
	if !ok || e.AlertStatus != from {
		return pkgerrors.ErrTransitionConflict
	}
	e.AlertStatus = to
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.events, id)
	return nil
}

// ── Mock AlertRepository (read side over mockEventRepo) ──

type mockAlertRepo struct {
	events *mockEventRepo
	err    error
}

func (m *mockAlertRepo) WithTx(context.Context, func(tx repository.AlertTx) error) error {
	return errors.New("not used by services")
}

func (m *mockAlertRepo) ListByIDs(_ context.Context, ids []string) ([]model.Event, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.filter(func(e *model.Event) bool { return want[e.EventID] }), nil
}

func (m *mockAlertRepo) ListUpcoming(_ context.Context, now time.Time, limit int) ([]model.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := m.filter(func(e *model.Event) bool {
		return (e.AlertStatus == model.AlertPending || e.AlertStatus == model.AlertFired) && e.EventAt.After(now)
	})
	return page(out, 0, limit), nil
}

func (m *mockAlertRepo) ListActive(_ context.Context, now time.Time, offset, limit int) ([]model.Event, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	out := m.filter(func(e *model.Event) bool {
		return e.AlertStatus == model.AlertFired && e.EventAt.After(now)
	})
	return page(out, offset, limit), int64(len(out)), nil
}

func (m *mockAlertRepo) CountActiveUntil(_ context.Context, now, until time.Time) (int64, error) {
	out := m.filter(func(e *model.Event) bool {
		return e.AlertStatus == model.AlertFired && e.EventAt.After(now) && !e.EventAt.After(until)
	})
	return int64(len(out)), nil
}

func (m *mockAlertRepo) filter(keep func(e *model.Event) bool) []model.Event {
	var out []model.Event
	for _, e := range m.events.events {
		if keep(e) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventAt.Before(out[j].EventAt) })
	return out
}

// ── Mock TxRunner ──

// mockTxRunner restores persons and processes when fn fails
type mockTxRunner struct {
	repo      *repository.Repository
	persons   *mockPersonRepo
	processes *mockProcessRepo
}

func (m *mockTxRunner) Transaction(_ context.Context, fn func(repo *repository.Repository) error) error {
	persons := make(map[string]*model.Person, len(m.persons.persons))
	for k, v := range m.persons.persons {
		persons[k] = v
	}
	processes := make(map[string]*model.Process, len(m.processes.processes))
	for k, v := range m.processes.processes {
		processes[k] = v
	}
	if err := fn(m.repo); err != nil {
		m.persons.persons = persons
		m.processes.processes = processes
		return err
	}
	return nil
}

// ── Mock AlertCycle ──

type mockCycle struct {
	calls    []alerting.Trigger
	outcome  alerting.Outcome
	err      error
	deadline bool
	// onRun mutates the store like a real cycle would
	onRun func()
}

func (m *mockCycle) Run(ctx context.Context, trigger alerting.Trigger) (*alerting.Outcome, error) {
	m.calls = append(m.calls, trigger)
	_, m.deadline = ctx.Deadline()
	if m.err != nil {
		return nil, m.err
	}
	if m.onRun != nil {
		m.onRun()
	}
	out := m.outcome
	return &out, nil
}

// ── fixture ──

type mockStore struct {
	repo      *repository.Repository
	users     *mockUserRepo
	prefs     *mockPrefRepo
	persons   *mockPersonRepo
	processes *mockProcessRepo
	events    *mockEventRepo
	alerts    *mockAlertRepo
}

func newMockStore() *mockStore {
	s := &mockStore{
		users:     newMockUserRepo(),
		prefs:     newMockPrefRepo(),
		processes: newMockProcessRepo(),
		events:    newMockEventRepo(),
	}
	s.persons = newMockPersonRepo(s.processes)
	s.alerts = &mockAlertRepo{events: s.events}
	s.repo = &repository.Repository{
		User:                   s.users,
		NotificationPreference: s.prefs,
		Person:                 s.persons,
		Process:                s.processes,
		Event:                  s.events,
		Alert:                  s.alerts,
	}
	s.repo.Tx = &mockTxRunner{repo: s.repo, persons: s.persons, processes: s.processes}
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: 8080, BaseURL: "https://custody.example"},
		Auth:      config.AuthConfig{JWTSecret: "service-test-secret-0123456789", AccessTokenTTL: time.Hour},
		Alerts:    config.AlertsConfig{TriggerTimeout: 5 * time.Second, PreviewSize: 20},
		Scheduler: config.SchedulerConfig{Timezone: "UTC"},
	}
}

var testLogger = zap.NewNop()

// seedUser stores an active user whose password is "password123"
func (s *mockStore) seedUser(id, cpf, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u := &model.User{
		UserID:       id,
		FullName:     "User " + id,
		CPF:          cpf,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	s.users.users[id] = u
	return u
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func strPtr(s string) *string { return &s }
