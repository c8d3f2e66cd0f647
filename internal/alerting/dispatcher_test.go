package alerting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"custody-tracker/internal/model"
)

func newTestDispatcher(store *memStore, rcpts staticRecipients, m *recordingMailer) *Dispatcher {
	return NewDispatcher(rcpts, store, m, DigestOptions{SubjectPrefix: "[Custody]", PreviewSize: 20}, zap.NewNop())
}

func TestDispatch_EmptyIsNone(t *testing.T) {
	m := &recordingMailer{configured: true}
	d := newTestDispatcher(newMemStore(), staticRecipients{users: []model.User{lawyer("a@example.com")}}, m)

	res := d.Dispatch(context.Background(), nil)
	if res.Status != EmailStatusNone || res.EmailsSent != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if m.count() != 0 {
		t.Error("no mail expected")
	}
}

func TestDispatch_NoRecipients(t *testing.T) {
	m := &recordingMailer{configured: true}
	ev := withStatus(pendingAt("a", baseNow.Add(time.Hour)), model.AlertFired)
	d := newTestDispatcher(newMemStore(ev), staticRecipients{}, m)

	res := d.Dispatch(context.Background(), []model.Event{ev})
	if res.Status != EmailStatusNotConfigured {
		t.Errorf("expected not_configured, got %s", res.Status)
	}
	if m.count() != 0 {
		t.Error("no delivery attempt expected without recipients")
	}
}

func TestDispatch_MailerNotConfigured(t *testing.T) {
	m := &recordingMailer{}
	ev := withStatus(pendingAt("a", baseNow.Add(time.Hour)), model.AlertFired)
	d := newTestDispatcher(newMemStore(ev), staticRecipients{users: []model.User{lawyer("a@example.com")}}, m)

	res := d.Dispatch(context.Background(), []model.Event{ev})
	if res.Status != EmailStatusNotConfigured {
		t.Errorf("expected not_configured, got %s", res.Status)
	}
	if m.count() != 0 {
		t.Error("no delivery attempt expected without a provider")
	}
}

func TestDispatch_SendsOneDigestToDedupedRecipients(t *testing.T) {
	m := &recordingMailer{configured: true}
	ev := withStatus(pendingAt("a", baseNow.Add(time.Hour)), model.AlertFired)
	users := []model.User{
		lawyer("Ana@Example.com "),
		lawyer("ana@example.com"),
		lawyer("bruno@example.com"),
		{UserID: "no-mail", FullName: "No Mail"},
	}
	d := newTestDispatcher(newMemStore(ev), staticRecipients{users: users}, m)

	res := d.Dispatch(context.Background(), []model.Event{ev})
	if res.Status != EmailStatusSent || res.EmailsSent != 2 {
		t.Fatalf("expected sent to 2, got %+v", res)
	}
	if m.count() != 1 {
		t.Fatalf("expected exactly one send, got %d", m.count())
	}
	to := m.sent[0].To
	if len(to) != 2 || to[0] != "ana@example.com" || to[1] != "bruno@example.com" {
		t.Errorf("unexpected recipients %v", to)
	}
	if !strings.HasPrefix(m.sent[0].Subject, "[Custody] 1 alert fired") {
		t.Errorf("unexpected subject %q", m.sent[0].Subject)
	}
}

func TestDispatch_DeliveryFailureIsStatus(t *testing.T) {
	m := &recordingMailer{configured: true, err: errors.New("relay refused")}
	ev := withStatus(pendingAt("a", baseNow.Add(time.Hour)), model.AlertFired)
	d := newTestDispatcher(newMemStore(ev), staticRecipients{users: []model.User{lawyer("a@example.com")}}, m)

	res := d.Dispatch(context.Background(), []model.Event{ev})
	if res.Status != EmailStatusFailed || res.EmailsSent != 0 {
		t.Errorf("expected failed, got %+v", res)
	}
	if m.count() != 1 {
		t.Errorf("expected a single attempt without retry, got %d", m.count())
	}
}

func TestDispatch_DigestCountsEventsMissingOnReload(t *testing.T) {
	m := &recordingMailer{configured: true}
	kept := withStatus(pendingAt("kept", baseNow.Add(2*time.Hour)), model.AlertFired)
	deleted := withStatus(pendingAt("deleted", baseNow.Add(time.Hour)), model.AlertFired)
	// only kept is still stored when the digest is built
	d := newTestDispatcher(newMemStore(kept), staticRecipients{users: []model.User{lawyer("a@example.com")}}, m)

	res := d.Dispatch(context.Background(), []model.Event{kept, deleted})
	if res.Status != EmailStatusSent || res.Previewed != 2 {
		t.Fatalf("expected both events in the digest, got %+v", res)
	}
	if !strings.HasPrefix(m.sent[0].Subject, "[Custody] 2 alerts fired") {
		t.Errorf("unexpected subject %q", m.sent[0].Subject)
	}
	text := m.sent[0].Text
	if strings.Index(text, baseNow.Add(time.Hour).UTC().Format("2006-01-02 15:04")) >
		strings.Index(text, baseNow.Add(2*time.Hour).UTC().Format("2006-01-02 15:04")) {
		t.Errorf("digest lines not ordered by event time:\n%s", text)
	}
}

func TestDispatch_RecipientLookupFailure(t *testing.T) {
	m := &recordingMailer{configured: true}
	ev := withStatus(pendingAt("a", baseNow.Add(time.Hour)), model.AlertFired)
	d := newTestDispatcher(newMemStore(ev), staticRecipients{err: errStorage}, m)

	if res := d.Dispatch(context.Background(), []model.Event{ev}); res.Status != EmailStatusFailed {
		t.Errorf("expected failed, got %s", res.Status)
	}
}

func TestDispatch_DigestPreviewOfTwentyFive(t *testing.T) {
	var fired []model.Event
	for i := 25; i >= 1; i-- {
		fired = append(fired, withStatus(
			pendingAt(fmt.Sprintf("ev-%02d", i), baseNow.Add(time.Duration(i)*time.Hour)),
			model.AlertFired,
		))
	}
	m := &recordingMailer{configured: true}
	d := newTestDispatcher(newMemStore(fired...), staticRecipients{users: []model.User{lawyer("a@example.com")}}, m)

	res := d.Dispatch(context.Background(), fired)
	if res.Total != 25 || res.Previewed != 20 {
		t.Fatalf("expected total 25 and preview 20, got %+v", res)
	}
	body := m.sent[0].Text
	if !strings.Contains(body, "25 event(s)") {
		t.Errorf("body should state the total:\n%s", body)
	}
	if !strings.Contains(body, "and 5 more") {
		t.Errorf("body should mention the 5 events not listed:\n%s", body)
	}
	if strings.Count(body, "\n- ") != 20 {
		t.Errorf("expected 20 listed events, got %d", strings.Count(body, "\n- "))
	}
	// earliest first
	first := baseNow.Add(time.Hour).Format("2006-01-02 15:04")
	if idx := strings.Index(body, "- "); idx < 0 || !strings.HasPrefix(body[idx+2:], first) {
		t.Errorf("first listed event should be the earliest (%s):\n%s", first, body)
	}
}

func TestBuildDigest_CaseDetails(t *testing.T) {
	ev := withStatus(pendingAt("a", baseNow.Add(26*time.Hour)), model.AlertFired)
	ev.Category = model.CategoryPreventiveReview
	ev.Description = strPtr("room 3")
	ev.Process = &model.Process{ProcessNumber: "0001234-56", Person: &model.Person{FullName: "Maria Souza"}}

	d := BuildDigest([]model.Event{ev}, DigestOptions{})
	for _, want := range []string{"Preventive custody review", "Maria Souza", "process 0001234-56", "room 3", "UTC"} {
		if !strings.Contains(d.Text, want) {
			t.Errorf("digest missing %q:\n%s", want, d.Text)
		}
	}
	if d.Total != 1 || d.Previewed != 1 {
		t.Errorf("unexpected counts %+v", d)
	}
}
