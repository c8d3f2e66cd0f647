package alerting

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"custody-tracker/internal/mailer"
	"custody-tracker/internal/model"
)

// EmailStatus outcome of one notification attempt
type EmailStatus string

const (
	EmailStatusNone          EmailStatus = "none"
	EmailStatusSent          EmailStatus = "sent"
	EmailStatusFailed        EmailStatus = "failed"
	EmailStatusNotConfigured EmailStatus = "not_configured"
)

// DispatchResult what Dispatch did
type DispatchResult struct {
	Status     EmailStatus
	EmailsSent int
	Total      int
	Previewed  int
}

// RecipientSource opted-in users
type RecipientSource interface {
	ListRecipients(ctx context.Context) ([]model.User, error)
}

// EventLoader reloads events with their process and person
type EventLoader interface {
	ListByIDs(ctx context.Context, ids []string) ([]model.Event, error)
}

// Dispatcher sends one digest per batch of fired events
type Dispatcher struct {
	recipients RecipientSource
	events     EventLoader
	mail       mailer.Mailer
	opts       DigestOptions
	logger     *zap.Logger
}

func NewDispatcher(recipients RecipientSource, events EventLoader, mail mailer.Mailer, opts DigestOptions, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		recipients: recipients,
		events:     events,
		mail:       mail,
		opts:       opts,
		logger:     logger,
	}
}

// Dispatch notifies opted-in users about fired. It never fails: delivery
// problems are reported through the result status and logged, never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, fired []model.Event) DispatchResult {
	if len(fired) == 0 {
		return DispatchResult{Status: EmailStatusNone}
	}
	res := DispatchResult{Total: len(fired)}

	if d.mail == nil || !d.mail.Configured() {
		d.logger.Warn("alert digest skipped: no e-mail provider configured", zap.Int("fired", len(fired)))
		res.Status = EmailStatusNotConfigured
		return res
	}

	users, err := d.recipients.ListRecipients(ctx)
	if err != nil {
		d.logger.Error("load alert recipients failed", zap.Error(err))
		res.Status = EmailStatusFailed
		return res
	}
	to := normalizeRecipients(users)
	if len(to) == 0 {
		d.logger.Info("alert digest skipped: no opted-in recipients", zap.Int("fired", len(fired)))
		res.Status = EmailStatusNotConfigured
		return res
	}

	digest := BuildDigest(d.load(ctx, fired), d.opts)
	res.Previewed = digest.Previewed

	err = d.mail.Send(ctx, &mailer.Message{
		To:      to,
		Subject: digest.Subject,
		Text:    digest.Text,
	})
	if err != nil {
		d.logger.Error("alert digest delivery failed",
			zap.Int("recipients", len(to)),
			zap.Int("fired", len(fired)),
			zap.Error(err),
		)
		res.Status = EmailStatusFailed
		return res
	}

	d.logger.Info("alert digest sent",
		zap.Int("recipients", len(to)),
		zap.Int("fired", len(fired)),
	)
	res.Status = EmailStatusSent
	res.EmailsSent = len(to)
	return res
}

// load returns fired with process and person attached, ordered by event time.
// Events the reload misses (storage error, deleted since commit) stay in as bare events,
// so the digest always counts every transition.
func (d *Dispatcher) load(ctx context.Context, fired []model.Event) []model.Event {
	ids := make([]string, 0, len(fired))
	for _, ev := range fired {
		ids = append(ids, ev.EventID)
	}

	loaded, err := d.events.ListByIDs(ctx, ids)
	if err != nil {
		d.logger.Warn("reload fired events failed, digest without case details", zap.Error(err))
		loaded = nil
	}

	found := make(map[string]struct{}, len(loaded))
	for i := range loaded {
		found[loaded[i].EventID] = struct{}{}
	}
	for _, ev := range fired {
		if _, ok := found[ev.EventID]; !ok {
			loaded = append(loaded, ev)
		}
	}
	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].EventAt.Before(loaded[j].EventAt)
	})
	return loaded
}

// normalizeRecipients trims, lower-cases and de-duplicates addresses, keeping first-seen order
func normalizeRecipients(users []model.User) []string {
	seen := make(map[string]struct{}, len(users))
	out := make([]string, 0, len(users))
	for i := range users {
		addr := strings.ToLower(strings.TrimSpace(users[i].MailAddress()))
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
