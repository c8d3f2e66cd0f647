// Package mailer delivers outbound e-mail through SMTP, Resend or Amazon SES,
// with an ordered fallback between the configured providers.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"custody-tracker/config"
)

// ErrNotConfigured no provider is able to deliver mail
var ErrNotConfigured = errors.New("no e-mail provider configured")

// ErrNoRecipients the message has an empty recipient list
var ErrNoRecipients = errors.New("no recipients specified")

// Message one outbound e-mail addressed to every recipient at once
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
	// Configured reports whether Send can possibly succeed
	Configured() bool
}

// Provider a single delivery backend
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
	Configured() bool
}

// Registry routes messages to the primary provider and falls back in order on failure
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	primary   string
	fallback  []string
	logger    *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

// New builds the registry described by cfg. Providers lacking credentials are
// registered but report Configured() == false.
func New(ctx context.Context, cfg *config.MailConfig, logger *zap.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	r.Register(NewSMTPProvider(cfg, logger))
	r.Register(NewResendProvider(cfg, logger))
	r.Register(NewSESProvider(ctx, cfg, logger))

	if err := r.SetPrimary(cfg.Provider); err != nil {
		return nil, err
	}
	if err := r.SetFallback(cfg.Fallback...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds or replaces a provider
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	r.logger.Info("e-mail provider registered",
		zap.String("name", p.Name()),
		zap.Bool("configured", p.Configured()),
	)
}

// SetPrimary selects the provider tried first
func (r *Registry) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("e-mail provider %q not registered", name)
	}
	r.primary = name
	return nil
}

// SetFallback sets the providers tried, in order, after the primary
func (r *Registry) SetFallback(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.providers[name]; !ok {
			return fmt.Errorf("e-mail provider %q not registered", name)
		}
	}
	r.fallback = append([]string(nil), names...)
	return nil
}

// Configured reports whether the primary or any fallback provider is configured
func (r *Registry) Configured() bool {
	return len(r.chain()) > 0
}

// chain configured providers in try order: primary first, then fallbacks
func (r *Registry) chain() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Provider
	seen := make(map[string]bool)
	for _, name := range append([]string{r.primary}, r.fallback...) {
		p, ok := r.providers[name]
		if !ok || seen[name] || !p.Configured() {
			continue
		}
		seen[name] = true
		out = append(out, p)
	}
	return out
}

// Send delivers msg through the first provider that succeeds.
// The error of the first attempted provider is returned when all fail.
func (r *Registry) Send(ctx context.Context, msg *Message) error {
	if msg == nil || len(msg.To) == 0 {
		return ErrNoRecipients
	}
	chain := r.chain()
	if len(chain) == 0 {
		return ErrNotConfigured
	}

	var firstErr error
	for i, p := range chain {
		err := p.Send(ctx, msg)
		if err == nil {
			if i > 0 {
				r.logger.Warn("e-mail delivered by fallback provider",
					zap.String("provider", p.Name()),
					zap.NamedError("primary_error", firstErr),
				)
			}
			return nil
		}
		r.logger.Error("e-mail provider failed",
			zap.String("provider", p.Name()),
			zap.Int("recipients", len(msg.To)),
			zap.Error(err),
		)
		if firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return firstErr
}
