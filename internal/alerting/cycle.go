package alerting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"custody-tracker/internal/model"
	"custody-tracker/pkg/clock"
)

// Trigger what started a cycle
type Trigger string

const (
	TriggerTimer    Trigger = "timer"
	TriggerOnDemand Trigger = "on_demand"
	TriggerQuery    Trigger = "query"
)

// Outcome result of one cycle
type Outcome struct {
	AlertsFired int
	EmailsSent  int
	EmailStatus EmailStatus
	Events      []model.Event
}

// Publisher receives fired events after the transaction commits
type Publisher interface {
	PublishFired(ctx context.Context, fired []model.Event, firedAt time.Time) error
}

// Cycle runs Synchronize, publishes the fired events and dispatches the digest.
// Every trigger path goes through Run.
type Cycle struct {
	clock      clock.Clock
	sync       *Synchronizer
	publisher  Publisher
	dispatcher *Dispatcher
	metrics    *Metrics
	logger     *zap.Logger
}

func NewCycle(clk clock.Clock, sync *Synchronizer, publisher Publisher, dispatcher *Dispatcher, metrics *Metrics, logger *zap.Logger) *Cycle {
	return &Cycle{
		clock:      clk,
		sync:       sync,
		publisher:  publisher,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run executes one cycle. The returned error is a synchronization failure;
// in that case nothing changed and nothing was sent.
func (c *Cycle) Run(ctx context.Context, trigger Trigger) (*Outcome, error) {
	start := time.Now()
	now := c.clock.Now()

	res, err := c.sync.Synchronize(ctx, now)
	if err != nil {
		c.metrics.ObserveCycle(trigger, start, nil, err)
		return nil, err
	}

	out := &Outcome{
		AlertsFired: len(res.Transitioned),
		EmailStatus: EmailStatusNone,
		Events:      res.Transitioned,
	}
	if out.AlertsFired == 0 {
		c.metrics.ObserveCycle(trigger, start, out, nil)
		return out, nil
	}

	if c.publisher != nil {
		if err := c.publisher.PublishFired(ctx, res.Transitioned, now); err != nil {
			c.logger.Warn("publish fired alerts failed", zap.Error(err))
		}
	}

	dr := c.dispatcher.Dispatch(ctx, res.Transitioned)
	out.EmailStatus = dr.Status
	out.EmailsSent = dr.EmailsSent

	c.logger.Info("alert cycle finished",
		zap.String("trigger", string(trigger)),
		zap.Int("alerts_fired", out.AlertsFired),
		zap.String("email_status", string(out.EmailStatus)),
		zap.Int("emails_sent", out.EmailsSent),
	)
	c.metrics.ObserveCycle(trigger, start, out, nil)
	return out, nil
}
