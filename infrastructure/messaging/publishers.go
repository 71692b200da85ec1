package messaging

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/events"
)

// LogPublisher writes events to the log. It is the default publisher when
// no event bus is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a new log publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs a single event
func (p *LogPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Info("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// PublishBatch logs each event
func (p *LogPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		_ = p.Publish(ctx, event)
	}
	return nil
}

// FanoutPublisher delivers every event to a primary publisher and to local
// observers. Only primary failures are returned.
type FanoutPublisher struct {
	primary   ports.EventPublisher
	observers []ports.EventPublisher
	logger    *zap.Logger
}

// NewFanoutPublisher creates a publisher that forwards to primary and observers
func NewFanoutPublisher(primary ports.EventPublisher, logger *zap.Logger, observers ...ports.EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{primary: primary, observers: observers, logger: logger}
}

// Publish sends one event
func (p *FanoutPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events to the primary, then to each observer
func (p *FanoutPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	start := time.Now()
	err := p.primary.PublishBatch(ctx, domainEvents)

	failures := 0
	for _, observer := range p.observers {
		if oerr := observer.PublishBatch(ctx, domainEvents); oerr != nil {
			failures++
			p.logger.Warn("Observer failed to handle events",
				zap.Int("count", len(domainEvents)),
				zap.Error(oerr),
			)
		}
	}

	p.logger.Debug("Events dispatched",
		zap.Int("total", len(domainEvents)),
		zap.Int("observerFailures", failures),
		zap.Duration("duration", time.Since(start)),
	)

	if err != nil {
		return fmt.Errorf("publish %d events: %w", len(domainEvents), err)
	}
	return nil
}

var (
	_ ports.EventPublisher = (*LogPublisher)(nil)
	_ ports.EventPublisher = (*FanoutPublisher)(nil)
)
