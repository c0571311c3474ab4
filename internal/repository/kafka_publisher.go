package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domrepo "CrediTech/internal/domain/repository"
	applogger "CrediTech/pkg/logger"
)

// Producer is the slice of pkg/kafka.Producer used for publishing.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher ships analytics events to one topic, keyed by category.
// It also serves as the log collector's digest sink.
type KafkaPublisher struct {
	p     Producer
	topic string
	now   func() time.Time
}

var _ domrepo.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(p Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{p: p, topic: topic, now: time.Now}
}

// Publish fills in a missing ID and timestamp, then writes ev as JSON.
func (k *KafkaPublisher) Publish(ctx context.Context, ev domrepo.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = k.now().UTC()
	}
	if err := k.p.Publish(ctx, k.topic, []byte(ev.Key), ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// PublishMessage writes payload to an arbitrary topic without a key.
func (k *KafkaPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return k.p.Publish(ctx, topic, nil, payload)
}

func (k *KafkaPublisher) Close() error {
	return k.p.Close()
}

// LoggingPublisher wraps an EventPublisher and logs failures instead of returning them.
type LoggingPublisher struct {
	next domrepo.EventPublisher
	l    *applogger.Logger
}

func NewLoggingPublisher(next domrepo.EventPublisher, l *applogger.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, l: applogger.OrNop(l).Component("events")}
}

func (p *LoggingPublisher) Publish(ctx context.Context, ev domrepo.Event) error {
	if err := p.next.Publish(ctx, ev); err != nil {
		p.l.Warn("event dropped",
			applogger.String("type", ev.Type),
			applogger.String("key", ev.Key),
			applogger.Error(err))
	}
	return nil
}

func (p *LoggingPublisher) Close() error { return p.next.Close() }
