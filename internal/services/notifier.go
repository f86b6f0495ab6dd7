package services

import (
	"context"
	"encoding/json"
	"errors"

	"rentalhub/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RentalEventsChannel is the redis pub/sub channel lifecycle events go to
const RentalEventsChannel = "rentalhub:rental-events"

// Notifier receives completed lifecycle actions. It is called after the new
// state has been persisted, so a failing notifier never rolls anything back.
type Notifier interface {
	Notify(ctx context.Context, event models.RentalEvent) error
}

// LogNotifier writes every event to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event models.RentalEvent) error {
	n.logger.Info("rental lifecycle event",
		zap.String("rental_id", event.RentalID),
		zap.String("action", string(event.Action)),
		zap.String("from", string(event.From)),
		zap.String("to", string(event.To)),
		zap.String("message", event.Message),
	)
	return nil
}

// RedisNotifier publishes events as JSON for other processes to consume
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client, channel: RentalEventsChannel}
}

func (n *RedisNotifier) Notify(ctx context.Context, event models.RentalEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, payload).Err()
}

// MultiNotifier fans an event out to several notifiers and joins their errors
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event models.RentalEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
