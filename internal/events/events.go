// Package events publishes session milestones to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type Type string

const (
	TypeWorkoutAttempted Type = "workout_attempted"
	TypeWorkoutCompleted Type = "workout_completed"
	TypeStreakBroken     Type = "streak_broken"
	TypeDayRollover      Type = "day_rollover"
)

// Event is one session milestone of a device.
type Event struct {
	Type        Type      `json:"type"`
	DeviceID    string    `json:"device_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	StreakCount int       `json:"streak_count"`
	Day         string    `json:"day"`
	Boundaries  int       `json:"boundaries,omitempty"`
	Minutes     int       `json:"minutes,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Noop discards events. It is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, ...Event) error { return nil }
func (Noop) Close() error                            { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes events as JSON, keyed by device ID so one device's events
// stay ordered within a partition.
type Kafka struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafka(brokers []string, topic string, logger *slog.Logger) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
		},
		logger: logger,
	}
}

func (k *Kafka) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding %s event: %w", e.Type, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.DeviceID),
			Value: value,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(e.Type)},
			},
		})
	}
	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publishing %d events: %w", len(msgs), err)
	}
	k.logger.Debug("published session events", "count", len(msgs))
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
