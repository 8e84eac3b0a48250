package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublishKeysByDevice(t *testing.T) {
	w := &fakeWriter{}
	k := &Kafka{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	at := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	err := k.Publish(context.Background(),
		Event{Type: TypeDayRollover, DeviceID: "phone-1", OccurredAt: at, Day: "2025-01-02", Boundaries: 1},
		Event{Type: TypeStreakBroken, DeviceID: "phone-1", OccurredAt: at, Day: "2025-01-02"},
	)
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	msg := w.msgs[0]
	require.Equal(t, "phone-1", string(msg.Key))
	require.Equal(t, at, msg.Time)
	require.Equal(t, "day_rollover", string(msg.Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	require.Equal(t, TypeDayRollover, got.Type)
	require.Equal(t, 1, got.Boundaries)

	require.NoError(t, k.Close())
	require.True(t, w.closed)
}

func TestKafkaPublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	k := &Kafka{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := k.Publish(context.Background(), Event{Type: TypeWorkoutCompleted, DeviceID: "x"})
	require.Error(t, err)
	require.NoError(t, k.Publish(context.Background()), "no events is a no-op")
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	require.NoError(t, p.Publish(context.Background(), Event{Type: TypeWorkoutAttempted}))
	require.NoError(t, p.Close())
}
