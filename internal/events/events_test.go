package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daylog/internal/core"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)
	e := Added("u1", "2024-05-06", core.Activity{ID: "a1", Title: "Run", Category: "Health", Minutes: 30, CreatedAt: at}, at)

	body, err := Encode(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "activity.added",
		"user_id": "u1",
		"date": "2024-05-06",
		"activity": {"id": "a1", "title": "Run", "category": "Health", "minutes": 30, "created_at": "2024-05-06T09:30:00Z"},
		"occurred_at": "2024-05-06T09:30:00Z"
	}`, string(body))

	got, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, e.Key(), got.Key())
	assert.Equal(t, e.Activity.Minutes, got.Activity.Minutes)
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]string{
		"not json":     `{"type":`,
		"unknown type": `{"type":"activity.renamed","user_id":"u1","date":"2024-05-06","activity":{"id":"a1"}}`,
		"missing user": `{"type":"activity.deleted","date":"2024-05-06","activity":{"id":"a1"}}`,
		"bad date":     `{"type":"activity.deleted","user_id":"u1","date":"06/05/2024","activity":{"id":"a1"}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			assert.Error(t, err)
		})
	}
}

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, topic: "daylog.activity-events"}

	e := Deleted("u1", "2024-05-06", "a1", time.Now())
	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "u1/2024-05-06", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, "activity.deleted", string(w.msgs[0].Headers[0].Value))

	w.err = errors.New("leader not available")
	err := p.Publish(context.Background(), e)
	assert.ErrorContains(t, err, "daylog.activity-events")
}
