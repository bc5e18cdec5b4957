package amqp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"daylog/internal/events"
)

func TestExponentialBackoffDoublesUntilCap(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	for attempt, w := range want {
		if got := exponentialBackoff(attempt); got != w {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", attempt, got, w)
		}
	}
	for _, attempt := range []int{5, 9, 40} {
		if got := exponentialBackoff(attempt); got != maxBackoff {
			t.Errorf("exponentialBackoff(%d) = %v, want cap %v", attempt, got, maxBackoff)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":              {nil, false},
		"refused":          {errors.New("dial tcp: connection refused"), true},
		"eof":              {errors.New("unexpected EOF"), true},
		"broken pipe":      {errors.New("write: broken pipe"), true},
		"channel not open": {errors.New("Exception (504) Reason: \"channel/connection is not open\""), true},
		"wrapped closed":   {fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		"unroutable":       {errors.New("NO_ROUTE"), false},
		"encode":           {errors.New("json: unsupported value"), false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := isConnectionError(tc.err); got != tc.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestCircuitBreaker(t *testing.T) {
	c := &Client{exchangeName: "daylog", queueName: "daylog.activities"}

	if c.isCircuitOpen() {
		t.Fatal("new client starts with an open circuit")
	}

	for i := 1; i < maxFailures; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatalf("circuit opened after %d failures, threshold is %d", maxFailures-1, maxFailures)
	}
	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("circuit still closed at failure threshold")
	}

	c.mu.Lock()
	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	c.mu.Unlock()
	if c.isCircuitOpen() {
		t.Fatal("circuit did not let a probe through after the open timeout")
	}
	if got := c.state; got != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", got)
	}

	// A failed probe reopens immediately.
	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("failed probe left the circuit closed")
	}

	c.recordSuccess()
	if c.isCircuitOpen() || c.failureCount != 0 || c.state != StateClosed {
		t.Errorf("after success: open=%v failures=%d state=%d", c.isCircuitOpen(), c.failureCount, c.state)
	}
}

func TestPublishShortCircuits(t *testing.T) {
	e := events.Deleted("u1", "2024-05-06", "a1", time.Now())

	open := &Client{state: StateOpen, lastFailure: time.Now()}
	if err := open.Publish(context.Background(), e); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Publish() with open circuit = %v, want ErrCircuitOpen", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&Client{}).Publish(ctx, e); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish() with canceled context = %v, want context.Canceled", err)
	}
}

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked++
	return nil
}

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

func TestDispatch(t *testing.T) {
	valid, err := events.Encode(events.Deleted("u1", "2024-05-06", "a1", time.Now()))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name        string
		body        []byte
		handlerErr  error
		wantAcked   int
		wantNacked  int
		wantRequeue bool
		wantCalls   int
	}{
		{name: "handled", body: valid, wantAcked: 1, wantCalls: 1},
		{name: "handler failure requeues", body: valid, handlerErr: errors.New("sheets down"), wantNacked: 1, wantRequeue: true, wantCalls: 1},
		{name: "malformed is dropped", body: []byte(`{"id": 12}`), wantNacked: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			calls := 0
			handler := func(_ context.Context, e events.ActivityEvent) error {
				calls++
				if e.Activity.ID != "a1" {
					t.Errorf("handler got activity %q", e.Activity.ID)
				}
				return tt.handlerErr
			}

			dispatch(context.Background(), inbound{body: tt.body, ack: ack}, handler)

			if ack.acked != tt.wantAcked || ack.nacked != tt.wantNacked {
				t.Errorf("acked=%d nacked=%d, want acked=%d nacked=%d", ack.acked, ack.nacked, tt.wantAcked, tt.wantNacked)
			}
			if ack.requeue != tt.wantRequeue {
				t.Errorf("requeue = %v, want %v", ack.requeue, tt.wantRequeue)
			}
			if calls != tt.wantCalls {
				t.Errorf("handler calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}
