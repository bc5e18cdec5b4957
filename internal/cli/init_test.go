package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestShutdownAfterRunsCleanupOnCancel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, cancel := context.WithCancel(context.Background())
	var deadline time.Time
	done := shutdownAfter(ctx, logger, time.Second, func(c context.Context) {
		deadline, _ = c.Deadline()
	})

	select {
	case <-done:
		t.Fatal("cleanup ran before cancellation")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	WaitForShutdown(ctx, done)

	if deadline.IsZero() {
		t.Fatal("cleanup context has no deadline")
	}
	if !strings.Contains(buf.String(), "Shutdown complete") {
		t.Errorf("log output:\n%s", buf.String())
	}
}

func TestShutdownAfterReportsTimeout(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	<-shutdownAfter(ctx, logger, time.Millisecond, func(c context.Context) {
		<-c.Done()
	})

	if !strings.Contains(buf.String(), "Shutdown timeout reached") {
		t.Errorf("log output:\n%s", buf.String())
	}
}
