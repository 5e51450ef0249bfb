package maintenance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestStartZeroIntervalDisables(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Start(context.Background(), nil, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("zero interval must disable maintenance and return immediately")
	}
}
