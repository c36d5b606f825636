package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestJanitor_Run(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "purges on every tick"},
		{name: "keeps running after errors", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaner := &countingCleaner{err: tt.err}
			j := NewJanitor(cleaner, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				j.Run(ctx)
				close(done)
			}()

			assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

			cancel()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("janitor did not stop")
			}
		})
	}
}

func TestNewJanitor_DefaultInterval(t *testing.T) {
	j := NewJanitor(&countingCleaner{}, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, defaultJanitorInterval, j.interval)
}
