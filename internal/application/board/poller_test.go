package board_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/andrescamacho/shopfloor-go/internal/application/board"
)

func TestPoller_RefreshesUntilStopped(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Arrange
	var calls atomic.Int32
	p := board.NewPoller(5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	// Act
	p.Start(context.Background())
	assert.True(t, p.Running())
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	p.Stop()

	// Assert
	assert.False(t, p.Running())
	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestPoller_RefreshesImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)

	refreshed := make(chan struct{}, 1)
	p := board.NewPoller(time.Hour, func(ctx context.Context) error {
		select {
		case refreshed <- struct{}{}:
		default:
		}
		return nil
	}, nil)

	p.Start(context.Background())
	defer p.Stop()

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("first refresh did not run")
	}
}

func TestPoller_ReportsErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	var reported atomic.Int32
	p := board.NewPoller(5*time.Millisecond, func(ctx context.Context) error {
		return errors.New("server unavailable")
	}, func(err error) {
		reported.Add(1)
	})

	p.Start(context.Background())
	assert.Eventually(t, func() bool { return reported.Load() >= 2 }, time.Second, time.Millisecond)
	p.Stop()
}

func TestPoller_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	p := board.NewPoller(time.Millisecond, func(ctx context.Context) error { return nil }, nil)

	p.Start(ctx)
	p.Start(ctx)
	cancel()
	p.Stop()
	p.Stop()
}

func TestPoller_DefaultInterval(t *testing.T) {
	p := board.NewPoller(0, func(ctx context.Context) error { return nil }, nil)

	assert.Equal(t, board.DefaultPollInterval, p.Interval())
}
