package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsImmediatelyAndOnTicks(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_FirstRunIsImmediate(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := NewScheduler(time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("first run did not happen before the first tick")
	}
}

func TestScheduler_ErrorsDoNotStopLoop(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("provider down")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(0, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	var err error
	assert.NotPanics(t, func() { err = s.Run(context.Background()) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
	assert.Equal(t, int32(0), calls.Load())
}
