package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBurstIntoOneCall(t *testing.T) {
	calls := make(chan struct{}, 10)
	debouncer := NewDebouncer(20*time.Millisecond, func(ctx context.Context) {
		calls <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		debouncer.Run(ctx, changes)
	}()

	for i := 0; i < 5; i++ {
		changes <- struct{}{}
	}

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("expected the debounced function to fire")
	}

	select {
	case <-calls:
		t.Fatal("expected one call for the whole burst")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestDebouncer_FiresPendingOnShutdown(t *testing.T) {
	calls := make(chan struct{}, 1)
	debouncer := NewDebouncer(time.Hour, func(ctx context.Context) {
		calls <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		debouncer.Run(ctx, changes)
	}()

	changes <- struct{}{}
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done

	select {
	case <-calls:
	default:
		t.Fatal("expected the pending notification to flush on shutdown")
	}
}

func TestDebouncer_ShutdownFlushContextIsNotCancelled(t *testing.T) {
	errs := make(chan error, 1)
	debouncer := NewDebouncer(time.Hour, func(ctx context.Context) {
		errs <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		debouncer.Run(ctx, changes)
	}()

	// The change is still pending when the session ends; the final sync
	// must run on a usable context.
	changes <- struct{}{}
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done

	select {
	case err := <-errs:
		assert.NoError(t, err)
	default:
		t.Fatal("expected the pending notification to flush on shutdown")
	}
}

func TestNewDebouncer_DefaultsDelay(t *testing.T) {
	debouncer := NewDebouncer(0, func(ctx context.Context) {})
	require.NotNil(t, debouncer)
	assert.Equal(t, DefaultDebounce, debouncer.delay)
}
