package await

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait_ReturnsValueAfterSettlement(t *testing.T) {
	log := errlog.New()
	a := New(log)

	var calls atomic.Int32
	value, err := Wait(context.Background(), a, func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", value)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, a.Pending())
	assert.Equal(t, 0, log.Len())
}

func TestWait_RecordsFailure(t *testing.T) {
	log := errlog.New()
	a := New(log)
	errBoom := errors.New("boom")

	_, err := Wait(context.Background(), a, func(context.Context) (int, error) {
		return 0, errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, log.Len())
	assert.ErrorIs(t, log.Last(), errBoom)
}

func TestWait_RejectsSecondPendingOperation(t *testing.T) {
	log := errlog.New()
	a := New(log)

	release := make(chan struct{})
	started := make(chan struct{})
	finished := make(chan error, 1)

	go func() {
		_, err := Wait(context.Background(), a, func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		finished <- err
	}()

	<-started
	assert.True(t, a.Pending())

	var invoked atomic.Bool
	ok := a.Bool(context.Background(), func(context.Context) error {
		invoked.Store(true)
		return nil
	})

	assert.False(t, ok)
	assert.False(t, invoked.Load())
	assert.True(t, log.Contains(ErrBusy))

	close(release)
	require.NoError(t, <-finished)
	assert.False(t, a.Pending())
}

func TestWait_DoesNotReturnBeforeSettlementOnCancel(t *testing.T) {
	a := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var settled atomic.Bool
	_, err := Wait(ctx, a, func(context.Context) (int, error) {
		time.Sleep(10 * time.Millisecond)
		settled.Store(true)
		return 7, nil
	})

	require.NoError(t, err)
	assert.True(t, settled.Load())
}

func TestWait_PanicBecomesError(t *testing.T) {
	log := errlog.New()
	a := New(log)

	ok := a.Bool(context.Background(), func(context.Context) error {
		panic("kaboom")
	})

	assert.False(t, ok)
	assert.True(t, log.Contains(ErrPanicked))
}

func TestAdapter_Int(t *testing.T) {
	a := New(errlog.New())

	assert.Equal(t, int64(42), a.Int(context.Background(), func(context.Context) (int64, error) {
		return 42, nil
	}))
	assert.Equal(t, int64(-1), a.Int(context.Background(), func(context.Context) (int64, error) {
		return 10, errors.New("size unavailable")
	}))
}
