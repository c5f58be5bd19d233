package stopper_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stroniax/rabbit-eye/internal/stopper"
)

func TestCancelIsMonotonic(t *testing.T) {
	c := stopper.Background()
	assert.False(t, c.IsStopping())

	c.Cancel()
	assert.True(t, c.IsStopping())

	// Cancelling again is a no-op, and the token never un-cancels.
	c.Cancel()
	assert.True(t, c.IsStopping())
}

func TestChildCancelsWithParent(t *testing.T) {
	parent := stopper.Background()
	child := parent.Child()

	assert.False(t, child.IsStopping())
	parent.Cancel()
	assert.True(t, child.IsStopping())
}

func TestCancellingChildDoesNotCancelParent(t *testing.T) {
	parent := stopper.Background()
	child := parent.Child()

	child.Cancel()
	assert.True(t, child.IsStopping())
	assert.False(t, parent.IsStopping())
}

func TestGrandchildCascade(t *testing.T) {
	abort := stopper.Background()
	graceful := abort.Child()
	natural := graceful.Child()

	abort.Cancel()
	assert.True(t, graceful.IsStopping())
	assert.True(t, natural.IsStopping())
}

func TestRunUntilCancelledReturnsResultWhenOpFinishesFirst(t *testing.T) {
	c := stopper.Background()
	v, ok := stopper.RunUntilCancelled(c, func() int {
		return 42
	})
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestRunUntilCancelledReturnsNotOKWhenCancelledFirst(t *testing.T) {
	c := stopper.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		<-started
		c.Cancel()
	}()

	_, ok := stopper.RunUntilCancelled(c, func() int {
		close(started)
		<-release
		return 1
	})
	close(release)

	assert.False(t, ok)
}

func TestStopWaitsForTrackedGoroutines(t *testing.T) {
	c := stopper.Background()
	finished := false

	c.Go(func() error {
		<-c.Stopping()
		finished = true
		return nil
	})

	err := c.Stop(time.Second)
	require.NoError(t, err)
	assert.True(t, finished)
}

func TestStopTimesOutWhenGoroutineIgnoresCancellation(t *testing.T) {
	c := stopper.Background()
	release := make(chan struct{})

	c.Go(func() error {
		<-release
		return nil
	})

	err := c.Stop(10 * time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestWithContextDerivesFromStandardContext(t *testing.T) {
	parentCtx, cancel := context.WithCancel(context.Background())
	c := stopper.WithContext(parentCtx)
	assert.False(t, c.IsStopping())
	cancel()
	assert.True(t, c.IsStopping())
}
