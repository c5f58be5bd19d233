// Package lifetime implements the three-tier shutdown ladder: a
// single ShutdownSignal drives three cascading cancellation tokens of
// increasing severity — natural (stop scheduling new work), graceful
// (cancel in-flight work), and abort (kill whatever remains).
package lifetime

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Stroniax/rabbit-eye/internal/stopper"
)

// DefaultGracePeriod is the spec-mandated default wait between tiers
// of the shutdown ladder.
const DefaultGracePeriod = 5 * time.Second

// ShutdownSignal is a capability that resolves exactly once when the
// process should begin shutting down. OSSignal is the production
// implementation; tests typically use a channel-backed fake.
type ShutdownSignal interface {
	// Wait blocks until the signal fires or ctx is done, whichever
	// happens first. It returns nil if the signal fired, or ctx.Err()
	// if ctx ended first.
	Wait(ctx context.Context) error
}

// AppLifetime drives the three-tier shutdown ladder from a
// ShutdownSignal, exposing Natural, Graceful, and Abort as the three
// cascading tokens described in spec.md §4.6. Because Graceful is a
// child of Abort, and Natural is a child of Graceful, cancelling Abort
// cancels everything downstream, and cancelling Graceful also halts
// the scheduling loop.
type AppLifetime struct {
	// Abort is cancelled last: "kill whatever remains".
	Abort *stopper.Context
	// Graceful is a child of Abort: "cancel in-flight work".
	Graceful *stopper.Context
	// Natural is a child of Graceful: "stop scheduling new work".
	Natural *stopper.Context

	grace time.Duration
	done  chan struct{}
}

// New constructs an AppLifetime and immediately spawns the supervisor
// goroutine that drives the ladder from signal.
func New(signal ShutdownSignal, grace time.Duration) *AppLifetime {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	abort := stopper.Background()
	graceful := abort.Child()
	natural := graceful.Child()

	l := &AppLifetime{
		Abort:    abort,
		Graceful: graceful,
		Natural:  natural,
		grace:    grace,
		done:     make(chan struct{}),
	}

	go l.run(signal)

	return l
}

func (l *AppLifetime) run(signal ShutdownSignal) {
	defer close(l.done)

	if err := signal.Wait(context.Background()); err != nil {
		log.WithError(err).Warn("shutdown signal source ended without firing")
		return
	}

	log.Info("shutdown signal received; no longer scheduling new scans")
	l.Natural.Cancel()
	waitUntilOrTimeout(l.Graceful, l.grace)

	log.Info("cancelling in-flight work")
	l.Graceful.Cancel()
	waitUntilOrTimeout(l.Abort, l.grace)

	log.Warn("aborting any work still running")
	l.Abort.Cancel()
}

// Done returns a channel that closes once the ladder has finished
// driving Abort to its cancelled state.
func (l *AppLifetime) Done() <-chan struct{} {
	return l.done
}

// RunUntilAbort races op against l.Abort's cancellation. It returns
// op's result and true if op finished first, or the zero value and
// false if Abort was cancelled first.
func RunUntilAbort[T any](l *AppLifetime, op func() T) (T, bool) {
	return stopper.RunUntilCancelled(l.Abort, op)
}

func waitUntilOrTimeout(ctx *stopper.Context, timeout time.Duration) {
	select {
	case <-ctx.Stopping():
	case <-time.After(timeout):
	}
}
