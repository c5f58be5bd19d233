// Package worker implements the single-slot "renewable worker"
// pattern: at most one task runs at a time, and replacing it always
// cancels, waits briefly for, and (if that wait times out) abandons
// the prior task before the new one becomes observable.
package worker

import (
	"sync"
	"time"

	"github.com/Stroniax/rabbit-eye/internal/stopper"
)

// Renewable is a single-slot task supervisor. The zero value is ready
// to use.
type Renewable struct {
	mu      sync.Mutex
	current *slot
}

type slot struct {
	cancel func()
	done   chan struct{}
}

// New returns a ready-to-use Renewable.
func New() *Renewable {
	return &Renewable{}
}

// FinishAndRenew replaces whatever task is currently held with a new
// one. If a prior task exists, its token is cancelled and its
// completion is raced against grace; if it has not finished by then,
// it is abandoned (Go has no mechanism to forcibly stop a goroutine —
// see internal/stopper's documentation of the same limitation) and
// FinishAndRenew proceeds anyway. task is then spawned in its own
// goroutine under token, and the slot is updated before
// FinishAndRenew returns, so that at most one task is ever held and
// every transition fully resolves (completes or is abandoned) the
// prior task before the new one is observable to Wait or
// CloseWithAbortAfter.
func (r *Renewable) FinishAndRenew(token *stopper.Context, grace time.Duration, task func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.retirePriorLocked(grace)

	done := make(chan struct{})
	r.current = &slot{cancel: token.Cancel, done: done}
	go func() {
		defer close(done)
		task()
	}()
}

func (r *Renewable) retirePriorLocked(grace time.Duration) {
	prev := r.current
	r.current = nil
	if prev == nil {
		return
	}
	prev.cancel()
	waitWithGrace(prev.done, grace)
}

func waitWithGrace(done <-chan struct{}, grace time.Duration) (completed bool) {
	if grace <= 0 {
		<-done
		return true
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// Wait blocks until the current task (if any) completes. It does not
// cancel anything and does not clear the slot.
func (r *Renewable) Wait() {
	r.mu.Lock()
	cur := r.current
	r.mu.Unlock()
	if cur == nil {
		return
	}
	<-cur.done
}

// CloseWithAbortAfter cancels the current task's token and waits up to
// grace for it to complete. It reports whether the task completed
// within the grace period; if it did not, the task is abandoned and
// the slot is cleared regardless. CloseWithAbortAfter is a no-op,
// returning true, if no task is held.
func (r *Renewable) CloseWithAbortAfter(grace time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.current
	r.current = nil
	if prev == nil {
		return true
	}
	prev.cancel()
	return waitWithGrace(prev.done, grace)
}
