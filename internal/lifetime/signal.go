package lifetime

import (
	"context"
	"os"
	"os/signal"
)

// OSSignal is a ShutdownSignal backed by OS signal delivery. It fires
// the first time one of the configured signals arrives.
type OSSignal struct {
	signals []os.Signal
}

// NewOSSignal returns an OSSignal that fires on any of sig. If sig is
// empty it defaults to os.Interrupt alone; callers that also want
// SIGTERM pass it explicitly. os.Kill is never a useful choice here —
// SIGKILL cannot be caught.
func NewOSSignal(sig ...os.Signal) *OSSignal {
	if len(sig) == 0 {
		sig = []os.Signal{os.Interrupt}
	}
	return &OSSignal{signals: sig}
}

func (s *OSSignal) Wait(ctx context.Context) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, s.signals...)
	defer signal.Stop(ch)

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
