// Package console implements publish.Publisher by writing one line per
// change to an io.Writer, playing the same role in this repo that
// message-to-console played in the original workspace: a trivial
// stand-in transport for local development, alongside the real
// broker-backed publisher.
package console

import (
	"context"
	"fmt"
	"io"

	"github.com/Stroniax/rabbit-eye/internal/publish"
	"github.com/Stroniax/rabbit-eye/internal/table"
)

// Publisher writes "kind key\n" to w for every change. It holds no
// other resources; Close is a no-op.
type Publisher struct {
	w io.Writer
}

// New returns a Publisher writing to w.
func New(w io.Writer) *Publisher {
	return &Publisher{w: w}
}

var _ publish.Publisher = (*Publisher)(nil)

func (p *Publisher) Publish(_ context.Context, change table.Change[string]) error {
	_, err := fmt.Fprintf(p.w, "%s %s\n", change.Kind, change.Key)
	return err
}

func (p *Publisher) Close() error {
	return nil
}
