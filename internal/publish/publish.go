// Package publish defines the capability a detected change is handed
// to once it leaves a table.State's Drain call, and the JSON wire
// encoding used by the broker transport (internal/publish/amqp).
package publish

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/Stroniax/rabbit-eye/internal/table"
)

// Publisher delivers one change at a time to a broker or equivalent
// sink. Implementations must treat Publish as the unit of delivery:
// the engine calls Publish once per table.Change and treats any
// returned error as fatal to the iteration that produced it.
type Publisher interface {
	Publish(ctx context.Context, change table.Change[string]) error
	// Close releases any resources (connections, channels) held by the
	// Publisher. It is safe to call Close more than once.
	Close() error
}

// Message is the tagged JSON envelope placed on the wire for every
// change, superseding the original bare-path-bytes encoding: pairing
// the kind with the key in one self-describing payload removes the
// need for a side channel (routing key, header) to carry the kind.
type Message struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
}

// Encode renders change as the tagged JSON envelope used on the broker
// transport. The console transport does not use it; it writes plain
// "kind key" lines instead.
func Encode(change table.Change[string]) ([]byte, error) {
	msg := Message{Kind: change.Kind.String(), Key: change.Key}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encode change")
	}
	return b, nil
}
