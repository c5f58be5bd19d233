// Package persistence implements the Store capability used to carry
// table-state row maps across process restarts.
package persistence

// Store loads and saves a snapshot of a table.State's row map across
// process restarts. Implementations are keyed generically so the same
// contract serves any Detector's key/hash types, though this repo
// instantiates it only at [string, uint64] for the filesystem
// detector.
type Store[K comparable, H comparable] interface {
	// Load returns the most recently saved row map, or an empty map if
	// none has ever been saved.
	Load() (map[K]H, error)
	// Save persists rows, replacing whatever was previously saved.
	Save(rows map[K]H) error
	// Retain reports whether a previously loaded snapshot should still
	// be treated as authoritative after a failed or partial operation.
	// It exists so a Store can express "once I have successfully
	// loaded or saved, I am willing to stand behind that data" without
	// the caller needing to inspect implementation internals.
	Retain() bool
}
