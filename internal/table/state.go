// Package table implements the change-detection / table-state
// abstraction at the heart of the scan-and-diff engine: an in-memory
// row map plus a pending change log that classifies every observed
// entity as New, Update, Delete, or Unchanged, with well-defined
// semantics for partial (cancelled) scans.
package table

import "github.com/Stroniax/rabbit-eye/internal/stopper"

// Kind tags the variant of a Change.
type Kind int

const (
	// KindNone marks an entity observed this scan whose hash is
	// unchanged from the prior scan. KindNone is internal bookkeeping
	// only; it is never emitted from Drain.
	KindNone Kind = iota
	// KindNew marks an entity observed for the first time.
	KindNew
	// KindUpdate marks a previously-known entity whose hash changed.
	KindUpdate
	// KindDelete marks an entity that was known before this scan but
	// was not observed during it.
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNew:
		return "new"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is one entry in the pending log, or one emitted StateChange
// once Drain has filtered out KindNone.
type Change[K comparable] struct {
	Kind Kind
	Key  K
}

// State is the authoritative in-memory map of row keys to row hashes,
// plus the ordered log of classifications produced by SetRow during
// the scan currently in progress.
//
// State is exclusively owned by whichever scan is currently running;
// the engine never mutates or reads it concurrently with an in-flight
// Detector.Rowhash call. State is not safe for concurrent use from
// multiple goroutines without external synchronization.
type State[K comparable, H comparable] struct {
	rows      map[K]H
	pending   []Change[K]
	tableHash *uint64
}

// New returns an empty State.
func New[K comparable, H comparable]() *State[K, H] {
	return &State[K, H]{rows: make(map[K]H)}
}

// Restore returns a State pre-populated with rows, as loaded from a
// persistence.Store. The pending log starts empty.
func Restore[K comparable, H comparable](rows map[K]H) *State[K, H] {
	if rows == nil {
		rows = make(map[K]H)
	}
	return &State[K, H]{rows: rows}
}

// Rows returns the current row map itself, not a copy, suitable for
// handing to a persistence.Store.Save. Later SetRow and Drain calls
// change it, and it must not be mutated by the caller.
func (s *State[K, H]) Rows() map[K]H {
	return s.rows
}

// TableHash returns the table hash recorded by the most recent call to
// SetTableHash, or false if none has been recorded.
func (s *State[K, H]) TableHash() (uint64, bool) {
	if s.tableHash == nil {
		return 0, false
	}
	return *s.tableHash, true
}

// SetTableHash records the whole-set fingerprint for the scan that
// just completed, for comparison against the next scan's Tablehash.
func (s *State[K, H]) SetTableHash(hash uint64) {
	h := hash
	s.tableHash = &h
}

// SetRow classifies key/hash against the current rows map and appends
// the classification to the pending log:
//
//   - key is new: insert it, append KindNew.
//   - key exists with an equal hash: append KindNone.
//   - key exists with a different hash: overwrite, append KindUpdate.
//
// SetRow is amortised O(1). If a Detector calls SetRow more than once
// for the same key during a single scan, the row map keeps the last
// hash, and Drain emits at most one change for that key: the first
// non-None entry the log holds for it. A key first inserted during the
// scan therefore drains as a single New whatever its later calls
// recorded.
func (s *State[K, H]) SetRow(key K, hash H) {
	old, ok := s.rows[key]
	if !ok {
		s.rows[key] = hash
		s.pending = append(s.pending, Change[K]{Kind: KindNew, Key: key})
		return
	}
	if old == hash {
		s.pending = append(s.pending, Change[K]{Kind: KindNone, Key: key})
		return
	}
	s.rows[key] = hash
	s.pending = append(s.pending, Change[K]{Kind: KindUpdate, Key: key})
}

// Drain consumes the pending log (and, when deleteRemainder is true,
// every row not touched this scan) and returns the final StateChange
// sequence for the scan that just finished.
//
// When deleteRemainder is true, Drain first snapshots every key
// currently in rows into an "unseen" set. As it walks the pending log
// in observation order, emitting New/Update (at most one per key) and
// suppressing None, it removes each visited key from unseen. Whatever remains in unseen
// once the log is exhausted is emitted as trailing Delete entries (in
// unspecified order) and removed from rows.
//
// When deleteRemainder is false — used for a scan that was cancelled
// partway through, and therefore cannot know about entities it never
// reached — no deletions are inferred: the pending log is walked the
// same way, but nothing is appended for keys outside it, and no rows
// are removed from the map.
func (s *State[K, H]) Drain(deleteRemainder bool) []Change[K] {
	var unseen map[K]struct{}
	if deleteRemainder {
		unseen = make(map[K]struct{}, len(s.rows))
		for k := range s.rows {
			unseen[k] = struct{}{}
		}
	}

	out := make([]Change[K], 0, len(s.pending))
	emitted := make(map[K]struct{}, len(s.pending))
	for _, c := range s.pending {
		if deleteRemainder {
			delete(unseen, c.Key)
		}
		if c.Kind == KindNone {
			continue
		}
		if _, dup := emitted[c.Key]; dup {
			continue
		}
		emitted[c.Key] = struct{}{}
		out = append(out, c)
	}
	s.pending = nil

	for k := range unseen {
		out = append(out, Change[K]{Kind: KindDelete, Key: k})
		delete(s.rows, k)
	}

	return out
}

// Result is the verdict a Detector returns for one call to Rowhash,
// driving whether the caller drains the State and, if so, with which
// delete_remainder flag.
type Result int

const (
	// Completed indicates the detector observed the entire domain;
	// the caller should Drain(true).
	Completed Result = iota
	// Cancelled indicates the detector stopped early in response to
	// cooperative cancellation; the caller should Drain(false) — no
	// deletions may be inferred from an incomplete observation.
	Cancelled
	// Aborted indicates the scan's task was hard-aborted by its
	// supervisor before it could return normally; the caller must not
	// drain at all.
	Aborted
	// Faulted indicates the detector hit an unrecoverable error (for
	// example, an I/O error); the caller must not drain. The
	// triggering error is returned alongside this Result.
	Faulted
)

func (r Result) String() string {
	switch r {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Aborted:
		return "aborted"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Detector is the strategy contract a domain plugs in to drive a
// State: it walks its domain and reports presence of each entity via
// State.SetRow, returning a completion verdict. A FilesystemDetector
// (internal/detector/filesystem) is the only implementation in this
// repo, but the contract is domain-agnostic: a database poller or an
// API poller could implement it equally well.
type Detector[K comparable, H comparable] interface {
	// Tablehash returns a cheap whole-set fingerprint of the domain,
	// if the detector can compute one without doing the equivalent
	// work of a full Rowhash call. It returns false in its second
	// result if no such fingerprint is available. Tablehash may
	// respect cancellation by returning early with false.
	Tablehash(ctx *stopper.Context) (hash uint64, ok bool)

	// Rowhash walks the domain, calling state.SetRow for every entity
	// it intends to claim is still present, and returns a Result
	// describing how the walk ended. Rowhash has exclusive access to
	// state for the duration of the call. On cancellation, Rowhash
	// must return Cancelled promptly and must not call state.SetRow
	// again afterward.
	Rowhash(ctx *stopper.Context, state *State[K, H]) (Result, error)
}
