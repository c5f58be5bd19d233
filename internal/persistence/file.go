package persistence

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// File is a JSON-on-disk Store for the filesystem detector's
// [string, uint64] row maps: a plain {"path": mtimeNanos, ...} object.
// It is not generic over arbitrary key types because JSON object keys
// must be strings; nothing else in this repo needs a different key
// type for a durable Store.
type File struct {
	path    string
	loaded  bool
	savedOk bool
}

// NewFile returns a File store backed by path. The file need not exist
// yet; Load returns an empty map in that case.
func NewFile(path string) *File {
	return &File{path: path}
}

var _ Store[string, uint64] = (*File)(nil)

func (f *File) Load() (map[string]uint64, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.loaded = true
		return make(map[string]uint64), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read persisted state %q", f.path)
	}

	rows := make(map[string]uint64)
	if len(b) > 0 {
		if err := json.Unmarshal(b, &rows); err != nil {
			return nil, errors.Wrapf(err, "parse persisted state %q", f.path)
		}
	}
	f.loaded = true
	return rows, nil
}

func (f *File) Save(rows map[string]uint64) error {
	b, err := json.Marshal(rows)
	if err != nil {
		return errors.Wrap(err, "marshal state for persistence")
	}
	if err := os.WriteFile(f.path, b, 0o644); err != nil {
		return errors.Wrapf(err, "write persisted state %q", f.path)
	}
	f.savedOk = true
	return nil
}

// Retain reports true once a Load or a successful Save has happened:
// from that point on this File is willing to stand behind whatever
// data it holds, even if a later Save fails.
func (f *File) Retain() bool {
	return f.loaded || f.savedOk
}
