package filesystem

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stroniax/rabbit-eye/internal/stopper"
	"github.com/Stroniax/rabbit-eye/internal/table"
)

// faultyDirReader injects a read error for one specific directory,
// delegating to the real filesystem otherwise. It plays the same role
// for this package's tests as logical.WithChaos plays for the
// teacher's: a decorator around the real implementation that injects
// a failure at a chosen call site.
type faultyDirReader struct {
	failOn string
}

func (f faultyDirReader) ReadDir(dir string) ([]os.DirEntry, error) {
	if dir == f.failOn {
		return nil, os.ErrPermission
	}
	return os.ReadDir(dir)
}

func TestRowhashFaultsOnUnreadableDirectory(t *testing.T) {
	root := t.TempDir()
	d, err := New(Config{Root: root, Recursive: true})
	require.NoError(t, err)
	d.fs = faultyDirReader{failOn: root}

	s := table.New[string, uint64]()
	result, err := d.Rowhash(stopper.Background(), s)

	assert.Equal(t, table.Faulted, result)
	assert.Error(t, err)
}

func TestRowhashChecksCancellationBeforeEachDirectory(t *testing.T) {
	root := t.TempDir()
	d, err := New(Config{Root: root, Recursive: true})
	require.NoError(t, err)

	ctx := stopper.Background()
	ctx.Cancel()

	s := table.New[string, uint64]()
	result, err := d.Rowhash(ctx, s)

	assert.Equal(t, table.Cancelled, result)
	assert.NoError(t, err)
	assert.Empty(t, s.Rows())
}
