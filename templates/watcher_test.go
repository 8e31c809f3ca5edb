package templates

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.yaml", "t:\n  en-US: \"one\"\n")
	other := writeFile(t, dir, "b.yaml", "x")

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	w, err := NewWatcher(50 * time.Millisecond)
	require.NoError(t, err)

	var reloads atomic.Int32
	require.NoError(t, w.Watch(path, func() error {
		reloads.Add(1)
		return c.Reload()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("y"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("t:\n  en-US: \"two\"\n"), 0o644))

	assert.Eventually(t, func() bool {
		text, err := c.Lookup("t", "en-US")
		return err == nil && text == "two"
	}, 3*time.Second, 20*time.Millisecond)

	// a burst of writes collapses into few reloads
	assert.LessOrEqual(t, reloads.Load(), int32(2))
}

func TestWatcherMissingDirectory(t *testing.T) {
	w, err := NewWatcher(0)
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(filepath.Join(t.TempDir(), "nope", "a.yaml"), func() error { return nil })
	require.Error(t, err)
}
