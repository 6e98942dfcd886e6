package watch

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

func TestDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "svc", "orders"), 0o755))
	file := filepath.Join(dir, "svc", "orders", "mocks.yaml")
	require.NoError(t, os.WriteFile(file, []byte("expectations: []"), 0o644))

	assert.Equal(t, []string{filepath.Join(dir, "svc", "orders")}, Dirs([]string{file}))

	assert.Equal(t,
		[]string{filepath.Join(dir, "svc"), filepath.Join(dir, "svc", "orders")},
		Dirs([]string{filepath.Join(dir, "svc", "**", "*.yaml")}))

	assert.Empty(t, Dirs([]string{filepath.Join(dir, "missing.yaml")}))
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mocks.yaml")
	require.NoError(t, os.WriteFile(file, []byte("expectations: []"), 0o644))

	var calls atomic.Int32
	w := New([]string{dir}, 100*time.Millisecond, func(context.Context) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(file, []byte("expectations: []\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w := New([]string{dir}, 50*time.Millisecond, func(context.Context) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "payments")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(sub, "mocks.yaml"), []byte("expectations: []"), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestUnderRoot(t *testing.T) {
	root := filepath.Join("mocks", "svc")
	roots := []string{root}

	assert.True(t, underRoot(filepath.Join(root, "orders"), roots))
	assert.False(t, underRoot(filepath.Join("mocks", "other"), roots))
	assert.False(t, underRoot(filepath.Join("mocks", "svc-extra"), roots))
	assert.False(t, underRoot(filepath.Join(root, "orders"), nil))
}
