package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/govpilot/internal/testutil"
)

func TestWatch_CoalescesChanges(t *testing.T) {
	dir := testutil.CatalogDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(name string) { changes <- name }, testutil.NewTestLogger(t),
			WithDebounce(50*time.Millisecond))
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	audits := filepath.Join(dir, "audits.csv")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(audits, []byte(testutil.AuditsCSV), 0o644))
	}

	select {
	case name := <-changes:
		assert.Equal(t, "audits.csv", name)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case name := <-changes:
		t.Fatalf("burst should coalesce into one call, got extra %s", name)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), func(string) {}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
