package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_PrepareClearsPreviousAttempt(t *testing.T) {
	root := t.TempDir()
	ws, err := newWorkspace(root, "p1", "")
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(ws.stagingDir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.stagingDir, "stale.txt"), []byte("x"), 0o644))

	require.NoError(t, ws.prepare())

	entries, err := os.ReadDir(ws.stagingDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStagingPath(t *testing.T) {
	p, err := StagingPath("/srv/staging", "3f1c")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/staging", "3f1c"), p)

	for _, bad := range []string{"", ".", "..", "../etc", `a\b`} {
		_, err := StagingPath("/srv/staging", bad)
		assert.Error(t, err, bad)
	}
}
