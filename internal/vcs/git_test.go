package vcs

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// remoteURL returns the configured URL of remote name.
func remoteURL(ctx context.Context, dir, name string) (string, error) {
	out := &bytes.Buffer{}
	if err := execGitCmd(ctx, []string{"remote", "get-url", name}, gitCmdConfig{dir: dir, out: out}); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// commitCount returns how many commits are reachable from ref.
func commitCount(ctx context.Context, dir, ref string) (int, error) {
	out := &bytes.Buffer{}
	if err := execGitCmd(ctx, []string{"rev-list", "--count", ref}, gitCmdConfig{dir: dir, out: out}); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(out.String()))
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func TestDriver_InitCommitPush(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	d := NewDriver("Deploy Bot", "bot@example.com")

	remote := filepath.Join(t.TempDir(), "remote.git")
	require.NoError(t, execGitCmd(ctx, []string{"init", "--bare", remote}, gitCmdConfig{}))

	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "index.html"), []byte("hi"), 0o644))

	require.NoError(t, d.Init(ctx, work))
	require.NoError(t, d.TrustDirectory(ctx, work))
	require.NoError(t, d.AddAll(ctx, work))
	require.NoError(t, d.Commit(ctx, work, "Initial commit"))
	require.NoError(t, d.RenameBranch(ctx, work, "main"))

	has, err := d.HasRemote(ctx, work, "origin")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, d.AddRemote(ctx, work, "origin", "/nonexistent"))
	has, err = d.HasRemote(ctx, work, "origin")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, d.SetRemoteURL(ctx, work, "origin", remote))
	got, err := remoteURL(ctx, work, "origin")
	require.NoError(t, err)
	assert.Equal(t, remote, got)

	require.NoError(t, d.ForcePush(ctx, work, "origin", "main"))

	n, err := commitCount(ctx, remote, "main")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDriver_CommitWithNothingToCommitFails(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	d := NewDriver("Deploy Bot", "bot@example.com")

	work := t.TempDir()
	require.NoError(t, d.Init(ctx, work))
	require.NoError(t, d.AddAll(ctx, work))
	assert.Error(t, d.Commit(ctx, work, "empty"))
}

func TestDriver_PushErrorRedactsSecret(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	d := NewDriver("Deploy Bot", "bot@example.com")

	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, d.Init(ctx, work))
	require.NoError(t, d.AddAll(ctx, work))
	require.NoError(t, d.Commit(ctx, work, "c"))
	require.NoError(t, d.RenameBranch(ctx, work, "main"))

	missing := filepath.Join(t.TempDir(), "topsecret-missing")
	require.NoError(t, d.AddRemote(ctx, work, "origin", missing))

	err := d.ForcePush(ctx, work, "origin", "main", "topsecret")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "topsecret")
}
