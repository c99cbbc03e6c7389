package analyzer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		base := []string{"-c", "user.email=test@example.com", "-c", "user.name=test", "-c", "commit.gpgsign=false"}
		cmd := exec.Command("git", append(base, args...)...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	git("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc A() int {\n\treturn 1\n}\n"), 0644))
	git("add", "a.go")
	git("commit", "-q", "-m", "init")
	return dir
}

func TestGitDiff(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc A() int {\n\treturn 2\n}\n"), 0644))

	out, err := GitDiff(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Contains(t, out, "diff --git a/a.go b/a.go")
	assert.Contains(t, out, "@@ -4 +4 @@")
}

func TestGitDiff_BadBase(t *testing.T) {
	dir := initRepo(t)
	_, err := GitDiff(context.Background(), dir, "no-such-rev")
	assert.Error(t, err)
}

func TestRepoRoot(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	root, err := RepoRoot(context.Background(), sub)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetRemoteTrackingBranch_NoUpstream(t *testing.T) {
	dir := initRepo(t)
	_, err := GetRemoteTrackingBranch(context.Background(), dir)
	assert.Error(t, err)
}
