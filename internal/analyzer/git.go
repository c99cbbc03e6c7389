package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitDiff returns `git diff --unified=0` of the working tree in dir against base.
// An empty base compares with HEAD (uncommitted changes).
func GitDiff(ctx context.Context, dir, base string) (string, error) {
	if base == "" {
		base = "HEAD"
	}

	out, err := runGit(ctx, dir, "diff", "--unified=0", "--no-color", "--no-ext-diff", base)
	if err != nil {
		return "", fmt.Errorf("git diff %s: %w", base, err)
	}
	return out, nil
}

// RepoRoot returns the top-level directory of the git repository containing
// dir. Outside a repository it falls back to the absolute path of dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err == nil {
		if root := strings.TrimSpace(out); root != "" {
			return filepath.Clean(root), nil
		}
	}

	abs, absErr := filepath.Abs(dir)
	if absErr != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, absErr)
	}
	return abs, nil
}

// GetRemoteTrackingBranch 获取当前分支对应的远程跟踪分支
// 返回格式如 "origin/main" 或 "origin/feature-branch"
func GetRemoteTrackingBranch(ctx context.Context, dir string) (string, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if err != nil {
		return "", fmt.Errorf("无法获取远程跟踪分支: %w", err)
	}

	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", fmt.Errorf("当前分支没有设置远程跟踪分支")
	}
	return branch, nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return string(out), nil
}
