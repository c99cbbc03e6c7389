package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/zheng/tsel/internal/analyzer"
	"github.com/zheng/tsel/internal/config"
	"github.com/zheng/tsel/internal/graph"
	"github.com/zheng/tsel/internal/impact"
	"github.com/zheng/tsel/internal/logging"
	"github.com/zheng/tsel/internal/selector"
	"github.com/zheng/tsel/internal/storage"
)

// env is the resolved context of one command invocation
type env struct {
	projectPath string // absolute
	repoRoot    string // git top-level, or projectPath outside git
	cfg         *config.Config
	dbPath      string
}

// setup loads the project config, installs the logger and resolves paths
func setup(ctx context.Context, projectPath string) (*env, error) {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("无效的项目路径: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("项目路径不存在或不是目录: %s", projectPath)
	}

	cfg, err := config.Load(abs)
	if err != nil {
		return nil, err
	}

	level := logging.LevelFromVerbosity(Verbosity, Quiet, logging.LevelFromString(cfg.Logging.Level))
	logging.Setup(os.Stderr, level)

	repoRoot, err := analyzer.RepoRoot(ctx, abs)
	if err != nil {
		return nil, err
	}

	dbPath := DbPath
	if dbPath == "" {
		dbPath = cfg.DB
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(abs, dbPath)
		}
	}

	slog.Debug("environment", "project", abs, "repoRoot", repoRoot, "db", dbPath, "config", config.ConfigFile(abs))
	return &env{projectPath: abs, repoRoot: repoRoot, cfg: cfg, dbPath: dbPath}, nil
}

// roots returns the project path followed by configured and extra roots
func (e *env) roots(extra []string) []string {
	roots := []string{e.projectPath}
	for _, r := range append(append([]string{}, e.cfg.Roots...), extra...) {
		if !filepath.IsAbs(r) {
			r = filepath.Join(e.projectPath, r)
		}
		roots = append(roots, r)
	}
	return roots
}

// classifier builds the naming classifier from config
func (e *env) classifier() impact.Classifier {
	return impact.NamingClassifier{
		Prefixes:      e.cfg.TestPrefixes,
		SuiteSuffixes: e.cfg.SuiteSuffixes,
	}
}

// selector builds the pipeline; flags only ever turn options on
func (e *env) newSelector(strict, includeChanged bool) *selector.Selector {
	return selector.New(selector.Options{
		Extensions:          e.cfg.Extensions,
		Classifier:          e.classifier(),
		Strict:              strict || e.cfg.StrictDiff,
		IncludeChangedTests: includeChanged || e.cfg.IncludeChangedTests,
	})
}

// UpstreamBase as --base diffs against the remote tracking branch
const UpstreamBase = "@upstream"

// stdinIsTerminal reports whether r is an interactive terminal, i.e. no diff
// was piped in
var stdinIsTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// readDiff runs git diff against base when set, otherwise reads stdin.
// Without --base and with nothing piped in, the configured base is used.
func (e *env) readDiff(ctx context.Context, base string, stdin io.Reader) (string, error) {
	if base == "" && stdinIsTerminal(stdin) {
		base = e.cfg.Base
		slog.Debug("no diff on stdin, using configured base", "base", base)
	}
	if base != "" {
		rev, err := e.resolveBase(ctx, base)
		if err != nil {
			return "", err
		}
		return analyzer.GitDiff(ctx, e.repoRoot, rev)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("读取 diff 失败: %w", err)
	}
	return string(data), nil
}

// resolveBase turns UpstreamBase into the current remote tracking branch
func (e *env) resolveBase(ctx context.Context, base string) (string, error) {
	if base != UpstreamBase {
		return base, nil
	}
	branch, err := analyzer.GetRemoteTrackingBranch(ctx, e.repoRoot)
	if err != nil {
		return "", err
	}
	slog.Info("diffing against upstream", "branch", branch)
	return branch, nil
}

// loadSnapshot reads the graph from the store, or analyzes the roots
func (e *env) loadSnapshot(ctx context.Context, fromDB bool, extraRoots []string) (*graph.Snapshot, error) {
	if fromDB {
		db, err := storage.Open(e.dbPath)
		if err != nil {
			return nil, fmt.Errorf("打开数据库失败: %w", err)
		}
		defer db.Close()

		run, err := db.LastRun()
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, fmt.Errorf("数据库为空, 请先运行 tsel analyze: %s", e.dbPath)
		}
		slog.Info("using stored graph", "run", run.ID, "root", run.Root, "analyzed", run.CreatedAt)
		return db.LoadSnapshot()
	}

	return analyzer.Analyze(ctx, e.roots(extraRoots), analyzer.Options{RepoRoot: e.repoRoot})
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
