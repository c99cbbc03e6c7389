package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/zheng/tsel/internal/graph"
)

// Options configures Analyze
type Options struct {
	// RepoRoot is the directory decl paths are made relative to. Empty uses
	// each analyzed root itself.
	RepoRoot string
	// Concurrency bounds how many roots are analyzed at once. Zero means
	// GOMAXPROCS.
	Concurrency int
}

// Analyze runs load, SSA construction and call graph building for every
// root and returns the merged declarations and edges. Roots are analyzed in
// parallel; their results are merged in root order on the calling
// goroutine.
func Analyze(ctx context.Context, roots []string, opts Options) (*graph.Snapshot, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no source roots given")
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*graph.Snapshot, len(roots))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			snap, err := AnalyzeRoot(ctx, root, opts.RepoRoot)
			if err != nil {
				return fmt.Errorf("%s: %w", root, err)
			}
			results[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := graph.NewSnapshot()
	for _, snap := range results {
		merged.Merge(snap)
	}
	return merged, nil
}

// AnalyzeRoot analyzes the Go module at root
func AnalyzeRoot(ctx context.Context, root, repoRoot string) (*graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if repoRoot == "" {
		repoRoot = absRoot
	}

	if module, err := ModulePath(absRoot); err == nil {
		slog.Info("analyzing module", "module", module, "root", absRoot)
	} else {
		slog.Info("analyzing directory", "root", absRoot)
	}

	pkgs, err := LoadPackages(ctx, absRoot)
	if err != nil {
		return nil, err
	}
	pkgs = FilterSourcePackages(pkgs)
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no Go packages found in %s", absRoot)
	}
	slog.Debug("packages loaded", "count", len(pkgs))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prog, _ := BuildSSA(pkgs)
	funcs := AllFunctions(prog)
	cg := BuildCallGraph(funcs)

	stats := GetCallGraphStats(cg)
	slog.Debug("call graph built", "nodes", stats.TotalNodes, "edges", stats.TotalEdges)

	snap := graph.NewSnapshot()
	builder := NewBuilder(prog.Fset, pkgs, repoRoot, snap.AddDecl, snap.AddEdge)
	if err := builder.Build(funcs, cg); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	slog.Info("analysis complete", "root", absRoot, "decls", builder.DeclCount(), "edges", builder.EdgeCount())
	return snap, nil
}
