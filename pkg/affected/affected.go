// Package affected is the embeddable entry point of tsel: given a unified
// diff and the source roots of a Go project, it returns the test functions
// whose outcome the change may affect.
//
//	tests, err := affected.FindAffectedTests(ctx, diffText, []string{"."}, affected.Options{})
//
// The result over-approximates: every test with a static call path to a
// changed function is reported, including tests reached through other tests
// or test helpers. Calls made only through reflection or code generated at
// runtime are not seen.
package affected

import (
	"context"
	"fmt"

	"github.com/zheng/tsel/internal/analyzer"
	"github.com/zheng/tsel/internal/export"
	"github.com/zheng/tsel/internal/impact"
	"github.com/zheng/tsel/internal/selector"
)

// Options configures FindAffectedTests. The zero value works for a single
// module at the root of its git repository.
type Options struct {
	// RepoRoot is the directory the diff paths are relative to. Empty asks
	// git for the top level of the first root.
	RepoRoot string
	// Extensions limits which changed files count. Empty means ".go".
	Extensions []string
	// TestPrefixes and SuiteSuffixes override the naming rules for tests
	TestPrefixes  []string
	SuiteSuffixes []string
	// Strict rejects malformed diffs instead of skipping bad hunks
	Strict bool
}

// FindAffectedTests returns the sorted IDs of the tests affected by diff.
// An empty diff returns an empty slice without analyzing anything.
func FindAffectedTests(ctx context.Context, diff string, roots []string, opts Options) ([]string, error) {
	report, err := resolve(ctx, diff, roots, opts)
	if err != nil {
		return nil, err
	}
	return report.Affected, nil
}

// FindAffectedTestsAsString is FindAffectedTests joined by "\n", with no
// trailing newline. No affected tests yields "".
func FindAffectedTestsAsString(ctx context.Context, diff string, roots []string, opts Options) (string, error) {
	report, err := resolve(ctx, diff, roots, opts)
	if err != nil {
		return "", err
	}
	return export.Emit(report.AffectedSet()), nil
}

func resolve(ctx context.Context, diff string, roots []string, opts Options) (*impact.Report, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no source roots given")
	}

	sel := selector.New(selector.Options{
		Extensions: orDefault(opts.Extensions, selector.DefaultExtensions),
		Classifier: impact.NamingClassifier{
			Prefixes:      orDefault(opts.TestPrefixes, impact.DefaultTestPrefixes),
			SuiteSuffixes: orDefault(opts.SuiteSuffixes, impact.DefaultSuiteSuffixes),
		},
		Strict: opts.Strict,
	})

	fileDiffs, err := sel.ParseDiff(diff)
	if err != nil {
		return nil, err
	}
	if len(fileDiffs) == 0 {
		return &impact.Report{Changed: []string{}, Affected: []string{}}, nil
	}

	repoRoot := opts.RepoRoot
	if repoRoot == "" {
		repoRoot, err = analyzer.RepoRoot(ctx, roots[0])
		if err != nil {
			return nil, err
		}
	}

	snap, err := analyzer.Analyze(ctx, roots, analyzer.Options{RepoRoot: repoRoot})
	if err != nil {
		return nil, err
	}
	return sel.Resolve(fileDiffs, snap, snap), nil
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
