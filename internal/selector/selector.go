// Package selector wires diff parsing, change mapping and impact resolution
// into a single pass: diff text in, affected tests out.
package selector

import (
	"log/slog"

	"github.com/zheng/tsel/internal/changes"
	"github.com/zheng/tsel/internal/diff"
	"github.com/zheng/tsel/internal/graph"
	"github.com/zheng/tsel/internal/impact"
)

// DefaultExtensions are the source files a Go analysis can map to functions
var DefaultExtensions = []string{".go"}

// Options configures a Selector
type Options struct {
	// Extensions restricts which changed files are considered. Empty keeps all.
	Extensions []string
	// Classifier decides which functions are tests. nil uses the Go naming rules.
	Classifier impact.Classifier
	// Strict rejects malformed diffs instead of skipping bad hunks
	Strict bool
	// IncludeChangedTests also reports test-like functions that were
	// themselves changed, even when no other test calls them.
	IncludeChangedTests bool
}

// Selector runs the selection pipeline
type Selector struct {
	opts Options
}

// New creates a selector
func New(opts Options) *Selector {
	if opts.Classifier == nil {
		opts.Classifier = impact.DefaultClassifier()
	}
	return &Selector{opts: opts}
}

// ParseDiff parses diff text according to the selector's options
func (s *Selector) ParseDiff(text string) (map[string]*diff.FileDiff, error) {
	if !s.opts.Strict {
		return diff.ParseForLanguage(text, s.opts.Extensions), nil
	}
	files, err := diff.ParseStrict(text)
	if err != nil {
		return nil, err
	}
	return diff.FilterExtensions(files, s.opts.Extensions), nil
}

// Resolve maps fileDiffs onto decls, builds the reverse graph from edges
// and walks it.
func (s *Selector) Resolve(fileDiffs map[string]*diff.FileDiff, decls graph.DeclSource, edges graph.EdgeSource) *impact.Report {
	changed := changes.Collect(fileDiffs, decls.Declarations())
	if changed.Len() == 0 {
		slog.Debug("no changed functions", "files", len(fileDiffs))
		return &impact.Report{
			Changed:  []string{},
			Affected: []string{},
		}
	}

	g := graph.Build(edges)
	stats := g.Stats()
	slog.Debug("reverse call graph built", "callees", stats.Callees, "edges", stats.Edges)

	report := impact.NewResolver(g, s.opts.Classifier).Resolve(changed)
	if s.opts.IncludeChangedTests {
		s.addChangedTests(report, changed)
	}
	return report
}

// Run parses text and resolves it against the given sources
func (s *Selector) Run(text string, decls graph.DeclSource, edges graph.EdgeSource) (*impact.Report, error) {
	fileDiffs, err := s.ParseDiff(text)
	if err != nil {
		return nil, err
	}
	return s.Resolve(fileDiffs, decls, edges), nil
}

func (s *Selector) addChangedTests(report *impact.Report, changed graph.Set) {
	affected := report.AffectedSet()
	added := false
	for _, id := range changed.Sorted() {
		if affected.Has(id) || !s.opts.Classifier.IsTestLike(id) {
			continue
		}
		affected.Add(id)
		report.Chains[id] = []string{id}
		added = true
	}
	if added {
		report.Affected = affected.Sorted()
	}
}
