package impact

import (
	"log/slog"

	"github.com/zheng/tsel/internal/graph"
)

// Resolver finds the tests affected by a set of changed functions.
//
// The walk is a reverse breadth-first search over callers that does NOT stop
// at test-like functions. Given testA -> testB -> changed, testB is affected
// because it calls the change directly, and testA is affected too: it may
// call testB with arguments testB's own assertions never exercise, e.g.
//
//	func divide(a, b int) int   // changed: now panics on b == 0
//	func calculate(x int) int   { return divide(100, x) }
//	func process() int          { return calculate(0) }
//	func TestCalculate(t)       { calculate(2) }  // still passes
//	func TestProcess(t)         { process() }     // now fails
//
// The same holds for helpers on a suite type, which classify as tests.
// Stopping early would trade false negatives for less work; this resolver
// always over-approximates. Cycles are handled only by the seen set, which
// bounds every function to one expansion.
type Resolver struct {
	graph      *graph.ReverseCallGraph
	classifier Classifier
}

// NewResolver creates a resolver over g
func NewResolver(g *graph.ReverseCallGraph, classifier Classifier) *Resolver {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Resolver{graph: g, classifier: classifier}
}

// FindAffected returns the test-like functions reachable from changed by
// following caller edges backwards.
func FindAffected(changed graph.Set, g *graph.ReverseCallGraph, classifier Classifier) graph.Set {
	return NewResolver(g, classifier).FindAffected(changed)
}

// FindAffected returns the test-like transitive callers of changed
func (r *Resolver) FindAffected(changed graph.Set) graph.Set {
	affected, _ := r.walk(changed, nil)
	return affected
}

// Resolve runs the same walk as FindAffected and additionally records, for
// every affected test, the call chain through which it was first reached.
func (r *Resolver) Resolve(changed graph.Set) *Report {
	parent := make(map[string]string)
	affected, seen := r.walk(changed, parent)

	report := &Report{
		Changed:  changed.Sorted(),
		Affected: affected.Sorted(),
		Chains:   make(map[string][]string, affected.Len()),
		Visited:  seen.Len(),
	}
	for _, test := range report.Affected {
		report.Chains[test] = chain(test, parent)
	}

	slog.Debug("impact resolved", "changed", len(report.Changed), "affected", len(report.Affected), "visited", report.Visited)
	return report
}

// walk is the reverse BFS. When parent is non-nil it receives the callee
// through which each caller was first discovered.
func (r *Resolver) walk(changed graph.Set, parent map[string]string) (affected, seen graph.Set) {
	affected = graph.NewSet()
	seen = graph.NewSet()
	queue := changed.Sorted()

	for head := 0; head < len(queue); head++ {
		callee := queue[head]
		if seen.Has(callee) {
			continue
		}
		seen.Add(callee)

		for _, caller := range r.graph.Callers(callee) {
			if r.classifier.IsTestLike(caller) {
				affected.Add(caller)
			}
			if parent != nil && !changed.Has(caller) {
				if _, ok := parent[caller]; !ok {
					parent[caller] = callee
				}
			}
			// keep climbing even through test-like callers
			queue = append(queue, caller)
		}
	}

	return affected, seen
}

// chain follows parent links from test down to a changed function
func chain(test string, parent map[string]string) []string {
	out := []string{test}
	cur := test
	for i := 0; i <= len(parent); i++ {
		p, ok := parent[cur]
		if !ok {
			break
		}
		out = append(out, p)
		cur = p
	}
	return out
}
