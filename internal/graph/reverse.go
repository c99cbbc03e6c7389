package graph

import "sort"

// ReverseCallGraph indexes call edges by callee: for every function it
// answers "who calls this". It is built once per run and is read-only
// while resolving. Not safe for concurrent writers; feed edges from a
// single goroutine.
//
// e.g. if calc.Add is called by TestAdd and helperB:
//
//	callers["calc.Add"] = {"TestAdd", "helperB"}
type ReverseCallGraph struct {
	callers map[string]Set
}

// Stats summarizes a ReverseCallGraph
type Stats struct {
	Callees int `json:"callees"`
	Edges   int `json:"edges"`
}

// New creates an empty graph
func New() *ReverseCallGraph {
	return &ReverseCallGraph{callers: make(map[string]Set)}
}

// Build creates a graph from every edge of src
func Build(src EdgeSource) *ReverseCallGraph {
	g := New()
	for _, e := range src.CallEdges() {
		g.AddEdge(e.Caller, e.Callee)
	}
	return g
}

// AddEdge records that caller calls callee. Adding the same edge again is a
// no-op. Self edges (recursion) are stored as-is.
func (g *ReverseCallGraph) AddEdge(caller, callee string) {
	set, ok := g.callers[callee]
	if !ok {
		set = make(Set)
		g.callers[callee] = set
	}
	set.Add(caller)
}

// Callers returns the direct callers of callee in sorted order.
// Unknown callees have no callers.
func (g *ReverseCallGraph) Callers(callee string) []string {
	set, ok := g.callers[callee]
	if !ok {
		return nil
	}
	return set.Sorted()
}

// AllEdges returns a copy of the whole callee -> callers index
func (g *ReverseCallGraph) AllEdges() map[string][]string {
	out := make(map[string][]string, len(g.callers))
	for callee, set := range g.callers {
		out[callee] = set.Sorted()
	}
	return out
}

// Callees returns every function that has at least one caller, sorted
func (g *ReverseCallGraph) Callees() []string {
	out := make([]string, 0, len(g.callers))
	for callee := range g.callers {
		out = append(out, callee)
	}
	sort.Strings(out)
	return out
}

// Stats returns the number of callees and distinct edges
func (g *ReverseCallGraph) Stats() Stats {
	stats := Stats{Callees: len(g.callers)}
	for _, set := range g.callers {
		stats.Edges += set.Len()
	}
	return stats
}
