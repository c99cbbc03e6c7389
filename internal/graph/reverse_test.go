package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseCallGraph_AddEdgeIsIdempotent(t *testing.T) {
	once := New()
	once.AddEdge("TestAdd", "Add")

	many := New()
	for i := 0; i < 5; i++ {
		many.AddEdge("TestAdd", "Add")
	}

	assert.Equal(t, once.Callers("Add"), many.Callers("Add"))
	assert.Equal(t, Stats{Callees: 1, Edges: 1}, many.Stats())
}

func TestReverseCallGraph_Callers(t *testing.T) {
	g := New()
	g.AddEdge("helperB", "Add")
	g.AddEdge("TestAdd", "Add")
	g.AddEdge("TestHelper", "helperB")

	assert.Equal(t, []string{"TestAdd", "helperB"}, g.Callers("Add"))
	assert.Equal(t, []string{"TestHelper"}, g.Callers("helperB"))
	assert.Empty(t, g.Callers("TestHelper"))
	assert.Empty(t, g.Callers("does.not.Exist"))
	assert.Equal(t, []string{"Add", "helperB"}, g.Callees())
}

func TestReverseCallGraph_SelfEdge(t *testing.T) {
	g := New()
	g.AddEdge("fib", "fib")
	assert.Equal(t, []string{"fib"}, g.Callers("fib"))
}

func TestReverseCallGraph_AllEdgesIsACopy(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")

	all := g.AllEdges()
	require.Equal(t, map[string][]string{"b": {"a"}}, all)

	all["b"][0] = "mutated"
	all["b"] = append(all["b"], "extra")
	all["c"] = []string{"x"}

	assert.Equal(t, []string{"a"}, g.Callers("b"))
	assert.Empty(t, g.Callers("c"))
}

func TestBuild(t *testing.T) {
	snap := &Snapshot{Edges: []CallEdge{
		{Caller: "TestAdd", Callee: "Add"},
		{Caller: "TestAdd", Callee: "Add", CallSiteLine: 9},
		{Caller: "helperB", Callee: "Add"},
	}}

	g := Build(snap)
	assert.Equal(t, Stats{Callees: 1, Edges: 2}, g.Stats())
}
