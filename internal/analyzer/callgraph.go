package analyzer

import (
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// AllFunctions returns every function of prog, including test functions
// that nothing calls.
func AllFunctions(prog *ssa.Program) map[*ssa.Function]bool {
	return ssautil.AllFunctions(prog)
}

// BuildCallGraph builds the call graph using VTA (Variable Type Analysis).
// VTA resolves interface and function-value calls more precisely than CHA.
func BuildCallGraph(funcs map[*ssa.Function]bool) *callgraph.Graph {
	return vta.CallGraph(funcs, nil)
}

// CallGraphStats returns statistics about the call graph
type CallGraphStats struct {
	TotalNodes int
	TotalEdges int
}

// GetCallGraphStats returns statistics about the call graph
func GetCallGraphStats(cg *callgraph.Graph) CallGraphStats {
	stats := CallGraphStats{}
	for fn, node := range cg.Nodes {
		if fn == nil || node == nil {
			continue
		}
		stats.TotalNodes++
		stats.TotalEdges += len(node.Out)
	}
	return stats
}
