package analyzer

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"

	"github.com/zheng/tsel/internal/diff"
	"github.com/zheng/tsel/internal/graph"
)

// Builder turns an SSA program and its call graph into declarations and call
// edges of the project's own functions.
//
// Functions are canonicalized before they are reported:
//   - a generic instance becomes its origin, Map[int] -> Map
//   - a closure becomes the declared function enclosing it, TestX$1 -> TestX
//
// so a call made from inside t.Run(func...) is attributed to the test.
// Synthetic wrappers (bound method values, interface thunks) are not
// project functions; calls into them are followed through to what they call.
type Builder struct {
	fset        *token.FileSet
	repoRoots   []string        // absolute, as given and symlink-resolved
	projectPkgs map[string]bool // project package paths (to filter out dependencies)
	declared    map[string]bool // decl IDs already reported
	edgeSet     map[[2]string]bool
	declFn      func(graph.Decl) error
	edgeFn      func(graph.CallEdge) error
}

// NewBuilder creates a new graph builder
func NewBuilder(
	fset *token.FileSet,
	pkgs []*packages.Package,
	repoRoot string,
	declFn func(graph.Decl) error,
	edgeFn func(graph.CallEdge) error,
) *Builder {
	projectPkgs := make(map[string]bool)
	for _, pkg := range pkgs {
		if pkg.PkgPath != "" {
			projectPkgs[pkg.PkgPath] = true
		}
	}

	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		absRoot = repoRoot
	}
	repoRoots := []string{absRoot}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil && resolved != absRoot {
		repoRoots = append(repoRoots, resolved)
	}

	return &Builder{
		fset:        fset,
		repoRoots:   repoRoots,
		projectPkgs: projectPkgs,
		declared:    make(map[string]bool),
		edgeSet:     make(map[[2]string]bool),
		declFn:      declFn,
		edgeFn:      edgeFn,
	}
}

// Build reports a Decl for every declared project function in funcs and a
// CallEdge for every call in cg between two project functions.
func (b *Builder) Build(funcs map[*ssa.Function]bool, cg *callgraph.Graph) error {
	for _, fn := range sortedFunctions(funcs, cg) {
		if err := b.emitDecl(b.canonical(fn)); err != nil {
			return err
		}
	}

	for _, fn := range sortedFunctions(nil, cg) {
		node := cg.Nodes[fn]
		caller := b.canonical(fn)
		if !b.isProjectFunction(caller) {
			continue
		}

		for _, edge := range node.Out {
			if edge.Callee == nil || edge.Callee.Func == nil {
				continue
			}
			for _, callee := range b.resolveCallee(cg, edge.Callee.Func, make(map[*ssa.Function]bool)) {
				if err := b.emitEdge(caller, callee, edge.Site); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// DeclCount returns the number of declarations reported so far
func (b *Builder) DeclCount() int {
	return len(b.declared)
}

// EdgeCount returns the number of edges reported so far
func (b *Builder) EdgeCount() int {
	return len(b.edgeSet)
}

// canonical folds generic instances into their origin and closures into
// their enclosing function. Nested closures ($1$1) resolve all the way up.
func (b *Builder) canonical(fn *ssa.Function) *ssa.Function {
	for {
		if origin := fn.Origin(); origin != nil {
			fn = origin
			continue
		}
		if parent := fn.Parent(); parent != nil {
			fn = parent
			continue
		}
		return fn
	}
}

// isProjectFunction checks if fn is a source-level function of the project
// (not a dependency, not a synthetic wrapper or package initializer)
func (b *Builder) isProjectFunction(fn *ssa.Function) bool {
	if fn.Synthetic != "" || fn.Pkg == nil {
		return false
	}
	return b.projectPkgs[fn.Pkg.Pkg.Path()]
}

// resolveCallee maps a call target to the project functions it stands for.
// Synthetic wrappers are looked through; dependency functions yield nothing.
func (b *Builder) resolveCallee(cg *callgraph.Graph, fn *ssa.Function, visited map[*ssa.Function]bool) []*ssa.Function {
	c := b.canonical(fn)
	if b.isProjectFunction(c) {
		return []*ssa.Function{c}
	}
	if fn.Synthetic == "" || visited[fn] {
		return nil
	}
	visited[fn] = true

	node := cg.Nodes[fn]
	if node == nil {
		return nil
	}
	var out []*ssa.Function
	for _, edge := range node.Out {
		if edge.Callee == nil || edge.Callee.Func == nil {
			continue
		}
		out = append(out, b.resolveCallee(cg, edge.Callee.Func, visited)...)
	}
	return out
}

// emitDecl reports fn once, with the line span of its declaration
func (b *Builder) emitDecl(fn *ssa.Function) error {
	if !b.isProjectFunction(fn) {
		return nil
	}
	id := fn.String()
	if b.declared[id] {
		return nil
	}

	decl, ok := fn.Syntax().(*ast.FuncDecl)
	if !ok {
		return nil
	}
	start := b.fset.Position(decl.Pos())
	end := b.fset.Position(decl.End())

	r, err := diff.NewLineRange(start.Line, end.Line)
	if err != nil {
		return fmt.Errorf("bad span for %s: %w", id, err)
	}

	b.declared[id] = true
	err = b.declFn(graph.Decl{
		ID:        id,
		Package:   fn.Pkg.Pkg.Path(),
		File:      b.relPath(start.Filename),
		Range:     r,
		Signature: fn.Signature.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", id, err)
	}
	return nil
}

// emitEdge reports caller -> callee once per pair. Self-edges are kept:
// recursion and closure merging both produce them, and they are harmless
// to the reverse walk.
func (b *Builder) emitEdge(caller, callee *ssa.Function, site ssa.CallInstruction) error {
	key := [2]string{caller.String(), callee.String()}
	if b.edgeSet[key] {
		return nil
	}
	b.edgeSet[key] = true

	var callSiteFile string
	var callSiteLine int
	if site != nil && site.Pos() != token.NoPos {
		pos := b.fset.Position(site.Pos())
		callSiteFile = b.relPath(pos.Filename)
		callSiteLine = pos.Line
	}

	err := b.edgeFn(graph.CallEdge{
		Caller:       key[0],
		Callee:       key[1],
		CallSiteFile: callSiteFile,
		CallSiteLine: callSiteLine,
	})
	if err != nil {
		return fmt.Errorf("failed to create edge: %w", err)
	}
	return nil
}

// relPath makes filename relative to the repository root with forward
// slashes, matching the paths git prints in a diff
func (b *Builder) relPath(filename string) string {
	if filename == "" {
		return ""
	}
	if rel, ok := b.underRoot(filename); ok {
		return rel
	}
	// loaded through a symlinked path while git reports the resolved root
	if resolved, err := filepath.EvalSymlinks(filename); err == nil && resolved != filename {
		if rel, ok := b.underRoot(resolved); ok {
			return rel
		}
	}
	return filepath.ToSlash(filename)
}

func (b *Builder) underRoot(filename string) (string, bool) {
	for _, root := range b.repoRoots {
		if rel, err := filepath.Rel(root, filename); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel), true
		}
	}
	return "", false
}

// sortedFunctions merges the keys of funcs and the nodes of cg in a stable
// order so repeated runs report in the same order
func sortedFunctions(funcs map[*ssa.Function]bool, cg *callgraph.Graph) []*ssa.Function {
	seen := make(map[*ssa.Function]bool, len(funcs)+len(cg.Nodes))
	var out []*ssa.Function
	for fn := range funcs {
		if fn != nil && !seen[fn] {
			seen[fn] = true
			out = append(out, fn)
		}
	}
	for fn, node := range cg.Nodes {
		if fn != nil && node != nil && !seen[fn] {
			seen[fn] = true
			out = append(out, fn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].String(), out[j].String()
		if si != sj {
			return si < sj
		}
		return out[i].Pos() < out[j].Pos()
	})
	return out
}
