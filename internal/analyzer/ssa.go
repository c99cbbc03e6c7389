package analyzer

import (
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// BuildSSA builds the SSA representation for the given packages
func BuildSSA(pkgs []*packages.Package) (*ssa.Program, []*ssa.Package) {
	// generic instances get their own bodies so calls inside them resolve
	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()
	return prog, ssaPkgs
}
