package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadPackages loads every package under dir, test files included.
// Package errors are logged and do not fail the load; broken packages are
// simply missing from the call graph.
func LoadPackages(ctx context.Context, dir string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedSyntax |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedDeps |
			packages.NeedImports,
		Dir:   dir,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []packages.Error
	for _, pkg := range pkgs {
		errs = append(errs, pkg.Errors...)
	}
	if len(errs) > 0 {
		slog.Warn("package errors encountered", "dir", dir, "count", len(errs))
		for _, e := range errs {
			slog.Warn("package error", "error", e.Error())
		}
	}

	return pkgs, nil
}

// FilterSourcePackages keeps packages with parsed source, dropping the
// generated test main packages ("pkg.test").
func FilterSourcePackages(pkgs []*packages.Package) []*packages.Package {
	var result []*packages.Package
	for _, pkg := range pkgs {
		if len(pkg.Syntax) == 0 {
			continue
		}
		if strings.HasSuffix(pkg.ID, ".test") {
			continue
		}
		result = append(result, pkg)
	}
	return result
}
