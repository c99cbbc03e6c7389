package analyzer

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/tools/go/packages"
)

func TestFilterSourcePackages(t *testing.T) {
	syntax := []*ast.File{{Name: ast.NewIdent("calc")}}
	pkgs := []*packages.Package{
		{ID: "example.com/calc", Syntax: syntax},
		{ID: "example.com/calc [example.com/calc.test]", Syntax: syntax},
		{ID: "example.com/calc_test [example.com/calc.test]", Syntax: syntax},
		{ID: "example.com/calc.test", Syntax: syntax},
		{ID: "example.com/empty"},
	}

	var ids []string
	for _, p := range FilterSourcePackages(pkgs) {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{
		"example.com/calc",
		"example.com/calc [example.com/calc.test]",
		"example.com/calc_test [example.com/calc.test]",
	}, ids)
}
