// Package export writes affected-test lists for other tools.
//
// The format is plain text, one function id per line in ascending order,
// because it feeds directly into grep, xargs and `go test -run` builders.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zheng/tsel/internal/graph"
	"github.com/zheng/tsel/internal/impact"
)

// Emit returns tests sorted and joined by "\n" without a trailing newline.
// An empty set yields "".
func Emit(tests graph.Set) string {
	return strings.Join(tests.Sorted(), "\n")
}

// EmitToFile writes Emit(tests) verbatim to path
func EmitToFile(tests graph.Set, path string) error {
	if err := os.WriteFile(path, []byte(Emit(tests)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// EmitTo writes Emit(tests) followed by a newline, the way it is printed to stdout
func EmitTo(w io.Writer, tests graph.Set) error {
	_, err := fmt.Fprintln(w, Emit(tests))
	return err
}

// EmitJSON writes the full report as indented JSON
func EmitJSON(w io.Writer, report *impact.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RunPattern builds a `go test -run` regular expression selecting the given
// tests by simple name, e.g. "^(TestAdd|TestHelper)$". Non top-level test
// functions (suite methods, helpers) are skipped.
func RunPattern(tests graph.Set) string {
	seen := make(map[string]bool)
	var names []string
	for _, id := range tests.Sorted() {
		typeName, name := impact.SplitFunctionID(id)
		if typeName != "" || !strings.HasPrefix(name, "Test") || strings.Contains(name, "$") {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	return "^(" + strings.Join(names, "|") + ")$"
}
