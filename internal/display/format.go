package display

import (
	"fmt"
	"strings"
)

// ShortFuncName simplifies a fully qualified function name.
// e.g., "(*github.com/foo/bar/pkg.Type).Method" -> "(*pkg.Type).Method"
// e.g., "github.com/foo/bar/pkg.FuncName" -> "pkg.FuncName"
func ShortFuncName(fullName string) string {
	prefix := ""
	name := fullName
	if strings.HasPrefix(name, "(*") {
		prefix = "(*"
		name = name[2:]
	} else if strings.HasPrefix(name, "(") {
		prefix = "("
		name = name[1:]
	}

	// Only look for "/" before the type arguments: "pkg.Map[a/b.T]"
	head := name
	if i := strings.Index(head, "["); i >= 0 {
		head = head[:i]
	}
	if idx := strings.LastIndex(head, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	return prefix + name
}

// FormatChain renders a call chain from a test down to a changed function.
// e.g., "calc.TestHelper → calc.helperB → (*calc.Calculator).Add"
func FormatChain(chain []string) string {
	parts := make([]string, len(chain))
	for i, id := range chain {
		parts[i] = ShortFuncName(id)
	}
	return strings.Join(parts, " → ")
}

// FormatCallers renders a callee -> callers index as a tree with ASCII
// box-drawing characters. callees fixes the output order.
func FormatCallers(callees []string, callers map[string][]string) string {
	var sb strings.Builder

	maxWidth := 0
	for _, callee := range callees {
		for _, c := range callers[callee] {
			if w := len(ShortFuncName(c)); w > maxWidth {
				maxWidth = w
			}
		}
	}

	for _, callee := range callees {
		list := callers[callee]
		sb.WriteString(fmt.Sprintf("%s (%d)\n", ShortFuncName(callee), len(list)))
		for i, c := range list {
			prefix := "├──"
			if i == len(list)-1 {
				prefix = "└──"
			}
			sb.WriteString(fmt.Sprintf("%s %-*s  %s\n", prefix, maxWidth, ShortFuncName(c), c))
		}
	}
	return sb.String()
}
