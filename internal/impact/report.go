package impact

import (
	"fmt"
	"strings"

	"github.com/zheng/tsel/internal/display"
	"github.com/zheng/tsel/internal/graph"
)

// Report is the outcome of one impact resolution
type Report struct {
	Changed  []string            `json:"changed"`          // 变更的函数
	Affected []string            `json:"affected"`         // 受影响的测试
	Chains   map[string][]string `json:"chains,omitempty"` // test -> ... -> changed function
	Visited  int                 `json:"visited"`          // 展开过的函数数量
}

// AffectedSet returns the affected tests as a set
func (r *Report) AffectedSet() graph.Set {
	return graph.NewSet(r.Affected...)
}

// Summary returns a one-line summary of the report
func (r *Report) Summary() string {
	return fmt.Sprintf("Changed functions: %d, Affected tests: %d, Visited: %d",
		len(r.Changed), len(r.Affected), r.Visited)
}

// FormatTree renders changed functions and, for every affected test, the
// call chain that made it affected.
func (r *Report) FormatTree() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📝 变更函数 (共 %d 个)\n", len(r.Changed)))
	if len(r.Changed) == 0 {
		sb.WriteString("└── (无)\n")
	}
	for i, id := range r.Changed {
		sb.WriteString(fmt.Sprintf("%s %s\n", treePrefix(i, len(r.Changed)), display.ShortFuncName(id)))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("🧪 受影响的测试 (共 %d 个)\n", len(r.Affected)))
	if len(r.Affected) == 0 {
		sb.WriteString("└── (无)\n")
	}
	for i, test := range r.Affected {
		sb.WriteString(fmt.Sprintf("%s %s\n", treePrefix(i, len(r.Affected)), display.FormatChain(r.Chains[test])))
	}

	return sb.String()
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}
