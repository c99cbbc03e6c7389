package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zheng/tsel/internal/graph"
	"github.com/zheng/tsel/internal/impact"
)

func TestEmit(t *testing.T) {
	assert.Equal(t, "a\nb", Emit(graph.NewSet("b", "a")))
	assert.Equal(t, "", Emit(graph.NewSet()))
	assert.Equal(t, "x", Emit(graph.NewSet("x")))
}

func TestEmitToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affected.txt")

	require.NoError(t, EmitToFile(graph.NewSet("example.com/calc.TestHelper", "example.com/calc.TestAdd"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "example.com/calc.TestAdd\nexample.com/calc.TestHelper", string(data))
}

func TestEmitToFile_BadPath(t *testing.T) {
	err := EmitToFile(graph.NewSet("x"), filepath.Join(t.TempDir(), "missing", "out.txt"))
	assert.Error(t, err)
}

func TestEmitTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EmitTo(&buf, graph.NewSet("b", "a")))
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestEmitJSON(t *testing.T) {
	report := &impact.Report{
		Changed:  []string{"add"},
		Affected: []string{"testAdd"},
		Chains:   map[string][]string{"testAdd": {"testAdd", "add"}},
		Visited:  2,
	}

	var buf bytes.Buffer
	require.NoError(t, EmitJSON(&buf, report))

	var decoded impact.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *report, decoded)
}

func TestRunPattern(t *testing.T) {
	tests := graph.NewSet(
		"example.com/calc.TestHelper",
		"example.com/calc.TestAdd",
		"example.com/other.TestAdd",
		"(*example.com/calc.CalcSuite).TestSuiteMethod",
		"example.com/calc.BenchmarkAdd",
		"example.com/calc.TestAdd$1",
	)
	assert.Equal(t, "^(TestAdd|TestHelper)$", RunPattern(tests))
	assert.Equal(t, "", RunPattern(graph.NewSet()))
}
