package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFunctionID(t *testing.T) {
	tests := []struct {
		id       string
		typeName string
		name     string
	}{
		{"(*example.com/calc.Calculator).Add", "Calculator", "Add"},
		{"(example.com/calc.Calculator).Add", "Calculator", "Add"},
		{"(*example.com/calc.Stack[T]).Push", "Stack", "Push"},
		{"(*example.com/calc.Stack[example.com/x.Y]).Push", "Stack", "Push"},
		{"example.com/calc.TestAdd", "", "TestAdd"},
		{"example.com/calc.Map[int]", "", "Map"},
		{"gopkg.in/yaml.v3.Marshal", "", "Marshal"},
		{"main.TestX", "", "TestX"},
		{"io.example.CalculatorTest.testAdd", "CalculatorTest", "testAdd"},
		{"plain", "", "plain"},
	}

	for _, tt := range tests {
		typeName, name := SplitFunctionID(tt.id)
		assert.Equal(t, tt.typeName, typeName, tt.id)
		assert.Equal(t, tt.name, name, tt.id)
	}
}

func TestNamingClassifier(t *testing.T) {
	c := DefaultClassifier()

	testLike := []string{
		"example.com/calc.TestAdd",
		"example.com/calc.BenchmarkAdd",
		"example.com/calc.FuzzParse",
		"example.com/calc.ExampleCalculator",
		"(*example.com/calc.CalculatorSuite).SetupTest",
		"(*example.com/calc.CalculatorSuite).newFixture",
		"(*example.com/calc.integrationTests).seed",
		"io.example.CalculatorTest.helper",
	}
	for _, id := range testLike {
		assert.True(t, c.IsTestLike(id), id)
	}

	notTestLike := []string{
		"example.com/calc.Add",
		"example.com/calc.testAdd",
		"(*example.com/calc.Calculator).Add",
		"(*example.com/calc.Contest).Run",
		"example.com/latest.Run",
		"(*example.com/calc.CalculatorSuites).Run",
	}
	for _, id := range notTestLike {
		assert.False(t, c.IsTestLike(id), id)
	}
}

func TestNamingClassifier_Configurable(t *testing.T) {
	c := NamingClassifier{Prefixes: []string{"test"}, SuiteSuffixes: []string{"Spec"}}

	assert.True(t, c.IsTestLike("io.example.Calc.testAdd"))
	assert.True(t, c.IsTestLike("io.example.CalcSpec.add"))
	assert.False(t, c.IsTestLike("example.com/calc.TestAdd"))
}

func TestClassifierFunc(t *testing.T) {
	c := ClassifierFunc(func(id string) bool { return id == "x" })
	assert.True(t, c.IsTestLike("x"))
	assert.False(t, c.IsTestLike("y"))
}
