package impact

import "strings"

// Classifier decides whether a function should be reported as a test
type Classifier interface {
	IsTestLike(id string) bool
}

// ClassifierFunc adapts a plain function to Classifier
type ClassifierFunc func(id string) bool

func (f ClassifierFunc) IsTestLike(id string) bool {
	return f(id)
}

// Default naming conventions for Go test code
var (
	DefaultTestPrefixes  = []string{"Test", "Benchmark", "Fuzz", "Example"}
	DefaultSuiteSuffixes = []string{"Suite", "Test", "Tests"}
)

// NamingClassifier classifies by naming convention: a function is test-like
// when its simple name starts with one of Prefixes, or when its receiver type
// name ends with one of SuiteSuffixes (testify suites, test helpers hung off
// a *FooTest type). Matching is exact and case-sensitive.
//
// This is a heuristic. Helpers living on a suite type are classified as
// tests too, which is why the resolver never stops at a test-like node.
type NamingClassifier struct {
	Prefixes      []string
	SuiteSuffixes []string
}

// DefaultClassifier returns the Go naming classifier
func DefaultClassifier() NamingClassifier {
	return NamingClassifier{
		Prefixes:      DefaultTestPrefixes,
		SuiteSuffixes: DefaultSuiteSuffixes,
	}
}

func (c NamingClassifier) IsTestLike(id string) bool {
	typeName, name := SplitFunctionID(id)

	for _, p := range c.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	if typeName == "" {
		return false
	}
	for _, s := range c.SuiteSuffixes {
		if strings.HasSuffix(typeName, s) {
			return true
		}
	}
	return false
}

// SplitFunctionID extracts the enclosing type name and the simple name from
// a function identifier.
//
//	(*example.com/calc.Calculator).Add  -> "Calculator", "Add"
//	(example.com/calc.Stack[T]).Push    -> "Stack", "Push"
//	example.com/calc.TestAdd            -> "", "TestAdd"
//	example.com/calc.Map[int]           -> "", "Map"
//	io.example.CalculatorTest.testAdd   -> "CalculatorTest", "testAdd"
//
// A plain Go function (qualifier contains a "/" or is a single package name)
// has no enclosing type.
func SplitFunctionID(id string) (typeName, name string) {
	if strings.HasPrefix(id, "(") {
		if i := strings.LastIndex(id, ")."); i > 0 {
			recv := strings.TrimPrefix(id[1:i], "*")
			return lastSegment(stripTypeArgs(recv)), stripTypeArgs(id[i+2:])
		}
	}

	id = stripTypeArgs(id)
	dot := strings.LastIndex(id, ".")
	if dot < 0 {
		return "", id
	}
	name = id[dot+1:]
	qualifier := id[:dot]
	if strings.Contains(qualifier, "/") {
		return "", name
	}
	if i := strings.LastIndex(qualifier, "."); i >= 0 {
		return qualifier[i+1:], name
	}
	return "", name
}

func stripTypeArgs(s string) string {
	if i := strings.Index(s, "["); i >= 0 {
		return s[:i]
	}
	return s
}

func lastSegment(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}
