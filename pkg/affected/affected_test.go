package affected

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is the calc module also used by the analyzer tests:
//
//	calc.go       (*Calculator).Add L5-7, (*Calculator).Multiply L9-11, Sum L13-19
//	helper.go     helperB L4-7 (calls Add), apply L9-11
//	calc_test.go  TestAdd L5-10, TestHelper L12-16, TestApply L18-25, TestSum L27-31
func fixture(t *testing.T) (string, Options) {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", "..", "internal", "analyzer", "testdata", "calc"))
	require.NoError(t, err)
	return root, Options{RepoRoot: root}
}

func hunk(file, header string) string {
	return "diff --git a/" + file + " b/" + file + "\n" +
		"--- a/" + file + "\n" +
		"+++ b/" + file + "\n" +
		header + "\n" +
		"-old\n" +
		"+new\n"
}

func TestFindAffectedTests_SharedFunction(t *testing.T) {
	root, opts := fixture(t)

	tests, err := FindAffectedTests(context.Background(), hunk("calc.go", "@@ -6 +6 @@"), []string{root}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/calc.TestAdd", "example.com/calc.TestHelper"}, tests)
}

func TestFindAffectedTests_Helper(t *testing.T) {
	root, opts := fixture(t)

	tests, err := FindAffectedTests(context.Background(), hunk("helper.go", "@@ -6 +6 @@"), []string{root}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/calc.TestHelper"}, tests)
}

func TestFindAffectedTests_MethodValue(t *testing.T) {
	root, opts := fixture(t)

	tests, err := FindAffectedTests(context.Background(), hunk("calc.go", "@@ -10 +10 @@"), []string{root}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/calc.TestApply"}, tests)
}

func TestFindAffectedTests_Generic(t *testing.T) {
	root, opts := fixture(t)

	tests, err := FindAffectedTests(context.Background(), hunk("calc.go", "@@ -16 +16 @@"), []string{root}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/calc.TestSum"}, tests)
}

func TestFindAffectedTestsAsString(t *testing.T) {
	root, opts := fixture(t)
	ctx := context.Background()

	out, err := FindAffectedTestsAsString(ctx, hunk("calc.go", "@@ -6 +6 @@"), []string{root}, opts)
	require.NoError(t, err)
	assert.Equal(t, "example.com/calc.TestAdd\nexample.com/calc.TestHelper", out)

	// blank line between functions
	out, err = FindAffectedTestsAsString(ctx, hunk("calc.go", "@@ -8 +8 @@"), []string{root}, opts)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestFindAffectedTests_EmptyDiff(t *testing.T) {
	tests, err := FindAffectedTests(context.Background(), "", []string{"does-not-exist"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, tests)
}

func TestFindAffectedTests_NonGoFilesIgnored(t *testing.T) {
	tests, err := FindAffectedTests(context.Background(), hunk("README.md", "@@ -1 +1 @@"), []string{"does-not-exist"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, tests)
}

func TestFindAffectedTests_NoRoots(t *testing.T) {
	_, err := FindAffectedTests(context.Background(), hunk("calc.go", "@@ -6 +6 @@"), nil, Options{})
	assert.Error(t, err)
}
