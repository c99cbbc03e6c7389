package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFileDiff = `diff --git a/calc/calc.go b/calc/calc.go
index 83db48f..bf269f4 100644
--- a/calc/calc.go
+++ b/calc/calc.go
@@ -4,1 +4,1 @@ type Calculator struct{}
-	return a + b
+	return a + b + 0
@@ -10,2 +11,0 @@ func (c *Calculator) Multiply(a, b int) int {
-	x := 1
-	y := 2
@@ -20,0 +19,3 @@ func helper() {
+	one()
+	two()
+	three()
diff --git a/calc/README.md b/calc/README.md
index 1111111..2222222 100644
--- a/calc/README.md
+++ b/calc/README.md
@@ -1 +1 @@
-old title
+new title
`

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n\n"))
}

func TestParse_SingleHunkWithCounts(t *testing.T) {
	text := `diff --git a/src/Foo.go b/src/Foo.go
--- a/src/Foo.go
+++ b/src/Foo.go
@@ -10,2 +10,3 @@ func existing()
+	added 1
+	added 2
+	added 3
`
	result := Parse(text)
	require.Contains(t, result, "src/Foo.go")
	assert.Equal(t, []LineRange{{Start: 10, End: 12}}, result["src/Foo.go"].Ranges)
	assert.Equal(t, "src/Foo.go", result["src/Foo.go"].Path)
}

func TestParse_OmittedCountDefaultsToOne(t *testing.T) {
	text := `diff --git a/a.go b/a.go
@@ -20 +21 @@ type Bar
-	old
+	new
`
	result := Parse(text)
	require.Contains(t, result, "a.go")
	assert.Equal(t, []LineRange{{Start: 21, End: 21}}, result["a.go"].Ranges)
}

func TestParse_DeletionOnlyFileIsOmitted(t *testing.T) {
	text := `diff --git a/gone.go b/gone.go
--- a/gone.go
+++ b/gone.go
@@ -5,3 +4,0 @@ func f() {
-	a()
-	b()
-	c()
`
	assert.NotContains(t, Parse(text), "gone.go")
}

func TestParse_HeaderWithoutHunks(t *testing.T) {
	text := `diff --git a/mode.go b/mode.go
old mode 100644
new mode 100755
`
	assert.Empty(t, Parse(text))
}

func TestParse_InterleavedHunksAndMultipleFiles(t *testing.T) {
	result := Parse(twoFileDiff)

	require.Len(t, result, 2)
	assert.Equal(t, []LineRange{{Start: 4, End: 4}, {Start: 19, End: 21}}, result["calc/calc.go"].Ranges)
	assert.Equal(t, []LineRange{{Start: 1, End: 1}}, result["calc/README.md"].Ranges)
}

func TestParse_MalformedHunkHeaderIsSkipped(t *testing.T) {
	text := `diff --git a/a.go b/a.go
@@ garbage @@
@@ -1,2 +x,3 @@
@@ -1 +0,2 @@
@@ -7 +7,2 @@
+	ok
+	ok
`
	result := Parse(text)
	require.Contains(t, result, "a.go")
	assert.Equal(t, []LineRange{{Start: 7, End: 8}}, result["a.go"].Ranges)
}

func TestParse_HunkBeforeFileHeaderIsIgnored(t *testing.T) {
	text := `@@ -1 +1 @@
diff --git a/b.go b/b.go
@@ -3 +3 @@
`
	result := Parse(text)
	require.Len(t, result, 1)
	assert.Equal(t, []LineRange{{Start: 3, End: 3}}, result["b.go"].Ranges)
}

func TestParse_CRLF(t *testing.T) {
	text := "diff --git a/w.go b/w.go\r\n@@ -2 +2,2 @@\r\n+x\r\n+y\r\n"
	result := Parse(text)
	require.Contains(t, result, "w.go")
	assert.Equal(t, []LineRange{{Start: 2, End: 3}}, result["w.go"].Ranges)
}

func TestParseForLanguage(t *testing.T) {
	result := ParseForLanguage(twoFileDiff, []string{".go"})
	assert.Contains(t, result, "calc/calc.go")
	assert.NotContains(t, result, "calc/README.md")

	assert.Empty(t, ParseForLanguage(twoFileDiff, []string{".kt", ".kts"}))
	assert.Len(t, ParseForLanguage(twoFileDiff, nil), 2)
}

func TestParseStrict_AgreesWithTolerantParser(t *testing.T) {
	strict, err := ParseStrict(twoFileDiff)
	require.NoError(t, err)

	tolerant := Parse(twoFileDiff)
	require.Len(t, strict, len(tolerant))
	for path, fd := range tolerant {
		require.Contains(t, strict, path)
		assert.Equal(t, fd.Ranges, strict[path].Ranges, path)
	}
}

func TestParseStrict_Empty(t *testing.T) {
	result, err := ParseStrict("")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestParse_RepeatedFileSectionsAccumulate(t *testing.T) {
	text := `diff --git a/calc/calc.go b/calc/calc.go
--- a/calc/calc.go
+++ b/calc/calc.go
@@ -4 +4 @@
-a
+b
diff --git a/calc/calc.go b/calc/calc.go
--- a/calc/calc.go
+++ b/calc/calc.go
@@ -20 +20,2 @@
-c
+d
+e
`
	want := []LineRange{{Start: 4, End: 4}, {Start: 20, End: 21}}

	tolerant := Parse(text)
	require.Contains(t, tolerant, "calc/calc.go")
	assert.Equal(t, want, tolerant["calc/calc.go"].Ranges)

	strict, err := ParseStrict(text)
	require.NoError(t, err)
	require.Contains(t, strict, "calc/calc.go")
	assert.Equal(t, want, strict["calc/calc.go"].Ranges)
}
