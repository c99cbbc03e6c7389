package diff

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Expected input is `git diff --unified=0`:
//
//	diff --git a/pkg/calc.go b/pkg/calc.go
//	--- a/pkg/calc.go
//	+++ b/pkg/calc.go
//	@@ -10,2 +10,3 @@ func existing()
//	+	added line
//	@@ -20 +21 @@ type Bar
//
// Only the "+newStart,newCount" side of a hunk header matters. A missing
// count means 1; a zero count is a pure deletion and yields no range.
var (
	fileHeaderRe = regexp.MustCompile(`^diff --git a/.+ b/(.+)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@.*$`)
)

// Parse parses unified diff text into per-file changed ranges keyed by path.
// Malformed hunk headers are skipped. Files without any added or modified
// lines are omitted.
func Parse(text string) map[string]*FileDiff {
	result := make(map[string]*FileDiff)

	var current *FileDiff
	// a path seen in two sections keeps the ranges of both
	flush := func() {
		if current == nil || len(current.Ranges) == 0 {
			return
		}
		if existing, ok := result[current.Path]; ok {
			existing.Ranges = append(existing.Ranges, current.Ranges...)
			return
		}
		result[current.Path] = current
	}

	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &FileDiff{Path: m[1]}
			continue
		}

		if !strings.HasPrefix(line, "@@") {
			continue
		}
		if current == nil {
			slog.Debug("hunk header outside of a file section", "line", lineNo+1)
			continue
		}

		r, ok, err := parseHunkHeader(line)
		if err != nil {
			slog.Debug("skipping malformed hunk header", "file", current.Path, "line", lineNo+1, "header", line, "error", err)
			continue
		}
		if ok {
			current.Ranges = append(current.Ranges, r)
		}
	}
	flush()

	return result
}

// ParseForLanguage parses text and keeps only files whose path ends with one
// of the given extensions (e.g. ".go").
func ParseForLanguage(text string, extensions []string) map[string]*FileDiff {
	return FilterExtensions(Parse(text), extensions)
}

// FilterExtensions drops files that do not end with one of extensions.
// An empty extension list keeps everything.
func FilterExtensions(files map[string]*FileDiff, extensions []string) map[string]*FileDiff {
	if len(extensions) == 0 {
		return files
	}
	filtered := make(map[string]*FileDiff, len(files))
	for path, fd := range files {
		if fd.HasExtension(extensions) {
			filtered[path] = fd
		}
	}
	return filtered
}

// parseHunkHeader returns the new-file range of a hunk header.
// ok is false for pure-deletion hunks.
func parseHunkHeader(line string) (r LineRange, ok bool, err error) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return LineRange{}, false, fmt.Errorf("unrecognized hunk header")
	}

	newStart, err := strconv.Atoi(m[1])
	if err != nil {
		return LineRange{}, false, err
	}
	newCount := 1
	if m[2] != "" {
		newCount, err = strconv.Atoi(m[2])
		if err != nil {
			return LineRange{}, false, err
		}
	}

	if newCount == 0 {
		return LineRange{}, false, nil
	}

	r, err = NewLineRange(newStart, newStart+newCount-1)
	if err != nil {
		return LineRange{}, false, err
	}
	return r, true, nil
}

// ParseStrict parses text with go-diff and fails on malformed input instead
// of skipping it. Range semantics match Parse.
func ParseStrict(text string) (map[string]*FileDiff, error) {
	result := make(map[string]*FileDiff)
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	for _, fd := range fileDiffs {
		path := cleanPath(fd.NewName)
		if path == "" {
			// deleted file
			continue
		}

		var ranges []LineRange
		for _, hunk := range fd.Hunks {
			if hunk.NewLines == 0 {
				continue
			}
			start := int(hunk.NewStartLine)
			r, err := NewLineRange(start, start+int(hunk.NewLines)-1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			ranges = append(ranges, r)
		}

		if len(ranges) == 0 {
			continue
		}
		if existing, ok := result[path]; ok {
			existing.Ranges = append(existing.Ranges, ranges...)
			continue
		}
		result[path] = &FileDiff{Path: path, Ranges: ranges}
	}

	return result, nil
}

// cleanPath removes the b/ prefix go-diff leaves on file names
func cleanPath(name string) string {
	if name == "" || name == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(name, "b/")
}
