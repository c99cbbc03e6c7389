package diff

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRange is returned when a line range violates start >= 1 && end >= start
var ErrInvalidRange = errors.New("invalid line range")

// LineRange is a closed interval of 1-indexed line numbers in the new file version
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewLineRange validates and creates a LineRange.
// Ranges are never clamped: a bad range usually means a parser bug upstream.
func NewLineRange(start, end int) (LineRange, error) {
	if start < 1 {
		return LineRange{}, fmt.Errorf("%w: start must be >= 1, got %d", ErrInvalidRange, start)
	}
	if end < start {
		return LineRange{}, fmt.Errorf("%w: end must be >= start, got %d < %d", ErrInvalidRange, end, start)
	}
	return LineRange{Start: start, End: end}, nil
}

// Overlaps reports whether the two ranges share at least one line.
// Touching ranges ([1,4] and [4,9]) overlap.
func (r LineRange) Overlaps(other LineRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

func (r LineRange) String() string {
	return fmt.Sprintf("L%d-%d", r.Start, r.End)
}

// FileDiff holds the added/modified line ranges of one file.
// Pure deletions never show up here.
type FileDiff struct {
	Path   string      `json:"path"`   // repository-relative, as written after "b/"
	Ranges []LineRange `json:"ranges"` // in hunk order
}

// Overlaps reports whether any changed range overlaps r
func (f *FileDiff) Overlaps(r LineRange) bool {
	for _, changed := range f.Ranges {
		if changed.Overlaps(r) {
			return true
		}
	}
	return false
}

// HasExtension reports whether the path ends with one of the given extensions
func (f *FileDiff) HasExtension(extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(f.Path, ext) {
			return true
		}
	}
	return false
}
