// Package changes maps changed line ranges onto declared functions.
package changes

import (
	"log/slog"

	"github.com/zheng/tsel/internal/diff"
	"github.com/zheng/tsel/internal/graph"
)

// Collect returns the IDs of declared functions whose line span overlaps at
// least one changed range of their file.
//
// File paths are matched exactly against the diff keys; normalizing them
// (relative vs absolute, case, symlinks) is the caller's job. A declaration
// whose file is not in the diff is unchanged.
func Collect(fileDiffs map[string]*diff.FileDiff, decls []graph.Decl) graph.Set {
	changed := graph.NewSet()
	if len(fileDiffs) == 0 {
		return changed
	}

	for _, d := range decls {
		fd, ok := fileDiffs[d.File]
		if !ok {
			continue
		}
		if fd.Overlaps(d.Range) {
			changed.Add(d.ID)
			slog.Debug("changed function", "id", d.ID, "file", d.File, "range", d.Range.String())
		}
	}

	return changed
}
