package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zheng/tsel/internal/diff"
	"github.com/zheng/tsel/internal/graph"
)

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insertDecl stores a declaration; a declaration with the same ID is replaced
func insertDecl(x execer, d graph.Decl) error {
	_, err := x.Exec(
		`INSERT OR REPLACE INTO decls (id, package, file, start_line, end_line, signature)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Package, d.File, d.Range.Start, d.Range.End, d.Signature,
	)
	return err
}

// insertEdge stores a call edge. Inserting the same pair twice is a no-op.
func insertEdge(x execer, e graph.CallEdge) error {
	_, err := x.Exec(
		`INSERT OR IGNORE INTO edges (caller, callee, call_site_file, call_site_line)
		 VALUES (?, ?, ?, ?)`,
		e.Caller, e.Callee, e.CallSiteFile, e.CallSiteLine,
	)
	return err
}

// ReplaceSnapshot atomically replaces all declarations and edges with snap
func (db *DB) ReplaceSnapshot(snap *graph.Snapshot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM edges; DELETE FROM decls;"); err != nil {
		return err
	}
	for _, d := range snap.Decls {
		if err := insertDecl(tx, d); err != nil {
			return fmt.Errorf("failed to insert decl %s: %w", d.ID, err)
		}
	}
	for _, e := range snap.Edges {
		if err := insertEdge(tx, e); err != nil {
			return fmt.Errorf("failed to insert edge %s -> %s: %w", e.Caller, e.Callee, err)
		}
	}
	return tx.Commit()
}

// LoadSnapshot reads every declaration and edge back into memory
func (db *DB) LoadSnapshot() (*graph.Snapshot, error) {
	decls, err := db.GetAllDecls()
	if err != nil {
		return nil, err
	}
	edges, err := db.GetAllEdges()
	if err != nil {
		return nil, err
	}

	snap := graph.NewSnapshot()
	for _, d := range decls {
		_ = snap.AddDecl(d)
	}
	for _, e := range edges {
		_ = snap.AddEdge(e)
	}
	return snap, nil
}

// GetAllDecls returns all declarations ordered by ID
func (db *DB) GetAllDecls() ([]graph.Decl, error) {
	rows, err := db.conn.Query(
		`SELECT id, package, file, start_line, end_line, signature FROM decls ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDecls(rows)
}

// GetAllEdges returns all edges ordered by caller and callee
func (db *DB) GetAllEdges() ([]graph.CallEdge, error) {
	rows, err := db.conn.Query(
		`SELECT caller, callee, call_site_file, call_site_line FROM edges ORDER BY caller, callee`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []graph.CallEdge
	for rows.Next() {
		var e graph.CallEdge
		var callSiteFile sql.NullString
		var callSiteLine sql.NullInt64
		if err := rows.Scan(&e.Caller, &e.Callee, &callSiteFile, &callSiteLine); err != nil {
			return nil, err
		}
		if callSiteFile.Valid {
			e.CallSiteFile = callSiteFile.String
		}
		if callSiteLine.Valid {
			e.CallSiteLine = int(callSiteLine.Int64)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// FindDeclsByPattern returns declarations whose ID contains pattern.
// Results are sorted by match quality: exact short name match > ends with pattern > contains pattern
func (db *DB) FindDeclsByPattern(pattern string) ([]graph.Decl, error) {
	rows, err := db.conn.Query(
		`SELECT id, package, file, start_line, end_line, signature FROM decls
		 WHERE id LIKE ?
		 ORDER BY
			CASE
				WHEN id LIKE '%.' || ? OR id LIKE '%).' || ? THEN 0
				WHEN id LIKE '%' || ? THEN 1
				ELSE 2
			END,
			length(id) ASC`,
		"%"+pattern+"%", pattern, pattern, pattern,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDecls(rows)
}

// GetDirectCallers returns the IDs of functions that directly call id
func (db *DB) GetDirectCallers(id string) ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT caller FROM edges WHERE callee = ? ORDER BY caller`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// GetUpstreamCallers returns every transitive caller of id.
// If maxDepth is 0, there is no depth limit.
func (db *DB) GetUpstreamCallers(id string, maxDepth int) ([]string, error) {
	var query string
	var args []any

	if maxDepth == 0 {
		// UNION on the id alone terminates on cycles
		query = `
		WITH RECURSIVE callers(id) AS (
			SELECT caller FROM edges WHERE callee = ?
			UNION
			SELECT e.caller FROM edges e JOIN callers c ON e.callee = c.id
		)
		SELECT id FROM callers ORDER BY id`
		args = []any{id}
	} else {
		query = `
		WITH RECURSIVE callers(id, depth) AS (
			SELECT caller, 1 FROM edges WHERE callee = ?
			UNION
			SELECT e.caller, c.depth + 1
			FROM edges e
			JOIN callers c ON e.callee = c.id
			WHERE c.depth < ?
		)
		SELECT DISTINCT id FROM callers ORDER BY id`
		args = []any{id, maxDepth}
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// Stats summarizes the stored graph
type Stats struct {
	Decls    int `json:"decls"`
	Edges    int `json:"edges"`
	Files    int `json:"files"`
	Packages int `json:"packages"`
}

// GetStats counts the stored declarations, edges, files and packages
func (db *DB) GetStats() (Stats, error) {
	var s Stats
	err := db.conn.QueryRow(
		`SELECT
			(SELECT COUNT(*) FROM decls),
			(SELECT COUNT(*) FROM edges),
			(SELECT COUNT(DISTINCT file) FROM decls),
			(SELECT COUNT(DISTINCT package) FROM decls)`,
	).Scan(&s.Decls, &s.Edges, &s.Files, &s.Packages)
	return s, err
}

// Run is one recorded analysis
type Run struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	Module    string    `json:"module,omitempty"`
	Decls     int       `json:"decls"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordRun logs an analysis of root and returns its run ID
func (db *DB) RecordRun(root, module string, stats Stats) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, root, module, decls, edges, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, root, module, stats.Decls, stats.Edges, time.Now().Unix(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// LastRun returns the most recent run, or nil if nothing was analyzed yet
func (db *DB) LastRun() (*Run, error) {
	var r Run
	var module sql.NullString
	var created int64
	err := db.conn.QueryRow(
		`SELECT id, root, module, decls, edges, created_at FROM runs
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&r.ID, &r.Root, &module, &r.Decls, &r.Edges, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Module = module.String
	r.CreatedAt = time.Unix(created, 0)
	return &r, nil
}

func scanDecls(rows *sql.Rows) ([]graph.Decl, error) {
	var decls []graph.Decl
	for rows.Next() {
		var d graph.Decl
		var start, end int
		var signature sql.NullString
		if err := rows.Scan(&d.ID, &d.Package, &d.File, &start, &end, &signature); err != nil {
			return nil, err
		}
		r, err := diff.NewLineRange(start, end)
		if err != nil {
			return nil, fmt.Errorf("decl %s: %w", d.ID, err)
		}
		d.Range = r
		if signature.Valid {
			d.Signature = signature.String
		}
		decls = append(decls, d)
	}
	return decls, rows.Err()
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
