// Package nodestore reads and updates stream nodes kept in a SQLite
// database. It is the node source and node sink for geodatabase-style
// workflows: derived sample fields are added as columns and filled in per
// node without disturbing anything else in the table.
package nodestore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"lcsample-core/transect"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL for a fresh node table. Using IF NOT EXISTS makes
// it safe to run on every open.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
    stream_id TEXT    NOT NULL,
    node_id   INTEGER NOT NULL,
    stream_km REAL    NOT NULL,
    x         REAL    NOT NULL,
    y         REAL    NOT NULL,
    PRIMARY KEY (stream_id, node_id)
);
`

// Store wraps the node database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the node database at path, enables WAL mode and a
// busy timeout, and ensures the base table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("nodestore: open database: %w", err)
	}

	// One connection: SQLite has a single writer, and pooled connections
	// would each need their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("nodestore: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("nodestore: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// InsertNodes bulk-inserts node records in one transaction. Used by loaders
// and tests to seed a node table.
func (s *Store) InsertNodes(ctx context.Context, ns []transect.Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("nodestore: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO nodes (stream_id, node_id, stream_km, x, y) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("nodestore: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range ns {
		if _, err := stmt.ExecContext(ctx, n.StreamID, n.NodeID, n.StreamKM, n.X, n.Y); err != nil {
			return fmt.Errorf("nodestore: insert node %s/%d: %w", n.StreamID, n.NodeID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("nodestore: commit: %w", err)
	}
	return nil
}

// columns returns the node table's current column names.
func (s *Store) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info('nodes')")
	if err != nil {
		return nil, fmt.Errorf("nodestore: table info: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("nodestore: scan column name: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// LoadNodes yields node records for sampling. When overwrite is off and the
// marker field's column already exists, only nodes where that field is NULL
// or zero are returned, supporting incremental reruns; otherwise every node
// is returned and the run behaves as a full overwrite. The marker is the
// schema's last field, since the first (emergent) field is often legitimately
// zero. The returned flag reports the effective overwrite mode.
func (s *Store) LoadNodes(ctx context.Context, markerField string, overwrite bool) ([]transect.Node, bool, error) {
	query := "SELECT stream_id, node_id, stream_km, x, y FROM nodes"
	if !overwrite {
		cols, err := s.columns(ctx)
		if err != nil {
			return nil, false, err
		}
		if cols[markerField] {
			query += fmt.Sprintf(" WHERE %s IS NULL OR %s = 0", quoteIdent(markerField), quoteIdent(markerField))
		} else {
			overwrite = true
		}
	} else {
		overwrite = true
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("nodestore: load nodes: %w", err)
	}
	defer rows.Close()

	var out []transect.Node
	for rows.Next() {
		var n transect.Node
		if err := rows.Scan(&n.StreamID, &n.NodeID, &n.StreamKM, &n.X, &n.Y); err != nil {
			return nil, false, fmt.Errorf("nodestore: scan node: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, overwrite, nil
}

// EnsureFields adds any missing derived-field columns as REAL. Existing
// columns and their data are left untouched; columns are never dropped.
func (s *Store) EnsureFields(ctx context.Context, fields []string) error {
	cols, err := s.columns(ctx)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if cols[f] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE nodes ADD COLUMN %s REAL", quoteIdent(f))); err != nil {
			return fmt.Errorf("nodestore: add column %s: %w", f, err)
		}
	}
	return nil
}

// UpdateFields writes one node's derived field values. Field names come from
// the schema generator and are treated as opaque identifiers.
func (s *Store) UpdateFields(ctx context.Context, streamID string, nodeID int, fields map[string]float64) error {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+2)
	for i, f := range names {
		sets[i] = quoteIdent(f) + " = ?"
		args = append(args, fields[f])
	}
	args = append(args, streamID, nodeID)

	q := fmt.Sprintf("UPDATE nodes SET %s WHERE stream_id = ? AND node_id = ?", strings.Join(sets, ", "))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("nodestore: update node %s/%d: %w", streamID, nodeID, err)
	}
	return nil
}

// FieldValue reads back one derived field, for verification and tests.
func (s *Store) FieldValue(ctx context.Context, streamID string, nodeID int, field string) (float64, error) {
	var v sql.NullFloat64
	q := fmt.Sprintf("SELECT %s FROM nodes WHERE stream_id = ? AND node_id = ?", quoteIdent(field))
	if err := s.db.QueryRowContext(ctx, q, streamID, nodeID).Scan(&v); err != nil {
		return 0, fmt.Errorf("nodestore: read %s for %s/%d: %w", field, streamID, nodeID, err)
	}
	if !v.Valid {
		return 0, fmt.Errorf("nodestore: %s is NULL for %s/%d", field, streamID, nodeID)
	}
	return v.Float64, nil
}

// quoteIdent wraps a generated identifier in double quotes. Field names come
// only from the schema generator but may contain lowercase role prefixes
// that collide with keywords when unquoted.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
