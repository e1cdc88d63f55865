package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"featgraph/internal/fault"
	"featgraph/internal/graph"
	"featgraph/internal/ir"
)

// ErrNotFound is returned when no snapshot exists for a unit.
var ErrNotFound = errors.New("unit not found")

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fault.New(fault.KindHostIO, "open store", err).WithUnit(path)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fault.New(fault.KindHostIO, "open store", err).WithUnit(path)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fault.New(fault.KindHostIO, "init schema", err).WithUnit(path)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS units (
			path TEXT PRIMARY KEY,
			fingerprint INTEGER NOT NULL,
			version TEXT,
			root_id INTEGER,
			first_token_id INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			unit TEXT NOT NULL REFERENCES units(path) ON DELETE CASCADE,
			id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			contents TEXT,
			start_offset INTEGER,
			end_offset INTEGER,
			start_line INTEGER,
			end_line INTEGER,
			PRIMARY KEY (unit, id)
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			unit TEXT NOT NULL REFERENCES units(path) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			source INTEGER NOT NULL,
			dest INTEGER NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (unit, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_kind ON edges(kind);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveGraph(ctx context.Context, rec *ir.Record, fingerprint uint64) error {
	if err := s.saveGraph(ctx, rec, fingerprint); err != nil {
		return fault.New(fault.KindHostIO, "save graph", err).WithUnit(rec.SourceFile)
	}
	return nil
}

func (s *SQLiteStore) saveGraph(ctx context.Context, rec *ir.Record, fingerprint uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Replace the unit's previous snapshot wholesale.
	if _, err := tx.ExecContext(ctx, "DELETE FROM units WHERE path = ?", rec.SourceFile); err != nil {
		return fmt.Errorf("failed to clear unit: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO units (path, fingerprint, version, root_id, first_token_id)
		VALUES (?, ?, ?, ?, ?)
	`, rec.SourceFile, int64(fingerprint), rec.Version, rec.Root, rec.FirstToken); err != nil {
		return fmt.Errorf("failed to insert unit: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (unit, id, kind, contents, start_offset, end_offset, start_line, end_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	for _, n := range rec.Nodes {
		if _, err := nodeStmt.ExecContext(ctx, rec.SourceFile, n.ID, n.Kind.String(), n.Contents, n.Start, n.End, n.StartLine, n.EndLine); err != nil {
			return fmt.Errorf("failed to insert node %d: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (unit, seq, source, dest, kind) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for i, e := range rec.Edges {
		if _, err := edgeStmt.ExecContext(ctx, rec.SourceFile, i, e.Source, e.Dest, e.Kind.String()); err != nil {
			return fmt.Errorf("failed to insert edge %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadGraph(ctx context.Context, path string) (*ir.Record, error) {
	rec := &ir.Record{SourceFile: path}
	row := s.db.QueryRowContext(ctx, "SELECT version, root_id, first_token_id FROM units WHERE path = ?", path)
	if err := row.Scan(&rec.Version, &rec.Root, &rec.FirstToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fault.New(fault.KindHostIO, "load graph", err).WithUnit(path)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, contents, start_offset, end_offset, start_line, end_line
		FROM nodes WHERE unit = ? ORDER BY id
	`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n ir.Node
		var kind string
		if err := rows.Scan(&n.ID, &kind, &n.Contents, &n.Start, &n.End, &n.StartLine, &n.EndLine); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		if n.Kind, err = graph.ParseNodeKind(kind); err != nil {
			return nil, err
		}
		rec.Nodes = append(rec.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx, "SELECT source, dest, kind FROM edges WHERE unit = ? ORDER BY seq", path)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e ir.Edge
		var kind string
		if err := edgeRows.Scan(&e.Source, &e.Dest, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		if e.Kind, err = graph.ParseEdgeKind(kind); err != nil {
			return nil, err
		}
		rec.Edges = append(rec.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edges: %w", err)
	}

	return rec, nil
}

func (s *SQLiteStore) Fingerprint(ctx context.Context, path string) (uint64, bool, error) {
	var fp int64
	err := s.db.QueryRowContext(ctx, "SELECT fingerprint FROM units WHERE path = ?", path).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fault.New(fault.KindHostIO, "read fingerprint", err).WithUnit(path)
	}
	return uint64(fp), true, nil
}

func (s *SQLiteStore) ListUnits(ctx context.Context) ([]UnitSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.path, u.fingerprint,
			(SELECT COUNT(*) FROM nodes n WHERE n.unit = u.path),
			(SELECT COUNT(*) FROM edges e WHERE e.unit = u.path)
		FROM units u ORDER BY u.path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var out []UnitSummary
	for rows.Next() {
		var u UnitSummary
		var fp int64
		if err := rows.Scan(&u.Path, &fp, &u.Nodes, &u.Edges); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		u.Fingerprint = uint64(fp)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) EdgeKindCounts(ctx context.Context) (map[graph.EdgeKind]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM edges GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to count edges: %w", err)
	}
	defer rows.Close()

	out := make(map[graph.EdgeKind]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan edge count: %w", err)
		}
		kind, err := graph.ParseEdgeKind(name)
		if err != nil {
			return nil, err
		}
		out[kind] = count
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteUnit(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM units WHERE path = ?", path); err != nil {
		return fault.New(fault.KindHostIO, "delete unit", err).WithUnit(path)
	}
	return nil
}
