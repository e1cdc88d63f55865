package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featgraph/internal/fault"
	"featgraph/internal/graph"
	"featgraph/internal/ir"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(path string, tokens ...string) *ir.Record {
	rec := &ir.Record{Version: ir.Version, SourceFile: path, Root: 0, FirstToken: -1}
	rec.Nodes = append(rec.Nodes, ir.Node{ID: 0, Kind: graph.KindASTElement, Contents: "File", Start: 0, End: 40, StartLine: 1, EndLine: 3})
	for i, tok := range tokens {
		id := i + 1
		rec.Nodes = append(rec.Nodes, ir.Node{ID: id, Kind: graph.KindIdentifierToken, Contents: tok, Start: -1, End: -1, StartLine: -1, EndLine: -1})
		rec.Edges = append(rec.Edges, ir.Edge{Source: 0, Dest: id, Kind: graph.EdgeAssociatedToken})
		if i > 0 {
			rec.Edges = append(rec.Edges, ir.Edge{Source: id - 1, Dest: id, Kind: graph.EdgeNextToken})
		}
	}
	if len(tokens) > 0 {
		rec.FirstToken = 1
	}
	return rec
}

func TestSQLiteStore_SaveGraph_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	rec := testRecord("a.go", "x", "y")
	require.NoError(t, store.SaveGraph(ctx, rec, HashSource([]byte("package a"))))

	loaded, err := store.LoadGraph(ctx, "a.go")
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)

	fp, ok, err := store.Fingerprint(ctx, "a.go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, HashSource([]byte("package a")), fp)
}

func TestSQLiteStore_SaveGraph_ReplacesSnapshot(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, testRecord("a.go", "x", "y", "z"), 1))
	require.NoError(t, store.SaveGraph(ctx, testRecord("a.go", "w"), 2))
	require.NoError(t, store.SaveGraph(ctx, testRecord("b.go"), 3))

	loaded, err := store.LoadGraph(ctx, "a.go")
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 2)
	assert.Len(t, loaded.Edges, 1)

	units, err := store.ListUnits(ctx)
	require.NoError(t, err)
	assert.Equal(t, []UnitSummary{
		{Path: "a.go", Fingerprint: 2, Nodes: 2, Edges: 1},
		{Path: "b.go", Fingerprint: 3, Nodes: 1, Edges: 0},
	}, units)

	counts, err := store.EdgeKindCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[graph.EdgeKind]int{graph.EdgeAssociatedToken: 1}, counts)
}

func TestSQLiteStore_LargeFingerprint(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	const fp = uint64(1<<63 + 12345)
	require.NoError(t, store.SaveGraph(ctx, testRecord("a.go"), fp))
	got, ok, err := store.Fingerprint(ctx, "a.go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fp, got)
}

func TestSQLiteStore_Missing(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.LoadGraph(ctx, "nope.go")
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok, err := store.Fingerprint(ctx, "nope.go")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_DeleteUnit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, testRecord("a.go", "x"), 1))
	require.NoError(t, store.DeleteUnit(ctx, "a.go"))

	units, err := store.ListUnits(ctx)
	require.NoError(t, err)
	assert.Empty(t, units)

	counts, err := store.EdgeKindCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts, "edges cascade with their unit")
}

func TestNewSQLiteStore_BadPath(t *testing.T) {
	_, err := NewSQLiteStore(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	require.Error(t, err)
	assert.Equal(t, fault.KindHostIO, fault.KindOf(err))
}
