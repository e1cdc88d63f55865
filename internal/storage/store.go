package storage

import (
	"context"

	"github.com/cespare/xxhash/v2"

	"featgraph/internal/graph"
	"featgraph/internal/ir"
)

// Store persists built feature graphs keyed by unit path.
type Store interface {
	// SaveGraph replaces the stored snapshot of rec's unit.
	SaveGraph(ctx context.Context, rec *ir.Record, fingerprint uint64) error

	// LoadGraph returns the stored snapshot for path, or ErrNotFound.
	LoadGraph(ctx context.Context, path string) (*ir.Record, error)

	// Fingerprint reports the source fingerprint recorded with the last
	// snapshot of path.
	Fingerprint(ctx context.Context, path string) (uint64, bool, error)

	// ListUnits lists every stored unit ordered by path.
	ListUnits(ctx context.Context) ([]UnitSummary, error)

	// EdgeKindCounts totals stored edges per kind across all units.
	EdgeKindCounts(ctx context.Context) (map[graph.EdgeKind]int, error)

	DeleteUnit(ctx context.Context, path string) error
	Close() error
}

// UnitSummary describes one stored unit.
type UnitSummary struct {
	Path        string
	Fingerprint uint64
	Nodes       int
	Edges       int
}

// HashSource fingerprints a unit's source text.
func HashSource(src []byte) uint64 {
	return xxhash.Sum64(src)
}
