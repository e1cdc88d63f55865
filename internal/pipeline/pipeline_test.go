package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"featgraph/internal/fault"
	"featgraph/internal/graph"
	"featgraph/internal/metrics"
	"featgraph/internal/resolver"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func loadFixture(t *testing.T) *resolver.Unit {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("testdata", "inventory.go"))
	require.NoError(t, err)
	u, err := resolver.ParseSource("inventory.go", src)
	require.NoError(t, err)
	return u
}

func parse(t *testing.T, name, src string) *resolver.Unit {
	t.Helper()
	u, err := resolver.ParseSource(name, []byte(src))
	require.NoError(t, err)
	return u
}

// signature renders a graph as comparable node and edge listings.
func signature(g *graph.Graph) (nodes, edges []string) {
	for _, n := range g.Nodes() {
		nodes = append(nodes, fmt.Sprintf("%d %s %q %d:%d", n.ID, n.Kind, n.Contents, n.Span.Start, n.Span.End))
	}
	for _, e := range g.Edges() {
		edges = append(edges, fmt.Sprintf("%d -%s-> %d", e.Source.ID, e.Kind, e.Dest.ID))
	}
	slices.Sort(edges)
	return nodes, edges
}

func TestBuild_Fixture(t *testing.T) {
	g, err := NewBuilder().Build(context.Background(), loadFixture(t))
	require.NoError(t, err)
	require.NotNil(t, g)

	t.Run("Structural invariants", func(t *testing.T) {
		assert.NoError(t, graph.CheckTree(g))
		assert.NoError(t, graph.CheckTokenPath(g))
		assert.NoError(t, graph.CheckTokenAssociation(g))
	})

	t.Run("Every edge kind is emitted", func(t *testing.T) {
		counts := g.EdgeKindCounts()
		for _, kind := range graph.EdgeKinds() {
			assert.NotZero(t, counts[kind], "no %s edges", kind)
		}
	})

	t.Run("Every node kind but synthetic ones is present", func(t *testing.T) {
		counts := g.NodeKindCounts()
		for _, kind := range []graph.NodeKind{
			graph.KindASTElement, graph.KindFakeAST, graph.KindASTLeaf,
			graph.KindToken, graph.KindIdentifierToken,
			graph.KindCommentLine, graph.KindCommentBlock, graph.KindCommentDoc,
			graph.KindSymbol, graph.KindSymbolType, graph.KindSymbolVar, graph.KindSymbolMethod,
			graph.KindType,
		} {
			assert.NotZero(t, counts[kind], "no %s nodes", kind)
		}
	})
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder()
	first, err := b.Build(context.Background(), loadFixture(t))
	require.NoError(t, err)
	second, err := b.Build(context.Background(), loadFixture(t))
	require.NoError(t, err)

	n1, e1 := signature(first)
	n2, e2 := signature(second)
	assert.Equal(t, n1, n2)
	assert.Equal(t, e1, e2)
}

func TestBuild_Scenarios(t *testing.T) {
	src := `package p

func b(p int) {}

func f(a, y int) {
	x := 0
	x = 1
	y = x
	if x > y {
		x++
	} else {
		y++
	}
	b(a)
}
`
	g, err := NewBuilder().Build(context.Background(), parse(t, "p.go", src))
	require.NoError(t, err)

	pairs := func(kind graph.EdgeKind) []string {
		var out []string
		for _, e := range g.Edges(kind) {
			out = append(out, e.Source.Contents+"@"+fmt.Sprint(e.Source.Span.Start)+"->"+e.Dest.Contents)
		}
		return out
	}
	assert.Contains(t, pairs(graph.EdgeLastWrite), fmt.Sprintf("x@%d->x", strings.Index(src, "x = 1")))
	assert.Equal(t, []string{fmt.Sprintf("x@%d->BINARY_EXPR", strings.Index(src, "x++"))}, pairs(graph.EdgeGuardedBy))
	assert.Equal(t, []string{fmt.Sprintf("y@%d->BINARY_EXPR", strings.Index(src, "y++"))}, pairs(graph.EdgeGuardedByNegation))
	assert.Equal(t, []string{fmt.Sprintf("a@%d->p", strings.Index(src, "a)"))}, pairs(graph.EdgeFormalArgName))
}

func TestBuild_FrontEndError(t *testing.T) {
	u := &resolver.Unit{Path: "bad.go", Err: errors.New("could not import")}
	g, err := NewBuilder().Build(context.Background(), u)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, fault.ErrFrontEnd)
}

func TestBuild_RecoversPanics(t *testing.T) {
	u := &resolver.Unit{Path: "broken.go", Info: resolver.NewInfo()}
	g, err := NewBuilder().Build(context.Background(), u)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, fault.ErrStructuralViolation)
}

func TestRunner(t *testing.T) {
	good := parse(t, "good.go", "package p\n\nfunc f() int { return 1 }\n")
	other := parse(t, "other.go", "package p\n\nvar v = 2\n")
	bad := &resolver.Unit{Path: "bad.go", Err: errors.New("load failed")}

	t.Run("Failures are logged and skipped", func(t *testing.T) {
		var buf bytes.Buffer
		var written []string
		r := &Runner{
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
			Sink: func(_ context.Context, u *resolver.Unit, _ *graph.Graph) error {
				written = append(written, u.Path)
				return nil
			},
		}
		sum, err := r.Run(context.Background(), []*resolver.Unit{good, bad, other})
		require.NoError(t, err)
		assert.Equal(t, 2, sum.Built)
		require.Equal(t, 1, sum.Failed())
		assert.Equal(t, "bad.go", sum.Failures[0].Unit)
		assert.Equal(t, fault.KindFrontEnd, fault.KindOf(sum.Failures[0].Err))
		assert.Equal(t, []string{"good.go", "other.go"}, written)
		assert.Contains(t, buf.String(), "Feature extraction failed: bad.go")
	})

	t.Run("AbortOnError stops the run", func(t *testing.T) {
		r := &Runner{AbortOnError: true, Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
		sum, err := r.Run(context.Background(), []*resolver.Unit{good, bad, other})
		require.Error(t, err)
		assert.ErrorIs(t, err, fault.ErrFrontEnd)
		assert.Equal(t, 1, sum.Built)
	})

	t.Run("Sink failures are host errors", func(t *testing.T) {
		r := &Runner{
			Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
			Sink: func(context.Context, *resolver.Unit, *graph.Graph) error {
				return errors.New("disk full")
			},
		}
		sum, err := r.Run(context.Background(), []*resolver.Unit{good})
		require.NoError(t, err)
		require.Equal(t, 1, sum.Failed())
		assert.ErrorIs(t, sum.Failures[0].Err, fault.ErrHostIO)
	})

	t.Run("Cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sum, err := (&Runner{}).Run(ctx, []*resolver.Unit{good})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, sum.Built)
	})

	t.Run("Interrupted units are not failures", func(t *testing.T) {
		hostIO := metrics.UnitsFailed.WithLabelValues(string(fault.KindHostIO))
		before := testutil.ToFloat64(hostIO)

		var buf bytes.Buffer
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		r := &Runner{
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
			Sink: func(ctx context.Context, _ *resolver.Unit, _ *graph.Graph) error {
				cancel()
				return ctx.Err()
			},
		}
		sum, err := r.Run(ctx, []*resolver.Unit{good, other})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, sum.Built)
		assert.Zero(t, sum.Failed())
		assert.NotContains(t, buf.String(), "Feature extraction failed")
		assert.Equal(t, before, testutil.ToFloat64(hostIO))
	})

	t.Run("Sink deadlines stop the run", func(t *testing.T) {
		hostIO := metrics.UnitsFailed.WithLabelValues(string(fault.KindHostIO))
		before := testutil.ToFloat64(hostIO)

		r := &Runner{
			Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
			Sink: func(context.Context, *resolver.Unit, *graph.Graph) error {
				return fmt.Errorf("flush: %w", context.DeadlineExceeded)
			},
		}
		sum, err := r.Run(context.Background(), []*resolver.Unit{good, other})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, fault.ErrHostIO)
		assert.Zero(t, sum.Failed())
		assert.Equal(t, before, testutil.ToFloat64(hostIO))
	})
}
