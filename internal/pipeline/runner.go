package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"featgraph/internal/fault"
	"featgraph/internal/graph"
	"featgraph/internal/metrics"
	"featgraph/internal/resolver"
)

// Sink receives each successfully built graph.
type Sink func(ctx context.Context, u *resolver.Unit, g *graph.Graph) error

// Runner builds units one at a time and is the single place where unit
// failures are caught. Without AbortOnError a failed unit is logged,
// counted and skipped.
type Runner struct {
	Builder      *Builder
	Sink         Sink
	AbortOnError bool
	Logger       *slog.Logger
}

// Failure records one unit that could not be built or written.
type Failure struct {
	Unit string
	Err  error
}

// Summary reports the outcome of a run.
type Summary struct {
	Built    int
	Failures []Failure
}

func (s *Summary) Failed() int {
	return len(s.Failures)
}

// Run builds every unit in order. The returned error is non-nil only when
// the context is cancelled or AbortOnError stops the run. A unit
// interrupted by cancellation is neither counted nor logged as a failure.
func (r *Runner) Run(ctx context.Context, units []*resolver.Unit) (*Summary, error) {
	builder := r.Builder
	if builder == nil {
		builder = NewBuilder(WithLogger(r.Logger))
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	summary := &Summary{}
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		metrics.UnitsTotal.Inc()

		err := r.runOne(ctx, builder, u)
		if err == nil {
			summary.Built++
			continue
		}
		if interrupted(err) {
			return summary, err
		}

		kind := fault.KindOf(err)
		if kind == "" {
			kind = fault.KindHostIO
		}
		metrics.UnitsFailed.WithLabelValues(string(kind)).Inc()
		summary.Failures = append(summary.Failures, Failure{Unit: u.Path, Err: err})
		logger.Error("Feature extraction failed: "+u.Path,
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		if r.AbortOnError {
			return summary, fmt.Errorf("feature extraction failed for %s: %w", u.Path, err)
		}
	}
	return summary, nil
}

func (r *Runner) runOne(ctx context.Context, b *Builder, u *resolver.Unit) error {
	g, err := b.Build(ctx, u)
	if err != nil {
		return err
	}
	if r.Sink != nil {
		if err := r.Sink(ctx, u, g); err != nil {
			if fault.KindOf(err) != "" || interrupted(err) {
				return err
			}
			return fault.New(fault.KindHostIO, "write", err).WithUnit(u.Path)
		}
	}
	metrics.ObserveGraph(g)
	return nil
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
