package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"featgraph/internal/analysis"
	"featgraph/internal/extractor"
	"featgraph/internal/fault"
	"featgraph/internal/finalize"
	"featgraph/internal/graph"
	"featgraph/internal/linker"
	"featgraph/internal/metrics"
	"featgraph/internal/resolver"
	"featgraph/internal/semantic"
	"featgraph/internal/syntactic"
)

var tracer = otel.Tracer("featgraph/pipeline")

// BuilderOptions configures Builder behavior.
type BuilderOptions struct {
	// Logger receives per-pass debug output. Default: slog.Default()
	Logger *slog.Logger
}

// BuilderOption is a functional option for configuring Builder.
type BuilderOption func(*BuilderOptions)

// WithLogger sets the builder's logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(o *BuilderOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Builder turns one resolved unit into a checked feature graph.
//
// Passes run in a fixed order over a graph owned by a single Build call:
//
//  1. AST and token import
//  2. token linking and pruning
//  3. symbols, types and assignability
//  4. dataflow
//  5. syntactic scanners
//  6. comment association and the final check
type Builder struct {
	options BuilderOptions
}

func NewBuilder(opts ...BuilderOption) *Builder {
	options := BuilderOptions{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	return &Builder{options: options}
}

type pass struct {
	name string
	run  func() error
}

// Build runs every pass over u. A panic inside a pass is reported as a
// StructuralViolation; no partial graph is returned on error.
func (b *Builder) Build(ctx context.Context, u *resolver.Unit) (g *graph.Graph, err error) {
	ctx, span := tracer.Start(ctx, "Builder.Build",
		trace.WithAttributes(attribute.String("unit", u.Path)),
	)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = fault.Newf(fault.KindStructuralViolation, "build", "panic: %v", r).WithUnit(u.Path)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if u.Err != nil {
		if fault.KindOf(u.Err) != "" {
			return nil, u.Err
		}
		return nil, fault.New(fault.KindFrontEnd, "load", u.Err).WithUnit(u.Path)
	}

	g = graph.NewGraph(u.Path, u.TokFile)
	var types *semantic.TypeTable
	passes := []pass{
		{"AddAST", func() error { return extractor.AddAST(g, u) }},
		{"AddTokens", func() error { extractor.AddTokens(g, u); return nil }},
		{"LinkTokens", func() error { linker.LinkTokens(g, linker.VariableDecls(g, u.File)); return nil }},
		{"Prune", func() error { linker.Prune(g); return nil }},
		{"AddSymbols", func() error { semantic.AddSymbols(g, u); return nil }},
		{"AddTypes", func() error { types = semantic.AddTypes(g, u); return nil }},
		{"AddAssignability", func() error { semantic.AddAssignability(g, types); return nil }},
		{"AddDataflow", func() error {
			_, err := analysis.AddDataflow(g, u, b.options.Logger)
			return err
		}},
	}
	for _, s := range syntactic.Scanners() {
		passes = append(passes, pass{s.Name, func() error { s.Run(g, u); return nil }})
	}
	passes = append(passes,
		pass{"AssociateComments", func() error { finalize.AssociateComments(g); return nil }},
		pass{"Check", func() error { return finalize.Check(g, u) }},
	)

	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.runPass(ctx, u, g, p); err != nil {
			return nil, err
		}
	}
	span.SetAttributes(attribute.Int("nodes", g.NodeCount()))
	return g, nil
}

func (b *Builder) runPass(ctx context.Context, u *resolver.Unit, g *graph.Graph, p pass) error {
	_, span := tracer.Start(ctx, "Builder."+p.name,
		trace.WithAttributes(attribute.String("unit", u.Path)),
	)
	defer span.End()

	start := time.Now()
	err := p.run()
	metrics.PassDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("nodes", g.NodeCount()))
	if err != nil {
		span.RecordError(err)
		return err
	}

	b.options.Logger.Debug("pass complete",
		slog.String("unit", u.Path),
		slog.String("pass", p.name),
		slog.Int("nodes", g.NodeCount()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}
