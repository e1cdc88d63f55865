package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"featgraph/internal/config"
	"featgraph/internal/crawler"
	"featgraph/internal/generator"
	"featgraph/internal/git"
	"featgraph/internal/graph"
	"featgraph/internal/ir"
	"featgraph/internal/metrics"
	"featgraph/internal/pipeline"
	"featgraph/internal/resolver"
	"featgraph/internal/storage"
)

// writer renders a record in one output format.
type writer struct {
	ext   string
	write func(io.Writer, *ir.Record) error
}

var writers = map[string]writer{
	config.FormatPB:      {".pb", ir.WriteBinary},
	config.FormatJSON:    {".json", ir.WriteJSON},
	config.FormatDOT:     {".dot", generator.WriteDOT},
	config.FormatMermaid: {".mmd", generator.WriteMermaid},
}

// Render writes rec to w in the named format.
func Render(w io.Writer, rec *ir.Record, format string) error {
	wr, ok := writers[format]
	if !ok {
		return fmt.Errorf("unknown output format %q", format)
	}
	return wr.write(w, rec)
}

// Indexer orchestrates one extraction run over a project: file
// selection, front-end loading, graph building and output.
type Indexer struct {
	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger
}

// NewIndexer creates a new indexer. store may be nil, in which case
// nothing is persisted and no unit is skipped as unchanged.
func NewIndexer(cfg *config.Config, store storage.Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{cfg: cfg, store: store, logger: logger}
}

// Report summarizes a run.
type Report struct {
	Selected  int
	Unchanged int
	pipeline.Summary
}

// Run extracts every selected unit under the configured root. When since
// is set, only files changed relative to that git ref are considered.
func (i *Indexer) Run(ctx context.Context, since string) (*Report, error) {
	root, err := filepath.Abs(i.cfg.Project.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	// The loader and git both report symlink-free paths.
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}

	files, err := i.selectFiles(ctx, root, since)
	if err != nil {
		return nil, err
	}
	report := &Report{Selected: len(files)}

	only := make(map[string]bool, len(files))
	fingerprints := make(map[string]uint64, len(files))
	for _, rel := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		src, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", rel, err)
		}
		fp := storage.HashSource(src)
		if i.unchanged(ctx, rel, fp) {
			report.Unchanged++
			continue
		}
		only[abs] = true
		fingerprints[abs] = fp
	}
	i.logger.Info("Selected units",
		slog.Int("selected", report.Selected),
		slog.Int("unchanged", report.Unchanged),
	)
	if len(only) == 0 {
		return report, i.writeMetrics()
	}

	units, err := resolver.Load(ctx, root, only, "./...")
	if err != nil {
		return nil, err
	}

	runner := &pipeline.Runner{
		Builder:      pipeline.NewBuilder(pipeline.WithLogger(i.logger)),
		AbortOnError: i.cfg.Build.AbortOnError,
		Logger:       i.logger,
		Sink: func(ctx context.Context, u *resolver.Unit, g *graph.Graph) error {
			fp, ok := fingerprints[u.Path]
			if !ok {
				fp = storage.HashSource(u.Src)
			}
			return i.emit(ctx, root, u.Path, g, fp)
		},
	}
	summary, runErr := runner.Run(ctx, units)
	if summary != nil {
		report.Summary = *summary
	}
	if err := i.writeMetrics(); err != nil && runErr == nil {
		runErr = err
	}
	return report, runErr
}

func (i *Indexer) selectFiles(ctx context.Context, root, since string) ([]string, error) {
	c, err := crawler.NewCrawler(i.cfg.Project.Include, i.cfg.Project.Exclude)
	if err != nil {
		return nil, err
	}
	files, err := c.ScanProject(root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if since == "" {
		return files, nil
	}

	changes, err := git.ChangedFiles(ctx, root, since)
	if err != nil {
		return nil, err
	}
	top, err := git.TopLevel(ctx, root)
	if err != nil {
		return nil, err
	}
	changed := make(map[string]bool, len(changes))
	for _, ch := range changes {
		changed[filepath.Join(top, filepath.FromSlash(ch.Path))] = true
	}

	var out []string
	for _, rel := range files {
		if changed[filepath.Join(root, filepath.FromSlash(rel))] {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (i *Indexer) unchanged(ctx context.Context, rel string, fp uint64) bool {
	if i.store == nil || !i.cfg.Build.SkipUnchanged {
		return false
	}
	prev, ok, err := i.store.Fingerprint(ctx, rel)
	if err != nil {
		i.logger.Warn("Fingerprint lookup failed", slog.String("unit", rel), slog.String("error", err.Error()))
		return false
	}
	return ok && prev == fp
}

// emit writes every configured format and then persists the snapshot,
// so a stored fingerprint always has its outputs on disk.
func (i *Indexer) emit(ctx context.Context, root, path string, g *graph.Graph, fp uint64) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rec := ir.FromGraph(g)
	rec.SourceFile = filepath.ToSlash(rel)

	for _, format := range i.cfg.Output.Formats {
		wr, ok := writers[format]
		if !ok {
			return fmt.Errorf("unknown output format %q", format)
		}
		out := ir.Path(i.cfg.Output.Dir, rec.SourceFile, wr.ext)
		if err := ir.WriteFile(out, func(w io.Writer) error { return wr.write(w, rec) }); err != nil {
			return err
		}
	}
	if i.store != nil {
		if err := i.store.SaveGraph(ctx, rec, fp); err != nil {
			return err
		}
	}
	i.logger.Debug("Wrote unit",
		slog.String("unit", rec.SourceFile),
		slog.Int("nodes", len(rec.Nodes)),
		slog.Int("edges", len(rec.Edges)),
	)
	return nil
}

func (i *Indexer) writeMetrics() error {
	if i.cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(i.cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
