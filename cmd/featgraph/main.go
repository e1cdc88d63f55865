package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"featgraph/internal/config"
	"featgraph/internal/index"
	"featgraph/internal/ir"
	"featgraph/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:           "featgraph",
		Short:         "Build feature graphs from Go source",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}
	configPath string
	dbPath     string

	cfg *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "featgraph.yaml", "Path to the YAML or TOML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the graph database (SQLite); overrides storage.db")

	extractCmd.Flags().String("since", "", "Only extract files changed since this git ref")
	extractCmd.Flags().Bool("abort-on-error", false, "Stop at the first unit that fails")
	extractCmd.Flags().StringP("out", "o", "", "Output directory; overrides output.dir")
	extractCmd.Flags().StringSlice("format", nil, "Output formats (pb, json, dot, mermaid); overrides output.formats")
	extractCmd.Flags().Bool("no-db", false, "Do not persist graphs or skip unchanged units")

	renderCmd.Flags().StringP("format", "f", config.FormatDOT, "Render format (dot, mermaid, json)")
	renderCmd.Flags().Bool("from-db", false, "Treat the argument as a unit path stored in the database")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statsCmd)
}

// setup loads the configuration and installs the default logger.
func setup() error {
	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.DB = dbPath
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// initStore opens the SQLite store, creating its directory.
func initStore() (*storage.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Storage.DB); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return storage.NewSQLiteStore(cfg.Storage.DB)
}

var extractCmd = &cobra.Command{
	Use:   "extract [root]",
	Short: "Extract feature graphs for every selected unit under root",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cfg.Project.Root = args[0]
		}
		flags := cmd.Flags()
		if flags.Changed("abort-on-error") {
			cfg.Build.AbortOnError, _ = flags.GetBool("abort-on-error")
		}
		if out, _ := flags.GetString("out"); out != "" {
			cfg.Output.Dir = out
		}
		if formats, _ := flags.GetStringSlice("format"); len(formats) > 0 {
			cfg.Output.Formats = formats
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		var store storage.Store
		if noDB, _ := flags.GetBool("no-db"); !noDB {
			s, err := initStore()
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer s.Close()
			store = s
		}

		since, _ := flags.GetString("since")
		report, err := index.NewIndexer(cfg, store, slog.Default()).Run(cmd.Context(), since)
		if report != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "selected %d, unchanged %d, built %d, failed %d\n",
				report.Selected, report.Unchanged, report.Built, report.Failed())
		}
		return err
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <file.pb|file.json|unit>",
	Short: "Render a stored feature graph as DOT, Mermaid or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		fromDB, _ := cmd.Flags().GetBool("from-db")

		var rec *ir.Record
		var err error
		if fromDB {
			store, serr := initStore()
			if serr != nil {
				return fmt.Errorf("failed to initialize database: %w", serr)
			}
			defer store.Close()
			rec, err = store.LoadGraph(cmd.Context(), filepath.ToSlash(args[0]))
		} else {
			rec, err = ir.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		return index.Render(cmd.OutOrStdout(), rec, format)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the units stored in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := initStore()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		units, err := store.ListUnits(ctx)
		if err != nil {
			return err
		}
		counts, err := store.EdgeKindCounts(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "UNIT\tNODES\tEDGES\tFINGERPRINT")
		for _, u := range units {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%016x\n", u.Path, u.Nodes, u.Edges, u.Fingerprint)
		}
		fmt.Fprintln(tw)

		kinds := make([]string, 0, len(counts))
		byName := make(map[string]int, len(counts))
		for k, n := range counts {
			kinds = append(kinds, k.String())
			byName[k.String()] = n
		}
		sort.Strings(kinds)
		fmt.Fprintln(tw, "EDGE KIND\tCOUNT")
		for _, k := range kinds {
			fmt.Fprintf(tw, "%s\t%d\n", strings.ToLower(k), byName[k])
		}
		return tw.Flush()
	},
}
