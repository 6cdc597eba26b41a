package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"genexplorer/adapters/excel"
	"genexplorer/app"
	"genexplorer/domain/table"
	"genexplorer/internal"
	"genexplorer/internal/cache"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// globalFlags select the source tables for every command
type globalFlags struct {
	muPath   string
	phiPath  string
	logLevel string
	output   string
	asJSON   bool
}

func main() {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	defaults := excel.DefaultSourceConfig()

	rootCmd := &cobra.Command{
		Use:           "genexplorer",
		Short:         "Filter, plot and export gene (mu) and sgRNA (phi) screen tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.muPath, "mu", envOr("MU_TABLE_PATH", defaults.MuPath), "Gene table (CSV or XLSX)")
	rootCmd.PersistentFlags().StringVar(&flags.phiPath, "phi", envOr("PHI_TABLE_PATH", defaults.PhiPath), "sgRNA table (CSV or XLSX)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", envOr("LOG_LEVEL", "WARN"), "Log level (ERROR, WARN, INFO, DEBUG)")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "text", "Output format (text, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "Shorthand for --output json")

	rootCmd.AddCommand(
		newGenesCmd(flags),
		newGroupsCmd(flags),
		newSizesCmd(flags),
		newFilterCmd(flags),
		newPlotCmd(flags),
		newExportCmd(flags),
		newDiagnoseCmd(flags),
		newPrepareCmd(flags),
		newGenerateCmd(flags),
	)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (f *globalFlags) logger() *internal.Logger {
	return internal.NewLogger(internal.ParseLogLevel(f.logLevel))
}

// explorer builds a service over the configured table files
func (f *globalFlags) explorer() *app.ExplorerService {
	logger := f.logger()
	store := excel.NewStore(excel.SourceConfig{MuPath: f.muPath, PhiPath: f.phiPath}, logger)
	return app.NewExplorerService(store,
		app.WithHeaderCache(cache.NewHeaderCache(nil, logger)),
		app.WithLogger(logger),
	)
}

func (f *globalFlags) print(w io.Writer, v interface{}, text func(io.Writer)) error {
	format := strings.ToLower(f.output)
	if f.asJSON {
		format = "json"
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f.output)
	}
}

// selectionFlags are shared by commands that apply a filter first
type selectionFlags struct {
	genes   []string
	groups  []string
	minSize int
	maxSize int
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&s.genes, "genes", nil, "Genes to select (comma separated)")
	cmd.Flags().StringSliceVar(&s.groups, "groups", nil, "Groups to keep (empty keeps all)")
	cmd.Flags().IntVar(&s.minSize, "min-size", -1, "Minimum replicate count (inclusive)")
	cmd.Flags().IntVar(&s.maxSize, "max-size", -1, "Maximum replicate count (inclusive)")
}

// selection builds the filter; a missing bound defaults to the observed range
func (s *selectionFlags) selection(ctx context.Context, svc *app.ExplorerService) (table.Selection, error) {
	var sizes *table.SizeRange
	if s.minSize >= 0 || s.maxSize >= 0 {
		observed, err := svc.SizeRange(ctx)
		if err != nil {
			return table.Selection{}, err
		}
		r := observed
		if s.minSize >= 0 {
			r.Min = s.minSize
		}
		if s.maxSize >= 0 {
			r.Max = s.maxSize
		}
		sizes = &r
	}
	return app.SelectionFromInput(s.genes, s.groups, sizes), nil
}
