package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"genexplorer/app"
	"genexplorer/domain/table"
	"genexplorer/internal/mapping"
	"genexplorer/internal/plot"
	"genexplorer/internal/prepare"
	"genexplorer/internal/testkit"

	"github.com/spf13/cobra"
)

func newGenesCmd(flags *globalFlags) *cobra.Command {
	var search string
	var selected []string

	cmd := &cobra.Command{
		Use:   "genes",
		Short: "List genes of the mu table",
		Long: `List gene names, optionally filtered by a case-insensitive substring.

Without --search only the first page of genes is listed.

Example: genexplorer genes --search tp5 --selected A1BG`,
		RunE: func(cmd *cobra.Command, args []string) error {
			genes, err := flags.explorer().ListGenes(cmd.Context(), search, selected)
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), genes, func(w io.Writer) {
				for _, g := range genes {
					fmt.Fprintln(w, g)
				}
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive substring")
	cmd.Flags().StringSliceVar(&selected, "selected", nil, "Genes that are always listed")
	return cmd
}

func newGroupsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the experimental groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := flags.explorer().ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), groups, func(w io.Writer) {
				for _, g := range groups {
					fmt.Fprintln(w, g.Value)
				}
			})
		},
	}
}

func newSizesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sizes",
		Short: "Print the observed replicate-count range",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.explorer().SizeRange(cmd.Context())
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), r, func(w io.Writer) {
				fmt.Fprintf(w, "%d-%d\n", r.Min, r.Max)
			})
		},
	}
}

func newFilterCmd(flags *globalFlags) *cobra.Command {
	sel := &selectionFlags{}
	var limit int

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Project both tables for a gene selection",
		Long: `Load only the selected gene columns (and their sgRNAs) and filter rows
by group and replicate count.

Example: genexplorer filter --genes A1BG,TP53 --groups 1 --min-size 2 --max-size 6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := flags.explorer()
			s, err := sel.selection(cmd.Context(), svc)
			if err != nil {
				return err
			}
			res, err := svc.ApplyFilter(cmd.Context(), "", s)
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), res, func(w io.Writer) {
				for _, wr := range res.Warnings() {
					fmt.Fprintf(w, "warning: %s\n", wr.Message)
				}
				printFrame(w, res.Mu.Frame, limit)
				printFrame(w, res.Phi.Frame, limit)
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 10, "Rows to print per table")
	return cmd
}

func printFrame(w io.Writer, f *table.Frame, limit int) {
	fmt.Fprintf(w, "\n[%s] %d rows\n", f.Kind, f.Len())
	if len(f.Columns) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(f.Columns, "\t"))
	for i, row := range f.Rows {
		if i == limit {
			fmt.Fprintf(tw, "... %d more\n", f.Len()-limit)
			break
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func newPlotCmd(flags *globalFlags) *cobra.Command {
	sel := &selectionFlags{}
	var out string

	cmd := &cobra.Command{
		Use:   "plot [mu|phi] [entity]",
		Short: "Render a box plot of one gene or sgRNA",
		Long: `Filter the tables, then plot one entity by replicate count. The output
format follows the file extension: .png, .svg, .pdf or .html.

Example: genexplorer plot mu TP53 --genes TP53 --out tp53.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := table.ParseKind(args[0])
			if err != nil {
				return err
			}
			svc := flags.explorer()
			if len(sel.genes) == 0 {
				sel.genes = []string{args[1]}
				if kind == table.KindPhi {
					sel.genes = []string{mapping.GeneOfSgRNA(args[1])}
				}
			}
			s, err := sel.selection(cmd.Context(), svc)
			if err != nil {
				return err
			}
			if _, err := svc.ApplyFilter(cmd.Context(), "", s); err != nil {
				return err
			}
			spec, err := svc.PlotEntity("", kind, args[1])
			if err != nil {
				return err
			}
			if spec.Placeholder() {
				fmt.Fprintln(cmd.ErrOrStderr(), spec.Message)
			}
			return writePlot(spec, out)
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&out, "out", "plot.html", "Output file")
	return cmd
}

func writePlot(spec plot.Spec, out string) error {
	if strings.EqualFold(filepath.Ext(out), ".html") {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := plot.RenderHTML(spec, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return plot.SaveImage(spec, out)
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	sel := &selectionFlags{}
	var format, dir string

	cmd := &cobra.Command{
		Use:   "export [mu|phi]",
		Short: "Write the filtered table to selected_<kind>_data.csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := table.ParseKind(args[0])
			if err != nil {
				return err
			}
			svc := flags.explorer()
			s, err := sel.selection(cmd.Context(), svc)
			if err != nil {
				return err
			}
			if _, err := svc.ApplyFilter(cmd.Context(), "", s); err != nil {
				return err
			}
			file, err := svc.ExportTable("", kind, format)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, file.FileName)
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&format, "format", app.FormatCSV, "csv or xlsx")
	cmd.Flags().StringVar(&dir, "dir", ".", "Output directory")
	return cmd
}

func newDiagnoseCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose [gene]",
		Short: "Trace a gene through both tables",
		Long: `Check that a gene resolves exactly in the gene table and owns sgRNAs in
the sgRNA table. Case mismatches and similar names are reported, never
silently matched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.explorer().DiagnoseGene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), d, func(w io.Writer) {
				fmt.Fprintf(w, "gene table: %t\n", d.InGeneTable)
				fmt.Fprintf(w, "sgRNAs: %d %s\n", len(d.SgRNAs), strings.Join(d.SgRNAs, " "))
				for _, msg := range d.Warnings {
					fmt.Fprintf(w, "warning: %s\n", msg)
				}
			})
		},
	}
}

func newPrepareCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare [mu|phi] [input] [output]",
		Short: "Normalize a raw screen export into an explorer table",
		Long: `Rename the first column to design, strip " (N)" qualifiers from gene
names and derive group and size from the design label.

Example: genexplorer prepare phi final_merged_phi.csv modified_phi_ig.csv`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := table.ParseKind(args[0])
			if err != nil {
				return err
			}
			report, err := prepare.PrepareFile(cmd.Context(), kind, args[1], args[2], flags.logger())
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), report, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %d rows, %d columns, %d renamed, %d dropped\n",
					args[2], report.Rows, report.Columns, len(report.Renamed), len(report.Dropped))
			})
		},
	}
}

func newGenerateCmd(flags *globalFlags) *cobra.Command {
	cfg := testkit.DefaultScreenConfig()
	var dir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic mu/phi table pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := prepare.GenerateSynthetic(cmd.Context(), dir, cfg, flags.logger())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), src.MuPath)
			fmt.Fprintln(cmd.OutOrStdout(), src.PhiPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Output directory")
	cmd.Flags().IntVar(&cfg.GeneCount, "genes", cfg.GeneCount, "Number of genes")
	cmd.Flags().IntVar(&cfg.SgRNAsPerGene, "sgrnas", cfg.SgRNAsPerGene, "sgRNAs per gene")
	cmd.Flags().IntVar(&cfg.GroupCount, "groups", cfg.GroupCount, "Number of groups")
	cmd.Flags().IntVar(&cfg.MaxSize, "max-size", cfg.MaxSize, "Largest replicate count")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	return cmd
}
