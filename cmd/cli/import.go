package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/branchmove/branch-service/internal/database"
	"github.com/branchmove/branch-service/internal/parsers/xlsx"
	"github.com/branchmove/branch-service/internal/store"
)

var (
	importSheet  string
	importDryRun bool
	importStrict bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import a branch spreadsheet into the configured store",
	Long: `Parse an XLSX branch sheet and write the valid rows to the configured store.
The file store replaces the whole dataset; the postgres store upserts by name.
Rows with errors are reported and skipped unless --strict is set.`,
	Example: `  branch-service import branches.xlsx
  branch-service import branches.xlsx --sheet Branches --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Sheet name (defaults to the first sheet)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without writing")
	importCmd.Flags().BoolVar(&importStrict, "strict", false, "Abort when any row has errors")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	opts := xlsx.DefaultOptions()
	opts.Sheet = importSheet
	result, err := xlsx.NewParser(opts).Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	displayParseResult(result)

	if len(result.Errors) > 0 && importStrict {
		return fmt.Errorf("%d rows have errors", len(result.Errors))
	}
	if len(result.Branches) == 0 {
		return fmt.Errorf("no valid rows in %s", path)
	}
	if importDryRun {
		logger.Info().Int("rows", len(result.Branches)).Msg("Dry run, nothing written")
		return nil
	}

	switch cfg.Store.Type {
	case store.TypeFile:
		fs, err := openFileStore()
		if err != nil {
			return err
		}
		if err := fs.Replace(ctx, result.Branches, filepath.Base(path)); err != nil {
			return err
		}
	case store.TypePostgres:
		pg, err := openPostgresStore(ctx)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := pg.UpsertMany(ctx, result.Branches); err != nil {
			return err
		}
		if total, err := pg.Count(ctx); err == nil {
			logger.Info().Int("total", total).Msg("Branches in database")
		}
	default:
		return fmt.Errorf("unknown store type: %q", cfg.Store.Type)
	}

	logger.Info().
		Str("store", cfg.Store.Type).
		Int("rows", len(result.Branches)).
		Msg("Branches imported")
	return nil
}

func displayParseResult(result *xlsx.ParseResult) {
	if jsonOutput() {
		_ = printJSON(os.Stdout, result)
		return
	}

	fmt.Printf("Rows: %d total, %d valid\n", result.TotalRows, result.ValidRows)

	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ROW\tLEVEL\tFIELD\tMESSAGE")
	fmt.Fprintln(w, "---\t-----\t-----\t-------")
	for _, e := range result.Errors {
		fmt.Fprintf(w, "%d\terror\t%s\t%s\n", e.RowNumber, orDash(e.Field), e.Message)
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "%d\twarning\t%s\t%s\n", warn.RowNumber, orDash(warn.Field), warn.Message)
	}
	w.Flush()
}
