package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/branchmove/branch-service/internal/branch"
)

var branchesRegion string

// branchesCmd represents the branches command
var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List branches in the configured store",
	Example: `  branch-service branches
  branch-service branches --region Istanbul --output json`,
	Args: cobra.NoArgs,
	RunE: runBranches,
}

// criteriaCmd represents the criteria command
var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "List the supported preference criteria",
	Args:  cobra.NoArgs,
	RunE:  runCriteria,
}

func init() {
	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(criteriaCmd)

	branchesCmd.Flags().StringVar(&branchesRegion, "region", "", "Only list branches in this region")
}

func runBranches(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, release, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	var locs []branch.Location
	if region := strings.TrimSpace(branchesRegion); region != "" {
		locs, err = s.FindByRegion(ctx, region)
	} else {
		locs, err = s.FindAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list branches: %w", err)
	}

	if jsonOutput() {
		return printJSON(os.Stdout, map[string]any{"branches": locs, "count": len(locs)})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tREGION\tTYPE\tLAT\tLON\tATMS\tDENSITY\tSERVICES")
	fmt.Fprintln(w, "--\t----\t------\t----\t---\t---\t----\t-------\t--------")
	for _, l := range locs {
		services := strings.Join(l.ServiceNames(), ",")
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.4f\t%.4f\t%d\t%s\t%s\n",
			l.ID, l.Name, l.Region, orDash(l.Type), l.Coordinate.Lat, l.Coordinate.Lon,
			l.ATMCount, l.Density, orDash(services))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d branches\n", len(locs))
	return nil
}

func runCriteria(cmd *cobra.Command, args []string) error {
	criteria := branch.KnownCriteria()
	if jsonOutput() {
		return printJSON(os.Stdout, map[string]any{"criteria": criteria})
	}
	for i, c := range criteria {
		fmt.Printf("%d. %s\n", i+1, c)
	}
	return nil
}
