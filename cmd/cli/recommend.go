package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/branchmove/branch-service/internal/advisor"
	"github.com/branchmove/branch-service/internal/branch"
	"github.com/branchmove/branch-service/internal/generator"
	"github.com/branchmove/branch-service/internal/scoring"
)

var recommendPriorities []string

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend <region> <current-branch>",
	Short: "Recommend a branch in the target region",
	Long: `Run one recommendation against the configured store and AI provider.
Priorities are given in order, most important first. When the provider is
unavailable the nearest eligible branch is returned in degraded mode.`,
	Example: `  branch-service recommend Istanbul "Kadikoy Branch"
  branch-service recommend Ankara "Harbor Branch" -p "Parking Available" -p "Extended Hours"
  branch-service recommend Izmir "Plaza Branch" --output json`,
	Args: cobra.ExactArgs(2),
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringArrayVarP(&recommendPriorities, "priority", "p", nil, "Preference criterion, repeat in priority order")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	priorities := make([]branch.Criterion, 0, len(recommendPriorities))
	for _, p := range recommendPriorities {
		p = strings.TrimSpace(p)
		if !branch.IsKnown(p) {
			return fmt.Errorf("unknown criterion %q (see 'branch-service criteria')", p)
		}
		priorities = append(priorities, branch.Criterion(p))
	}

	s, release, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	gen, closer, err := generator.New(&cfg.AI, *logger)
	if err != nil {
		return fmt.Errorf("failed to configure text generator: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	adv := advisor.New(s, gen, scoring.NewEngine(&cfg.Scoring, *logger), advisor.Config{
		GeneratorTimeout: cfg.AI.Timeout,
		FallbackPick:     cfg.Fallback.DefaultPick,
	}, *logger)

	result, err := adv.Recommend(ctx, advisor.Request{
		Region:          strings.TrimSpace(args[0]),
		CurrentLocation: strings.TrimSpace(args[1]),
		Priorities:      priorities,
	})
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(os.Stdout, result)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "PICK\t%s\n", result.Pick)
	fmt.Fprintf(w, "NEAREST\t%s\n", result.Nearest)
	fmt.Fprintf(w, "STAGE\t%s\n", orDash(string(result.Stage)))
	fmt.Fprintf(w, "DEGRADED\t%t\n", result.Degraded)
	fmt.Fprintf(w, "PROVIDER\t%s\n", orDash(result.Provider))
	w.Flush()

	fmt.Printf("\n%s\n", result.Rationale)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
