package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/branchmove/branch-service/internal/generator"
)

var providerTestTimeout time.Duration

// providersCmd groups AI provider commands
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect the configured AI provider",
}

// providersTestCmd represents the providers test command
var providersTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a probe prompt to the configured AI provider",
	Example: `  branch-service providers test
  AI_PROVIDER=gemini branch-service providers test --timeout 10s`,
	Args: cobra.NoArgs,
	RunE: runProvidersTest,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersTestCmd)

	providersTestCmd.Flags().DurationVar(&providerTestTimeout, "timeout", 30*time.Second, "Probe timeout")
}

func runProvidersTest(cmd *cobra.Command, args []string) error {
	// The cache would answer a repeated probe without reaching the provider.
	aiCfg := cfg.AI
	aiCfg.Cache.Enabled = false

	gen, _, err := generator.New(&aiCfg, *logger)
	if err != nil {
		return fmt.Errorf("failed to configure text generator: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), providerTestTimeout)
	defer cancel()

	start := time.Now()
	err = generator.TestConnection(ctx, gen)
	elapsed := time.Since(start)

	status := map[string]any{
		"provider":  gen.Name(),
		"ok":        err == nil,
		"latencyMs": elapsed.Milliseconds(),
	}
	if err != nil {
		status["error"] = err.Error()
	}

	if jsonOutput() {
		if perr := printJSON(os.Stdout, status); perr != nil {
			return perr
		}
	} else if err == nil {
		fmt.Printf("%s: OK (%s)\n", gen.Name(), elapsed.Round(time.Millisecond))
	} else {
		fmt.Printf("%s: FAILED after %s: %v\n", gen.Name(), elapsed.Round(time.Millisecond), err)
	}
	return err
}
