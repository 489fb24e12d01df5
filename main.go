package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helmcode/pr-impact/cmd"
	"github.com/helmcode/pr-impact/pkg/observability"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd(cmd.NewApp())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	observability.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(app *cmd.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pr-impact",
		Short: "AI-powered pull request impact analysis",
		Long: `pr-impact asks an analysis service what a GitHub pull request changes,
which features and code it touches, where the risk is, and which QA scenarios
should be tested. Test cases can be checked off and progress is remembered.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.Setup,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "Config file (default ./config.yaml or ~/.pr-impact/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(
		cmd.NewAnalyzeCmd(app),
		cmd.NewShowCmd(app),
		cmd.NewToggleCmd(app),
		cmd.NewProgressCmd(app),
		cmd.NewQueryCmd(app),
		cmd.NewReviewCmd(app),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pr-impact version %s\n", version)
		},
	}
}
