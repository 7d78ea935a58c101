package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprintreport/sprintreport/internal/config"
	"github.com/sprintreport/sprintreport/internal/debug"
	"github.com/sprintreport/sprintreport/internal/telemetry"
	"github.com/sprintreport/sprintreport/internal/ui"
)

var (
	configPath  string
	verboseFlag bool // Enable verbose/debug output
	quietFlag   bool // Suppress non-essential output
	noColorFlag bool

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $SPRINTREPORT_CONFIG or <user config dir>/jira.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
	addReportFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:   "sprintreport [SPRINT]",
	Short: "sprintreport - Jira sprint status report",
	Long: `Fetches the issues of one sprint from Jira, caches them under ./cache and
prints them grouped by component and status.

The sprint name is taken from the SPRINT environment variable or the first argument.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("sprintreport version %s (%s)\n", Version, Build)
			return
		}
		runReportCommand(cmd, args)
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		applyVerbosityFlags()
		ui.ConfigureColor(noColorFlag)

		if configPath != "" {
			config.SetPath(configPath)
		}
		if err := config.Initialize(); err != nil {
			FatalErrorWithHint(err.Error(), fmt.Sprintf("Fix or remove %s, or run 'sprintreport config init'", config.Path()))
		}

		if err := telemetry.Init(rootCtx, "sprintreport", Version); err != nil {
			WarnError("telemetry disabled: %v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		telemetry.Shutdown(ctx)

		if rootCancel != nil {
			rootCancel()
		}
	},
}

// setupSignalContext cancels rootCtx on SIGINT or SIGTERM so an in-flight
// Jira request is abandoned.
func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags propagates --verbose and --quiet flags to the debug
// package so all subsequent log output respects the user's preference.
func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

func commandContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
