package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprintreport/sprintreport/internal/cache"
	"github.com/sprintreport/sprintreport/internal/config"
	"github.com/sprintreport/sprintreport/internal/debug"
	"github.com/sprintreport/sprintreport/internal/jira"
	"github.com/sprintreport/sprintreport/internal/report"
	"github.com/sprintreport/sprintreport/internal/ui"
)

// errNoSprint is returned when neither $SPRINT nor an argument names a sprint.
var errNoSprint = errors.New("no SPRINT given")

// reportOptions holds the flags shared by the root and report commands.
type reportOptions struct {
	format   string
	cacheDir string
	noPager  bool
	refresh  bool
}

var reportFlags reportOptions

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportFlags.format, "format", formatText, "Output format: text, json or yaml")
	cmd.Flags().StringVar(&reportFlags.cacheDir, "cache-dir", cache.DefaultDir, "Directory holding cached sprint results")
	cmd.Flags().BoolVar(&reportFlags.noPager, "no-pager", false, "Do not pipe text output through a pager")
	cmd.Flags().BoolVar(&reportFlags.refresh, "refresh", false, "Drop the cached result for the sprint before running")
}

var reportCmd = &cobra.Command{
	Use:   "report [SPRINT]",
	Short: "Print the status report for a sprint",
	Long: `Prints the sprint's issues grouped by component and status table.

The first run for a sprint queries Jira and writes cache/<SPRINT>. Every later run
reads that file instead; remove it with 'sprintreport cache clear <SPRINT>' or
use --refresh to fetch again.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runReportCommand,
}

func init() {
	addReportFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportCommand(cmd *cobra.Command, args []string) {
	err := runReport(commandContext(), args, reportFlags, os.Stdout)
	if err == nil {
		return
	}

	var corrupt *cache.CorruptError
	var integrity *report.IntegrityError
	switch {
	case errors.As(err, &corrupt):
		FatalErrorWithHint(err.Error(), fmt.Sprintf("Run 'sprintreport cache clear %s' to fetch the sprint again", sprintHint(args)))
	case errors.Is(err, errNoSprint):
		FatalErrorWithHint(err.Error(), "Pass the sprint name as an argument or set SPRINT")
	case errors.Is(err, config.ErrMissingBoard), errors.Is(err, config.ErrMissingProject):
		FatalErrorWithHint(err.Error(), fmt.Sprintf("Set board and project in %s", config.Path()))
	case errors.Is(err, config.ErrMissingCredentials):
		FatalErrorWithHint(err.Error(), "Run 'sprintreport config init' in a terminal")
	case jira.IsAuthError(err):
		FatalErrorWithHint(err.Error(), "Check jira_user and jira_pass, or run 'sprintreport config init'")
	case errors.As(err, &integrity):
		FatalError("data integrity: %v", err)
	default:
		FatalError("%v", err)
	}
}

// resolveSprint picks the sprint name: $SPRINT wins over the first argument.
func resolveSprint(args []string) (string, error) {
	if s := os.Getenv("SPRINT"); s != "" {
		return s, nil
	}
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	return "", errNoSprint
}

func sprintHint(args []string) string {
	s, err := resolveSprint(args)
	if err != nil {
		return "<SPRINT>"
	}
	return fmt.Sprintf("%q", s)
}

// runReport resolves the sprint and config, loads the issues from the cache
// or Jira, and writes the report to out.
func runReport(ctx context.Context, args []string, opts reportOptions, out io.Writer) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	sprint, err := resolveSprint(args)
	if err != nil {
		return err
	}
	if format == formatText {
		debug.PrintNormal("Sprint: %s\n", sprint)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg, err = ensureCredentials(cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store := cache.New(opts.cacheDir, cfg.Fields)
	store.OnWarning = func(msg string) { WarnError("%s", msg) }
	if opts.refresh {
		if err := store.Remove(sprint); err != nil && !errors.Is(err, cache.ErrNotCached) {
			return err
		}
	}

	client := jira.NewClient(cfg.JiraHost, cfg.JiraUser, cfg.JiraPass)
	query := func() (string, error) {
		return jira.SprintQuery(sprint, cfg.Board, cfg.Project)
	}
	result, err := store.FetchOrLoad(ctx, sprint, query, client.SearchIssues)
	if err != nil {
		return err
	}
	debug.Logf("%d issues for sprint %q (from cache: %v)\n", len(result.Issues), sprint, result.UsedCache)

	sections := report.ClassifyContext(ctx, result.Issues,
		report.ParseComponents(cfg.Components), report.ParseStatusTables(cfg.StatusTables))
	rep, err := report.Assemble(sprint, result.UsedCache, sections)
	if err != nil {
		return err
	}

	return writeReport(out, rep, format, ui.PagerOptions{NoPager: opts.noPager})
}

// writeReport renders rep in the requested format. Structured formats carry
// the cache state in from_cache and repeat the stale notice on stderr.
func writeReport(out io.Writer, rep *report.Report, format string, pager ui.PagerOptions) error {
	switch format {
	case formatJSON:
		if err := outputJSON(out, rep); err != nil {
			return err
		}
	case formatYAML:
		if err := outputYAML(out, rep); err != nil {
			return err
		}
	default:
		return ui.ToPager(out, ui.RenderReport(rep), pager)
	}

	if rep.FromCache && !debug.IsQuiet() {
		fmt.Fprintln(os.Stderr, ui.StaleCacheNotice)
	}
	return nil
}
