package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprintreport/sprintreport/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the jira.toml configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively write the Jira connection settings",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			FatalError("%v", err)
		}

		form := newCredentialForm(cfg)
		ask := map[string]bool{"jira_host": true, "jira_user": true, "jira_pass": true, "board": true, "project": true}
		if err := form.run(ask); err != nil {
			if err == errPromptAborted {
				fmt.Fprintln(os.Stderr, "Configuration cancelled.")
				os.Exit(0)
			}
			FatalError("%v", err)
		}

		path := config.Path()
		if err := config.Save(path, form.apply(cfg), form.savePassword); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("Wrote %s\n", path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration with the password masked",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			FatalError("%v", err)
		}
		printMasked(os.Stdout, cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Run: func(cmd *cobra.Command, args []string) {
		path := config.Path()
		if config.FileFound() {
			fmt.Println(path)
			return
		}
		fmt.Printf("%s (not found; defaults and environment in use)\n", path)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// maskSecret keeps the first and last four characters of long secrets.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return strings.Repeat("*", len(s))
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// printMasked prints the configuration with the password masked.
func printMasked(w io.Writer, cfg config.Config) {
	fmt.Fprintf(w, "Config file: %s\n", config.Path())
	fmt.Fprintf(w, "Jira URL: %s\n", orUnset(cfg.JiraHost))
	fmt.Fprintf(w, "Jira user: %s\n", orUnset(cfg.JiraUser))
	fmt.Fprintf(w, "Jira password: %s\n", maskSecret(cfg.JiraPass))
	fmt.Fprintf(w, "Board: %s\n", orUnset(cfg.Board))
	fmt.Fprintf(w, "Project: %s\n", orUnset(cfg.Project))
	fmt.Fprintf(w, "Fields: %s\n", strings.Join(cfg.Fields, ", "))
	fmt.Fprintf(w, "Components: %s\n", strings.Join(cfg.Components, ", "))
	tables := make([]string, len(cfg.StatusTables))
	for i, t := range cfg.StatusTables {
		tables[i] = "[" + strings.Join(t, "/") + "]"
	}
	fmt.Fprintf(w, "Status tables: %s\n", strings.Join(tables, " "))
}
