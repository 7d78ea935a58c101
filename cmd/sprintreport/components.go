package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprintreport/sprintreport/internal/config"
	"github.com/sprintreport/sprintreport/internal/jira"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "List the project's components as name:id",
	Long: `Lists every component of the configured project, one per line as name:id.
Use the names in the components list of jira.toml.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			FatalError("%v", err)
		}
		if cfg, err = ensureCredentials(cfg); err != nil {
			FatalError("%v", err)
		}
		if cfg.Project == "" {
			FatalErrorWithHint(config.ErrMissingProject.Error(), fmt.Sprintf("Set project in %s", config.Path()))
		}

		client := jira.NewClient(cfg.JiraHost, cfg.JiraUser, cfg.JiraPass)
		components, err := client.ProjectComponents(commandContext(), cfg.Project)
		if err != nil {
			FatalError("%v", err)
		}
		for _, c := range components {
			fmt.Printf("%s:%s\n", c.Name, c.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}
