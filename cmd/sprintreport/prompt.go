package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/sprintreport/sprintreport/internal/config"
	"github.com/sprintreport/sprintreport/internal/debug"
	"github.com/sprintreport/sprintreport/internal/ui"
)

// errPromptAborted is returned when the user cancels a form.
var errPromptAborted = errors.New("cancelled")

// credentialForm collects the connection settings.
type credentialForm struct {
	host, user, pass, board, project string
	savePassword                     bool
}

func newCredentialForm(cfg config.Config) *credentialForm {
	return &credentialForm{
		host:    cfg.JiraHost,
		user:    cfg.JiraUser,
		pass:    cfg.JiraPass,
		board:   cfg.Board,
		project: cfg.Project,
	}
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// fields builds the inputs for the keys in ask. The save-password question
// follows the password input.
func (f *credentialForm) fields(ask map[string]bool) []huh.Field {
	var fields []huh.Field
	if ask["jira_host"] {
		fields = append(fields, huh.NewInput().
			Title("Jira URL").
			Placeholder("https://jira.example.com").
			Value(&f.host).
			Validate(required("Jira URL")))
	}
	if ask["jira_user"] {
		fields = append(fields, huh.NewInput().
			Title("Jira username").
			Value(&f.user).
			Validate(required("username")))
	}
	if ask["jira_pass"] {
		fields = append(fields,
			huh.NewInput().
				Title("Jira password").
				EchoMode(huh.EchoModePassword).
				Value(&f.pass).
				Validate(required("password")),
			huh.NewConfirm().
				Title("Save password to file?").
				Description("Stored in plain text, readable only by you").
				Value(&f.savePassword))
	}
	if ask["board"] {
		fields = append(fields, huh.NewInput().
			Title("Board").
			Description("Board name used in removedAfterSprintStart()").
			Value(&f.board))
	}
	if ask["project"] {
		fields = append(fields, huh.NewInput().
			Title("Project").
			Description("Project key, e.g. PROJ").
			Value(&f.project))
	}
	return fields
}

func (f *credentialForm) run(ask map[string]bool) error {
	form := huh.NewForm(huh.NewGroup(f.fields(ask)...)).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errPromptAborted
		}
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}

func (f *credentialForm) apply(cfg config.Config) config.Config {
	cfg.JiraHost = strings.TrimSpace(f.host)
	cfg.JiraUser = strings.TrimSpace(f.user)
	cfg.JiraPass = f.pass
	cfg.Board = strings.TrimSpace(f.board)
	cfg.Project = strings.TrimSpace(f.project)
	return cfg
}

// ensureCredentials prompts for whatever of host, user and password is still
// missing and writes the answers back to the config file. Without a terminal
// on stdin it returns config.ErrMissingCredentials instead.
func ensureCredentials(cfg config.Config) (config.Config, error) {
	missing := cfg.MissingCredentials()
	if len(missing) == 0 {
		return cfg, nil
	}
	if !ui.IsInputTerminal() {
		return cfg, cfg.Credentials()
	}

	ask := make(map[string]bool, len(missing))
	for _, key := range missing {
		ask[key] = true
	}
	form := newCredentialForm(cfg)
	if err := form.run(ask); err != nil {
		return cfg, err
	}
	cfg = form.apply(cfg)

	path := config.Path()
	if err := config.Save(path, cfg, form.savePassword); err != nil {
		WarnError("failed to write config to file. %v", err)
	} else {
		debug.Logf("Debug: wrote %s\n", path)
	}
	return cfg, nil
}
