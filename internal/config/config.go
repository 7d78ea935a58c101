// Package config loads the Jira connection and report layout from jira.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/sprintreport/sprintreport/internal/debug"
)

// FileName is the config file name inside the user config directory.
const FileName = "jira.toml"

// EnvPrefix prefixes the environment overrides for config keys,
// e.g. SPRINTREPORT_BOARD.
const EnvPrefix = "SPRINTREPORT"

var (
	// ErrMissingBoard is returned by Validate when no board is configured.
	ErrMissingBoard = errors.New("missing board name in config")
	// ErrMissingProject is returned by Validate when no project is configured.
	ErrMissingProject = errors.New("missing project name in config")
	// ErrMissingCredentials is returned by Credentials when the Jira host,
	// user or password is unknown.
	ErrMissingCredentials = errors.New("missing Jira credentials")
)

// Config is the resolved configuration of one run.
type Config struct {
	JiraHost     string     `toml:"jira_host,omitempty" mapstructure:"jira_host" json:"jira_host" yaml:"jira_host"`
	JiraUser     string     `toml:"jira_user,omitempty" mapstructure:"jira_user" json:"jira_user" yaml:"jira_user"`
	JiraPass     string     `toml:"jira_pass,omitempty" mapstructure:"jira_pass" json:"jira_pass" yaml:"jira_pass"`
	Fields       []string   `toml:"fields" mapstructure:"fields" json:"fields" yaml:"fields"`
	Board        string     `toml:"board,omitempty" mapstructure:"board" json:"board" yaml:"board"`
	Project      string     `toml:"project,omitempty" mapstructure:"project" json:"project" yaml:"project"`
	Components   []string   `toml:"components" mapstructure:"components" json:"components" yaml:"components"`
	StatusTables [][]string `toml:"status_tables" mapstructure:"status_tables" json:"status_tables" yaml:"status_tables"`
}

// Default returns the configuration used for keys the file does not set.
func Default() Config {
	return Config{
		Fields:     []string{"summary", "status", "components", "issuetype"},
		Components: []string{"*"},
		StatusTables: [][]string{
			{"Done"},
			{"Review", "In progress", "Ready", "To do"},
		},
	}
}

// credentialEnv maps connection keys to the plain environment variables that
// fill them when the config file leaves them empty.
var credentialEnv = map[string]string{
	"jira_host": "JIRA_HOST",
	"jira_user": "JIRA_USER",
	"jira_pass": "JIRA_PASS",
}

var (
	v            *viper.Viper
	explicitPath string
	fileFound    bool
)

// SetPath overrides the config file location. It must be called before
// Initialize.
func SetPath(path string) {
	explicitPath = path
}

// Path returns the config file location: the SetPath override, then
// $SPRINTREPORT_CONFIG, then jira.toml in the user config directory.
func Path() string {
	if explicitPath != "" {
		return explicitPath
	}
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, FileName)
}

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("toml")

	path := Path()
	fileFound = false
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		fileFound = true
	}

	// SPRINTREPORT_BOARD, SPRINTREPORT_PROJECT, ... override the file.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("jira_host", "")
	v.SetDefault("jira_user", "")
	v.SetDefault("jira_pass", "")
	v.SetDefault("fields", def.Fields)
	v.SetDefault("board", "")
	v.SetDefault("project", "")
	v.SetDefault("components", def.Components)
	v.SetDefault("status_tables", def.StatusTables)

	// JIRA_HOST and friends only fill gaps, so they live under their own keys.
	for key, env := range credentialEnv {
		_ = v.BindEnv("fallback."+key, env)
	}

	if fileFound {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		debug.Logf("Debug: loaded config from %s\n", v.ConfigFileUsed())
	} else {
		debug.Logf("Debug: no %s found at %s; using defaults and environment variables\n", FileName, path)
	}
	return nil
}

// ResetForTesting clears the config state, allowing Initialize() to be called again.
// WARNING: Not thread-safe. Only call from single-threaded test contexts.
func ResetForTesting() {
	v = nil
	explicitPath = ""
	fileFound = false
}

// FileFound reports whether Initialize read a config file.
func FileFound() bool {
	return fileFound
}

// Load returns the resolved configuration, initializing on first use.
func Load() (Config, error) {
	if v == nil {
		if err := Initialize(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JiraHost == "" {
		cfg.JiraHost = v.GetString("fallback.jira_host")
	}
	if cfg.JiraUser == "" {
		cfg.JiraUser = v.GetString("fallback.jira_user")
	}
	if cfg.JiraPass == "" {
		cfg.JiraPass = v.GetString("fallback.jira_pass")
	}
	return cfg, nil
}

// Validate checks the settings the sprint query needs.
func (c Config) Validate() error {
	if c.Board == "" {
		return ErrMissingBoard
	}
	if c.Project == "" {
		return ErrMissingProject
	}
	return nil
}

// MissingCredentials lists the connection keys that are still empty.
func (c Config) MissingCredentials() []string {
	var missing []string
	if c.JiraHost == "" {
		missing = append(missing, "jira_host")
	}
	if c.JiraUser == "" {
		missing = append(missing, "jira_user")
	}
	if c.JiraPass == "" {
		missing = append(missing, "jira_pass")
	}
	return missing
}

// Credentials checks that the Jira host, user and password are all known.
func (c Config) Credentials() error {
	if missing := c.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("%w: set %s in %s or the JIRA_HOST/JIRA_USER/JIRA_PASS environment variables",
			ErrMissingCredentials, strings.Join(missing, ", "), Path())
	}
	return nil
}

// Save writes cfg to path as TOML with owner-only permissions. The password
// is left out unless savePassword is set.
func Save(path string, cfg Config, savePassword bool) error {
	if !savePassword {
		cfg.JiraPass = ""
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304 -- path is the resolved config location
	if err != nil {
		return fmt.Errorf("create %s: %w", FileName, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode %s: %w", FileName, err)
	}
	return f.Close()
}
