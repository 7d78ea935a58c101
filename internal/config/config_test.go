package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
jira_host = "https://jira.example.com"
jira_user = "alice"
board = "Team Board"
project = "PROJ"
fields = ["summary", "status", "components", "issuetype", "customfield_10000"]
components = ["Backend", "*"]
status_tables = [["Done"], ["Review", "In progress"], ["*"]]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func loadFrom(t *testing.T, path string) (Config, error) {
	t.Helper()
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	SetPath(path)
	return Load()
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := loadFrom(t, filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.False(t, FileFound())
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := loadFrom(t, writeConfig(t, sampleTOML))
	require.NoError(t, err)

	assert.True(t, FileFound())
	assert.Equal(t, "https://jira.example.com", cfg.JiraHost)
	assert.Equal(t, "alice", cfg.JiraUser)
	assert.Empty(t, cfg.JiraPass)
	assert.Equal(t, "Team Board", cfg.Board)
	assert.Equal(t, "PROJ", cfg.Project)
	assert.Equal(t, []string{"summary", "status", "components", "issuetype", "customfield_10000"}, cfg.Fields)
	assert.Equal(t, []string{"Backend", "*"}, cfg.Components)
	assert.Equal(t, [][]string{{"Done"}, {"Review", "In progress"}, {"*"}}, cfg.StatusTables)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	cfg, err := loadFrom(t, writeConfig(t, `board = "B"`+"\n"+`project = "P"`+"\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "B", cfg.Board)
	assert.Equal(t, def.Fields, cfg.Fields)
	assert.Equal(t, def.Components, cfg.Components)
	assert.Equal(t, def.StatusTables, cfg.StatusTables)
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := loadFrom(t, writeConfig(t, "board = [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestCredentialEnvFillsGaps(t *testing.T) {
	t.Setenv("JIRA_HOST", "https://env.example.com")
	t.Setenv("JIRA_USER", "bob")
	t.Setenv("JIRA_PASS", "from-env")

	cfg, err := loadFrom(t, writeConfig(t, sampleTOML))
	require.NoError(t, err)

	// The file sets host and user, so only the password comes from the env.
	assert.Equal(t, "https://jira.example.com", cfg.JiraHost)
	assert.Equal(t, "alice", cfg.JiraUser)
	assert.Equal(t, "from-env", cfg.JiraPass)
	assert.NoError(t, cfg.Credentials())
}

func TestPrefixedEnvOverridesFile(t *testing.T) {
	t.Setenv("SPRINTREPORT_BOARD", "Other Board")
	t.Setenv("SPRINTREPORT_PROJECT", "OTHER")

	cfg, err := loadFrom(t, writeConfig(t, sampleTOML))
	require.NoError(t, err)
	assert.Equal(t, "Other Board", cfg.Board)
	assert.Equal(t, "OTHER", cfg.Project)
}

func TestPathResolution(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)

	dir, err := os.UserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), Path())

	t.Setenv("SPRINTREPORT_CONFIG", "/tmp/elsewhere.toml")
	assert.Equal(t, "/tmp/elsewhere.toml", Path())

	SetPath("/tmp/flag.toml")
	assert.Equal(t, "/tmp/flag.toml", Path())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingBoard)

	cfg.Board = "B"
	assert.ErrorIs(t, cfg.Validate(), ErrMissingProject)

	cfg.Project = "P"
	assert.NoError(t, cfg.Validate())
}

func TestCredentials(t *testing.T) {
	cfg := Config{JiraHost: "https://jira.example.com"}
	err := cfg.Credentials()
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "jira_user, jira_pass")
	assert.Equal(t, []string{"jira_user", "jira_pass"}, cfg.MissingCredentials())

	cfg.JiraUser, cfg.JiraPass = "u", "p"
	assert.NoError(t, cfg.Credentials())
	assert.Empty(t, cfg.MissingCredentials())
}

func TestSaveOmitsPasswordUnlessAsked(t *testing.T) {
	cfg := Default()
	cfg.JiraHost = "https://jira.example.com"
	cfg.JiraUser = "alice"
	cfg.JiraPass = "secret"
	cfg.Board = "B"
	cfg.Project = "P"

	path := filepath.Join(t.TempDir(), "nested", FileName)
	require.NoError(t, Save(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), `jira_user = "alice"`)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	loaded, err := loadFrom(t, path)
	require.NoError(t, err)
	want := cfg
	want.JiraPass = ""
	assert.Equal(t, want, loaded)

	require.NoError(t, Save(path, cfg, true))
	loaded, err = loadFrom(t, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
