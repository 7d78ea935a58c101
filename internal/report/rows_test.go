package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintreport/sprintreport/internal/jira"
)

func TestAssembleRowsUnflagged(t *testing.T) {
	summary := "Fix login"
	issue := newIssue("P-1", "In progress", "Backend")
	issue.Fields.Summary = &summary

	rows, err := AssembleRows([]jira.Issue{issue})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{Lead: "In progress", Key: "P-1", Summary: "Fix login", IssueType: "Task"}, rows[0])
	assert.Equal(t, []string{"In progress", "P-1", "Fix login", "Task"}, rows[0].Cells())
}

func TestAssembleRowsFlaggedAndMissingSummary(t *testing.T) {
	issue := newIssue("P-2", "Review")
	issue.Fields.Custom = map[string]json.RawMessage{
		jira.FlagFieldKey: json.RawMessage(`[{"disabled":false,"id":"1","self":"https://x","value":"Impediment"}]`),
	}

	rows, err := AssembleRows([]jira.Issue{issue})
	require.NoError(t, err)
	assert.Equal(t, jira.FlagMarker+"Review", rows[0].Lead)
	assert.Equal(t, MissingSummary, rows[0].Summary)
	assert.True(t, rows[0].Flagged)
}

func TestAssembleRowsMalformedFlagIsNotFlagged(t *testing.T) {
	issue := newIssue("P-3", "Done")
	issue.Fields.Custom = map[string]json.RawMessage{
		jira.FlagFieldKey: json.RawMessage(`"Impediment"`),
	}

	rows, err := AssembleRows([]jira.Issue{issue})
	require.NoError(t, err)
	assert.Equal(t, "Done", rows[0].Lead)
	assert.False(t, rows[0].Flagged)
}

func TestAssembleRowsIntegrityErrors(t *testing.T) {
	noStatus := newIssue("P-4", "")
	_, err := AssembleRows([]jira.Issue{noStatus})
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "P-4", integrity.Key)
	assert.Equal(t, "status", integrity.Field)

	noType := newIssue("P-5", "Done")
	noType.Fields.IssueType = nil
	_, err = AssembleRows([]jira.Issue{noType})
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "issue type", integrity.Field)
	assert.EqualError(t, err, "issue P-5 has no issue type")
}

func TestHeader(t *testing.T) {
	section := Section{Label: "Backend"}
	group := Group{Label: "Review/In progress", Issues: []jira.Issue{newIssue("P-1", "Review"), newIssue("P-2", "In progress")}}
	assert.Equal(t, "******* Backend in Review/In progress : 2 *******", Header(section, group))
}

func TestAssemble(t *testing.T) {
	issues := []jira.Issue{
		newIssue("P-1", "Done", "Backend"),
		newIssue("P-2", "Review", "UI"),
	}
	sections := Classify(issues, ParseComponents([]string{"Backend", "*"}), ParseStatusTables([][]string{{"Done"}, {"Review"}}))

	r, err := Assemble("Sprint 1", true, sections)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 1", r.Sprint)
	assert.True(t, r.FromCache)
	require.Len(t, r.Tables, 4)

	assert.Equal(t, "Backend", r.Tables[0].Component)
	assert.Equal(t, "Done", r.Tables[0].Statuses)
	assert.Equal(t, 1, r.Tables[0].Count)
	assert.Equal(t, "******* Backend in Done : 1 *******", r.Tables[0].Header)

	assert.Equal(t, OthersLabel, r.Tables[3].Component)
	assert.Equal(t, "Review", r.Tables[3].Statuses)
	require.Len(t, r.Tables[3].Rows, 1)
	assert.Equal(t, "P-2", r.Tables[3].Rows[0].Key)
	assert.NotNil(t, r.Tables[1].Rows)
}

func TestAssembleWildcardWithStatuslessIssueFails(t *testing.T) {
	issues := []jira.Issue{newIssue("P-1", "", "Backend")}
	sections := Classify(issues, ParseComponents([]string{"Backend"}), ParseStatusTables([][]string{{"*"}}))

	_, err := Assemble("S", false, sections)
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Contains(t, err.Error(), "Backend in *")
}
