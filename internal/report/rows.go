package report

import (
	"fmt"

	"github.com/sprintreport/sprintreport/internal/jira"
)

// MissingSummary stands in for an issue without a summary.
const MissingSummary = "-"

// Row is one display line of a group: the flag marker and status, the key,
// the summary and the issue type.
type Row struct {
	Lead      string `json:"lead" yaml:"lead"`
	Key       string `json:"key" yaml:"key"`
	Summary   string `json:"summary" yaml:"summary"`
	IssueType string `json:"type" yaml:"type"`
	Flagged   bool   `json:"flagged" yaml:"flagged"`
}

// Cells returns the row in column order.
func (r Row) Cells() []string {
	return []string{r.Lead, r.Key, r.Summary, r.IssueType}
}

// IntegrityError reports an issue that reached assembly without a field every
// sprint search result is expected to carry.
type IntegrityError struct {
	Key   string
	Field string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("issue %s has no %s", e.Key, e.Field)
}

// AssembleRows builds one row per issue, in order. An issue without a status
// or an issue type yields an *IntegrityError.
func AssembleRows(issues []jira.Issue) ([]Row, error) {
	rows := make([]Row, 0, len(issues))
	for i := range issues {
		issue := &issues[i]
		status, ok := issue.StatusName()
		if !ok {
			return nil, &IntegrityError{Key: issue.Key, Field: "status"}
		}
		issueType, ok := issue.IssueTypeName()
		if !ok {
			return nil, &IntegrityError{Key: issue.Key, Field: "issue type"}
		}
		summary, ok := issue.Summary()
		if !ok {
			summary = MissingSummary
		}
		flag := issue.Flag()
		rows = append(rows, Row{
			Lead:      flag.String() + status,
			Key:       issue.Key,
			Summary:   summary,
			IssueType: issueType,
			Flagged:   bool(flag),
		})
	}
	return rows, nil
}

// Header returns the line printed above a group.
func Header(section Section, group Group) string {
	return fmt.Sprintf("******* %s in %s : %d *******", section.Label, group.Label, len(group.Issues))
}

// Table is an assembled group ready for output.
type Table struct {
	Component string `json:"component" yaml:"component"`
	Statuses  string `json:"statuses" yaml:"statuses"`
	Count     int    `json:"count" yaml:"count"`
	Header    string `json:"-" yaml:"-"`
	Rows      []Row  `json:"rows" yaml:"rows"`
}

// Report is the assembled output of one run.
type Report struct {
	Sprint    string  `json:"sprint" yaml:"sprint"`
	FromCache bool    `json:"from_cache" yaml:"from_cache"`
	Tables    []Table `json:"tables" yaml:"tables"`
}

// Assemble turns classified sections into tables, in section then group order.
func Assemble(sprint string, fromCache bool, sections []Section) (*Report, error) {
	r := &Report{Sprint: sprint, FromCache: fromCache, Tables: []Table{}}
	for _, section := range sections {
		for _, group := range section.Groups {
			rows, err := AssembleRows(group.Issues)
			if err != nil {
				return nil, fmt.Errorf("%s in %s: %w", section.Label, group.Label, err)
			}
			r.Tables = append(r.Tables, Table{
				Component: section.Label,
				Statuses:  group.Label,
				Count:     len(group.Issues),
				Header:    Header(section, group),
				Rows:      rows,
			})
		}
	}
	return r, nil
}
