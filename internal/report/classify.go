// Package report partitions a sprint's issues by component and status group
// and turns each partition into display rows.
package report

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sprintreport/sprintreport/internal/jira"
	"github.com/sprintreport/sprintreport/internal/telemetry"
)

// Wildcard is the configuration value that becomes a CatchAll matcher.
const Wildcard = "*"

// OthersLabel labels the catch-all component section.
const OthersLabel = "Others"

// Matcher selects a component or a status. It is either a single name
// compared exactly or the catch-all. Build one with Named, CatchAll or
// ParseMatcher; the zero value matches only the empty name.
type Matcher struct {
	name     string
	catchAll bool
}

// Named returns a matcher for exactly name.
func Named(name string) Matcher { return Matcher{name: name} }

// CatchAll returns the catch-all matcher.
func CatchAll() Matcher { return Matcher{catchAll: true} }

// ParseMatcher converts a configuration value, treating Wildcard as CatchAll.
func ParseMatcher(s string) Matcher {
	if s == Wildcard {
		return CatchAll()
	}
	return Named(s)
}

// IsCatchAll reports whether m is the catch-all.
func (m Matcher) IsCatchAll() bool { return m.catchAll }

// Name returns the matched name, or "" for the catch-all.
func (m Matcher) Name() string { return m.name }

func (m Matcher) String() string {
	if m.catchAll {
		return Wildcard
	}
	return m.name
}

// StatusTable is one group of statuses reported together.
type StatusTable []Matcher

// Label joins the table's entries with "/".
func (t StatusTable) Label() string {
	parts := make([]string, len(t))
	for i, m := range t {
		parts[i] = m.String()
	}
	return strings.Join(parts, "/")
}

// matchesAll reports whether any entry is the catch-all, which makes the
// whole table match every issue regardless of status.
func (t StatusTable) matchesAll() bool {
	for _, m := range t {
		if m.catchAll {
			return true
		}
	}
	return false
}

func (t StatusTable) matches(issue *jira.Issue) bool {
	if t.matchesAll() {
		return true
	}
	status, ok := issue.StatusName()
	if !ok {
		return false
	}
	for _, m := range t {
		if m.name == status {
			return true
		}
	}
	return false
}

// ParseComponents converts configured component names into matchers.
func ParseComponents(names []string) []Matcher {
	out := make([]Matcher, len(names))
	for i, n := range names {
		out[i] = ParseMatcher(n)
	}
	return out
}

// ParseStatusTables converts configured status lists into tables.
func ParseStatusTables(tables [][]string) []StatusTable {
	out := make([]StatusTable, len(tables))
	for i, statuses := range tables {
		out[i] = StatusTable(ParseComponents(statuses))
	}
	return out
}

// Section is the report for one configured component.
type Section struct {
	Label  string
	Groups []Group
}

// Group is the issues of one section that fall into one status table.
type Group struct {
	Label  string
	Issues []jira.Issue
}

// Classify partitions issues into one Section per component, in configured
// order, and one Group per status table within each section. Input order is
// kept in every group. An issue may appear in several sections or groups.
func Classify(issues []jira.Issue, components []Matcher, tables []StatusTable) []Section {
	return ClassifyContext(context.Background(), issues, components, tables)
}

// ClassifyContext is Classify with a tracing span attached to ctx.
func ClassifyContext(ctx context.Context, issues []jira.Issue, components []Matcher, tables []StatusTable) []Section {
	_, span := telemetry.Tracer("").Start(ctx, "report.classify",
		trace.WithAttributes(
			attribute.Int("issues", len(issues)),
			attribute.Int("components", len(components)),
			attribute.Int("status_tables", len(tables)),
		))
	defer span.End()

	var named []string
	for _, c := range components {
		if !c.catchAll {
			named = append(named, c.name)
		}
	}

	sections := make([]Section, 0, len(components))
	for _, c := range components {
		bucket := componentBucket(issues, c, named)
		section := Section{Label: c.name, Groups: make([]Group, 0, len(tables))}
		if c.catchAll {
			section.Label = OthersLabel
		}
		for _, t := range tables {
			group := Group{Label: t.Label(), Issues: []jira.Issue{}}
			for i := range bucket {
				if t.matches(&bucket[i]) {
					group.Issues = append(group.Issues, bucket[i])
				}
			}
			section.Groups = append(section.Groups, group)
		}
		sections = append(sections, section)
	}
	return sections
}

func componentBucket(issues []jira.Issue, c Matcher, named []string) []jira.Issue {
	bucket := []jira.Issue{}
	for i := range issues {
		issue := &issues[i]
		if c.catchAll {
			if !hasAnyComponent(issue, named) {
				bucket = append(bucket, *issue)
			}
			continue
		}
		if issue.HasComponent(c.name) {
			bucket = append(bucket, *issue)
		}
	}
	return bucket
}

func hasAnyComponent(issue *jira.Issue, names []string) bool {
	for _, n := range names {
		if issue.HasComponent(n) {
			return true
		}
	}
	return false
}
