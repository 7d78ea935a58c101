package jira

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSprint  = errors.New("sprint name is required")
	ErrMissingBoard   = errors.New("board name is required")
	ErrMissingProject = errors.New("project name is required")
)

// sprintQueryTemplate selects the issues still in the sprint after it started.
// Arguments: board, sprint, sprint, project.
const sprintQueryTemplate = `issueFunction not in removedAfterSprintStart("%s", "%s") AND sprint = "%s" and Project = "%s" ORDER BY status`

// SprintQuery builds the JQL for a sprint report. Values are substituted
// verbatim inside double quotes; no escaping is applied.
func SprintQuery(sprint, board, project string) (string, error) {
	switch {
	case sprint == "":
		return "", ErrMissingSprint
	case board == "":
		return "", ErrMissingBoard
	case project == "":
		return "", ErrMissingProject
	}
	return fmt.Sprintf(sprintQueryTemplate, board, sprint, sprint, project), nil
}
