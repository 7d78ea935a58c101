// Package jira provides the Jira client, the issue record types cached per
// sprint, the sprint query template, and custom-field decoding.
package jira

import (
	"encoding/json"
	"fmt"
)

// Issue represents a Jira issue from the REST API. It is also the record
// persisted in the sprint cache, so every field must survive a CBOR round trip.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the fields the report reads by name plus every other
// returned field, undecoded, in Custom.
type IssueFields struct {
	Summary    *string          `json:"summary"`
	Status     *StatusField     `json:"status"`
	IssueType  *IssueTypeField  `json:"issuetype"`
	Components []ComponentField `json:"components"`

	Custom map[string]json.RawMessage `json:"-" cbor:"custom"`
}

// StatusField represents a Jira issue status.
type StatusField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueTypeField represents a Jira issue type.
type IssueTypeField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ComponentField represents a project component attached to an issue.
type ComponentField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// searchResult represents a Jira JQL search response.
type searchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

var knownFields = map[string]bool{
	"summary":    true,
	"status":     true,
	"issuetype":  true,
	"components": true,
}

// issueFieldsJSON has IssueFields' layout without its JSON methods.
type issueFieldsJSON IssueFields

// UnmarshalJSON decodes the named fields and keeps all others in Custom.
func (f *IssueFields) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("decode issue fields: %w", err)
	}

	var known issueFieldsJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("decode issue fields: %w", err)
	}

	for name, raw := range all {
		if knownFields[name] {
			continue
		}
		if known.Custom == nil {
			known.Custom = make(map[string]json.RawMessage)
		}
		known.Custom[name] = raw
	}

	*f = IssueFields(known)
	return nil
}

// MarshalJSON writes the named fields and Custom back into one flat object.
func (f IssueFields) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(issueFieldsJSON(f))
	if err != nil {
		return nil, err
	}
	if len(f.Custom) == 0 {
		return data, nil
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for name, raw := range f.Custom {
		if !knownFields[name] {
			all[name] = raw
		}
	}
	return json.Marshal(all)
}

// Summary returns the issue summary and whether one was set.
func (i *Issue) Summary() (string, bool) {
	if i.Fields.Summary == nil {
		return "", false
	}
	return *i.Fields.Summary, true
}

// StatusName returns the status name and whether the issue has a status.
func (i *Issue) StatusName() (string, bool) {
	if i.Fields.Status == nil {
		return "", false
	}
	return i.Fields.Status.Name, true
}

// IssueTypeName returns the issue type name and whether one was set.
func (i *Issue) IssueTypeName() (string, bool) {
	if i.Fields.IssueType == nil {
		return "", false
	}
	return i.Fields.IssueType.Name, true
}

// HasComponent reports whether a component named exactly name is attached.
func (i *Issue) HasComponent(name string) bool {
	for _, c := range i.Fields.Components {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Flag reports whether the issue is flagged as an impediment.
func (i *Issue) Flag() Flag {
	return FlagFromFields(i.Fields.Custom)
}
