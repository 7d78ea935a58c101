package jira

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagJSON(values ...string) json.RawMessage {
	entries := make([]map[string]any, 0, len(values))
	for i, v := range values {
		entries = append(entries, map[string]any{
			"disabled": false,
			"id":       "1000" + string(rune('0'+i)),
			"self":     "https://jira.example.com/rest/api/2/customFieldOption/10000",
			"value":    v,
		})
	}
	data, _ := json.Marshal(entries)
	return data
}

func TestDecodeFlagField(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		unparsed bool
		entries  int
	}{
		{"well formed", `[{"disabled":false,"id":"10000","self":"https://x","value":"Impediment"}]`, false, 1},
		{"empty array", `[]`, false, 0},
		{"null", `null`, false, 0},
		{"object instead of array", `{"value":"Impediment"}`, true, 0},
		{"string", `"Impediment"`, true, 0},
		{"missing key", `[{"disabled":false,"id":"10000","value":"Impediment"}]`, true, 0},
		{"extra key", `[{"disabled":false,"id":"10000","self":"https://x","value":"Impediment","color":"red"}]`, true, 0},
		{"wrong type", `[{"disabled":"no","id":"10000","self":"https://x","value":"Impediment"}]`, true, 0},
		{"null member", `[{"disabled":null,"id":"10000","self":"https://x","value":"Impediment"}]`, true, 0},
		{"null element", `[null]`, true, 0},
		{"malformed json", `[{"disabled":`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := DecodeFlagField(json.RawMessage(tt.raw))
			_, isUnparsed := field.(UnparsedFlag)
			assert.Equal(t, tt.unparsed, isUnparsed)
			assert.Len(t, field.Entries(), tt.entries)
		})
	}
}

func TestDecodeFlagFieldEntryValues(t *testing.T) {
	field := DecodeFlagField(json.RawMessage(`[{"disabled":true,"id":"10000","self":"https://x/10000","value":"Impediment"}]`))
	entries, ok := field.(FlagEntries)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, FlagEntry{Disabled: true, ID: "10000", SelfLink: "https://x/10000", Value: "Impediment"}, entries[0])
}

func TestFlagFromFields(t *testing.T) {
	tests := []struct {
		name   string
		custom map[string]json.RawMessage
		want   Flag
	}{
		{"field absent", map[string]json.RawMessage{"customfield_10001": flagJSON("Impediment")}, false},
		{"nil map", nil, false},
		{"impediment", map[string]json.RawMessage{FlagFieldKey: flagJSON("Impediment")}, true},
		{"impediment among others", map[string]json.RawMessage{FlagFieldKey: flagJSON("Blocked", "Impediment")}, true},
		{"other values only", map[string]json.RawMessage{FlagFieldKey: flagJSON("Blocked", "impediment")}, false},
		{"empty list", map[string]json.RawMessage{FlagFieldKey: json.RawMessage(`[]`)}, false},
		{"malformed shape", map[string]json.RawMessage{FlagFieldKey: json.RawMessage(`[{"value":"Impediment"}]`)}, false},
		{"null", map[string]json.RawMessage{FlagFieldKey: json.RawMessage(`null`)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlagFromFields(tt.custom))
		})
	}
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "🚩 ", Flag(true).String())
	assert.Equal(t, "", Flag(false).String())
}

func TestIssueFlag(t *testing.T) {
	issue := Issue{Key: "PROJ-1", Fields: IssueFields{Custom: map[string]json.RawMessage{FlagFieldKey: flagJSON("Impediment")}}}
	assert.True(t, bool(issue.Flag()))

	plain := Issue{Key: "PROJ-2"}
	assert.False(t, bool(plain.Flag()))
}
