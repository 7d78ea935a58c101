package jira

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// FlagFieldKey is the custom field that carries the "Flagged" marker:
//
//	"customfield_10000": [
//	    {"disabled": false, "id": "10000", "self": "https://...", "value": "Impediment"}
//	]
const FlagFieldKey = "customfield_10000"

// FlagImpediment is the only flag value that marks an issue as flagged.
const FlagImpediment = "Impediment"

// FlagMarker is prepended to the status of a flagged issue.
const FlagMarker = "🚩 "

// FlagEntry is one element of the flag custom field.
type FlagEntry struct {
	Disabled bool   `json:"disabled"`
	ID       string `json:"id"`
	SelfLink string `json:"self"`
	Value    string `json:"value"`
}

// FlagField is the decoded flag custom field: either FlagEntries or
// UnparsedFlag. Both expose their entries; UnparsedFlag has none.
type FlagField interface {
	Entries() []FlagEntry
}

// FlagEntries is a flag field whose value matched the expected shape.
type FlagEntries []FlagEntry

// Entries implements FlagField.
func (e FlagEntries) Entries() []FlagEntry { return e }

// UnparsedFlag is a flag field whose value did not match the expected shape.
// It reads as an empty entry list.
type UnparsedFlag struct {
	Raw json.RawMessage
	Err error
}

// Entries implements FlagField.
func (UnparsedFlag) Entries() []FlagEntry { return nil }

var flagEntryKeys = []string{"disabled", "id", "self", "value"}

var jsonNull = []byte("null")

// DecodeFlagField decodes the raw flag field value. It never fails: anything
// that is not an array of well-formed entries becomes UnparsedFlag.
func DecodeFlagField(raw json.RawMessage) FlagField {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return UnparsedFlag{Raw: raw, Err: err}
	}

	entries := make(FlagEntries, 0, len(elems))
	for i, elem := range elems {
		entry, err := decodeFlagEntry(elem)
		if err != nil {
			return UnparsedFlag{Raw: raw, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		entries = append(entries, entry)
	}
	return entries
}

func decodeFlagEntry(elem json.RawMessage) (FlagEntry, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(elem, &obj); err != nil {
		return FlagEntry{}, err
	}
	if obj == nil {
		return FlagEntry{}, errors.New("entry is null")
	}
	if len(obj) != len(flagEntryKeys) {
		return FlagEntry{}, fmt.Errorf("entry has %d keys, want %d", len(obj), len(flagEntryKeys))
	}

	var entry FlagEntry
	targets := []any{&entry.Disabled, &entry.ID, &entry.SelfLink, &entry.Value}
	for i, key := range flagEntryKeys {
		val, ok := obj[key]
		if !ok {
			return FlagEntry{}, fmt.Errorf("missing key %q", key)
		}
		if bytes.Equal(bytes.TrimSpace(val), jsonNull) {
			return FlagEntry{}, fmt.Errorf("key %q is null", key)
		}
		if err := json.Unmarshal(val, targets[i]); err != nil {
			return FlagEntry{}, fmt.Errorf("key %q: %w", key, err)
		}
	}
	return entry, nil
}

// Flag is the derived "flagged as impediment" attribute of an issue.
type Flag bool

// FlagFromFields derives the flag from an issue's custom fields. A missing
// or malformed flag field means not flagged.
func FlagFromFields(custom map[string]json.RawMessage) Flag {
	raw, ok := custom[FlagFieldKey]
	if !ok {
		return false
	}
	for _, entry := range DecodeFlagField(raw).Entries() {
		if entry.Value == FlagImpediment {
			return true
		}
	}
	return false
}

// String renders the marker prefix: FlagMarker when flagged, "" otherwise.
func (f Flag) String() string {
	if f {
		return FlagMarker
	}
	return ""
}
