package jsonfrag

import (
	"encoding/json"
	"strings"
)

// ParseState describes how ParsePartial arrived at its result.
type ParseState string

const (
	StateEmpty      ParseState = "empty"
	StateSuccessful ParseState = "successful"
	StateRepaired   ParseState = "repaired"
	StateFailed     ParseState = "failed"
)

// ParseResult is the outcome of attempting to parse a possibly-incomplete
// JSON fragment.
type ParseResult struct {
	Value interface{}
	State ParseState
	Err   error
}

// ParsePartial parses potentially incomplete JSON, falling back to Fix
// before giving up. Used to best-effort decode a tool call's "arguments"
// string into a structured value, and to speculatively decode in-flight
// partialJson accumulations for early emission.
func ParsePartial(text string) ParseResult {
	if text == "" {
		return ParseResult{State: StateEmpty}
	}

	var value interface{}
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		return ParseResult{Value: value, State: StateSuccessful}
	} else if repaired := Fix(text); repaired != "" {
		if err2 := json.Unmarshal([]byte(repaired), &value); err2 == nil {
			return ParseResult{Value: value, State: StateRepaired}
		}
		return ParseResult{State: StateFailed, Err: err}
	} else {
		return ParseResult{State: StateFailed, Err: err}
	}
}

// BestEffortObject parses text as a JSON object, falling back to an empty
// map on any failure — the "argument string is parsed as JSON best-effort,
// empty-object on failure" rule from spec §4.1.1.
func BestEffortObject(text string) map[string]interface{} {
	if text == "" {
		return map[string]interface{}{}
	}
	result := ParsePartial(text)
	if obj, ok := result.Value.(map[string]interface{}); ok {
		return obj
	}
	return map[string]interface{}{}
}

// Accumulator concatenates partialJson fragments for one block index across
// a stream, the way the spec requires consumers to do before parsing.
type Accumulator struct {
	buf strings.Builder
}

// Write appends a partialJson fragment.
func (a *Accumulator) Write(fragment string) {
	a.buf.WriteString(fragment)
}

// String returns the concatenation of all fragments written so far.
func (a *Accumulator) String() string {
	return a.buf.String()
}

// Parse best-effort parses the accumulated fragments as a JSON object.
func (a *Accumulator) Parse() map[string]interface{} {
	return BestEffortObject(a.buf.String())
}
