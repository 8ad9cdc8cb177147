package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrResponseCompleted indicates a value write against a response that
// already completed. Completed is terminal in this engine; reopening a
// response is a product policy the caller implements by cloning into a
// fresh response.
var ErrResponseCompleted = errors.New("engine: response is already completed")

// ErrNilResponse indicates an operation that needs an existing response
// received nil.
var ErrNilResponse = errors.New("engine: response is nil")

// UnknownFieldError indicates a mutation referenced a field key absent
// from the definition. This usually means the client holds a stale
// schema; the fix is to refetch the definition and retry.
type UnknownFieldError struct {
	Key string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("engine: unknown field key %q; refetch the form definition", e.Key)
}

// SchemaIssue is one problem found in a definition, with enough location
// detail for the builder UI to point at it.
type SchemaIssue struct {
	Section  string `json:"section,omitempty"`
	FieldKey string `json:"fieldKey,omitempty"`
	Message  string `json:"message"`
}

// SchemaError aggregates every problem CheckDefinition found. A
// malformed definition is a data-integrity bug surfaced to the agency
// author at publish time, never tolerated silently at evaluation time.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 {
		return "engine: invalid definition"
	}
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		var loc string
		switch {
		case issue.FieldKey != "":
			loc = issue.FieldKey + ": "
		case issue.Section != "":
			loc = issue.Section + ": "
		}
		msgs = append(msgs, loc+issue.Message)
	}
	return "engine: invalid definition: " + strings.Join(msgs, "; ")
}
