package engine

import (
	"errors"

	"github.com/goliatone/go-formflow/pkg/forms"
)

// ErrAlreadyPublished indicates a publish attempt on a definition that
// is already frozen.
var ErrAlreadyPublished = errors.New("engine: definition is already published")

// PublishDefinition checks the definition and returns a published,
// frozen copy. From here on structural edits must go through
// NewDraftVersion; the published version never changes underneath
// in-flight responses.
func (e *Engine) PublishDefinition(def *forms.FormDefinition) (*forms.FormDefinition, error) {
	if def.Published {
		return nil, ErrAlreadyPublished
	}
	if err := e.CheckDefinition(def); err != nil {
		return nil, err
	}

	published := def.Clone()
	published.Published = true
	now := e.now()
	published.PublishedAt = &now
	published.UpdatedAt = now
	return published, nil
}

// CheckCompatibility verifies that next is a legal successor of a
// published definition. Field keys are response-storage keys: removing
// or renaming one orphans stored values and breaks external consumers
// that read the flat values object by key, so both are rejected. Adding
// fields and sections is always fine.
func (e *Engine) CheckCompatibility(published, next *forms.FormDefinition) error {
	if !published.Published {
		return nil
	}

	nextKeys := map[string]bool{}
	for _, key := range next.FieldKeys() {
		nextKeys[key] = true
	}

	var issues []SchemaIssue
	for _, sec := range published.Sections {
		for _, f := range sec.Fields {
			if !nextKeys[f.Key] {
				issues = append(issues, SchemaIssue{
					Section:  sec.Title,
					FieldKey: f.Key,
					Message:  "field key removed or renamed after publication",
				})
			}
		}
	}
	if len(issues) > 0 {
		return &SchemaError{Issues: issues}
	}
	return nil
}
