package forms

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/conditions"
)

const sampleDocument = `
agencyId: studio-nine
slug: client-consultation
version: 1
type: consultation
title: "  New Project Consultation  "
sections:
  - title: About the project
    displayOrder: 10
    required: true
    fields:
      - key: budget
        type: select
        label: <b>Budget</b> range
        required: true
        options:
          kind: static
          static:
            - {value: low, label: Low}
            - {value: medium, label: Medium}
            - {value: high, label: High}
  - title: Enterprise details
    displayOrder: 20
    condition:
      logic: and
      predicates:
        - {field: budget, operator: equals, value: high}
    fields:
      - key: team_size
        type: number
        validations:
          - kind: min
            params: {value: "1"}
`

func TestParseDefinition(t *testing.T) {
	t.Parallel()

	def, err := ParseDefinition([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("ParseDefinition returned error: %v", err)
	}

	if def.Slug != "client-consultation" || def.Type != FormTypeConsultation {
		t.Fatalf("identity mismatch: %+v", def)
	}
	if def.Title != "New Project Consultation" {
		t.Fatalf("title not trimmed: %q", def.Title)
	}
	if len(def.Sections) != 2 {
		t.Fatalf("want 2 sections, got %d", len(def.Sections))
	}

	budget, _, ok := def.FieldByKey("budget")
	if !ok {
		t.Fatal("budget field not found")
	}
	if budget.Label != "Budget range" {
		t.Fatalf("label not sanitized: %q", budget.Label)
	}
	if budget.Options == nil || budget.Options.Kind != OptionsStatic || len(budget.Options.Static) != 3 {
		t.Fatalf("options not decoded: %+v", budget.Options)
	}

	cond := def.Sections[1].Condition
	if cond == nil || len(cond.Predicates) != 1 {
		t.Fatalf("condition not decoded: %+v", cond)
	}
	want := conditions.Predicate{Field: "budget", Operator: conditions.OpEquals, Value: "high"}
	if diff := cmp.Diff(want, cond.Predicates[0]); diff != "" {
		t.Fatalf("predicate mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefinitionErrors(t *testing.T) {
	t.Parallel()

	if _, err := ParseDefinition(nil); err == nil {
		t.Fatal("empty document must error")
	}
	if _, err := ParseDefinition([]byte("{not yaml")); err == nil {
		t.Fatal("malformed document must error")
	}
}

func TestEncodeDefinitionRoundTrip(t *testing.T) {
	t.Parallel()

	def, err := ParseDefinition([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	raw, err := EncodeDefinition(def)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	again, err := ParseDefinition(raw)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if diff := cmp.Diff(def, again); diff != "" {
		t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestSortedSectionsGapTolerant(t *testing.T) {
	t.Parallel()

	def := &FormDefinition{Sections: []Section{
		{Title: "third", DisplayOrder: 300},
		{Title: "first", DisplayOrder: 5},
		{Title: "second", DisplayOrder: 42},
	}}

	var got []string
	for _, sec := range def.SortedSections() {
		got = append(got, sec.Title)
	}
	want := []string{"first", "second", "third"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}

	// The definition's own slice order stays untouched.
	if def.Sections[0].Title != "third" {
		t.Fatal("SortedSections mutated the definition")
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	def, err := ParseDefinition([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	clone := def.Clone()
	clone.Sections[0].Fields[0].Key = "mutated"
	clone.Sections[1].Condition.Predicates[0].Value = "mutated"
	clone.Sections[0].Fields[0].Options.Static[0].Value = "mutated"

	if _, _, ok := def.FieldByKey("budget"); !ok {
		t.Fatal("clone mutation leaked into original field key")
	}
	if def.Sections[1].Condition.Predicates[0].Value != "high" {
		t.Fatal("clone mutation leaked into original condition")
	}
	if def.Sections[0].Fields[0].Options.Static[0].Value != "low" {
		t.Fatal("clone mutation leaked into original options")
	}
}

func TestNewDraftVersion(t *testing.T) {
	t.Parallel()

	def, err := ParseDefinition([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	def.Published = true

	draft := def.NewDraftVersion()
	if draft.Version != 2 || draft.Published || draft.PublishedAt != nil {
		t.Fatalf("draft not reset: %+v", draft)
	}
	if def.Version != 1 || !def.Published {
		t.Fatal("original version mutated")
	}
}

func TestResponseClone(t *testing.T) {
	t.Parallel()

	def := &FormDefinition{ID: "d1", Version: 3}
	resp := NewResponse(def, "consultation", "c-77")
	if resp.Status != StatusNotStarted || resp.DefinitionVersion != 3 {
		t.Fatalf("unexpected new response: %+v", resp)
	}

	resp.Values["services"] = []any{"design"}
	clone := resp.Clone()
	clone.Values["services"].([]any)[0] = "mutated"
	clone.Values["extra"] = "x"

	if resp.Values["services"].([]any)[0] != "design" {
		t.Fatal("clone shares list values with original")
	}
	if _, ok := resp.Values["extra"]; ok {
		t.Fatal("clone shares the values map with original")
	}
}
