package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-formflow/pkg/conditions"
	"github.com/goliatone/go-formflow/pkg/forms"
	"github.com/goliatone/go-formflow/pkg/options"
)

func TestCheckDefinitionAcceptsFixture(t *testing.T) {
	t.Parallel()

	e := testEngine()
	if err := e.CheckDefinition(consultationDefinition()); err != nil {
		t.Fatalf("fixture definition must be valid: %v", err)
	}
}

func TestCheckDefinitionWithNilResolverOption(t *testing.T) {
	t.Parallel()

	// A nil resolver keeps the default registry, so checking a
	// definition with static option sources still works.
	e := New(WithOptionsResolver(nil))
	if err := e.CheckDefinition(consultationDefinition()); err != nil {
		t.Fatalf("static sources must resolve through the default registry: %v", err)
	}
}

func TestCheckDefinitionCatchesProblems(t *testing.T) {
	t.Parallel()

	e := testEngine()

	cases := []struct {
		name    string
		mutate  func(*forms.FormDefinition)
		wantMsg string
	}{
		{
			name: "duplicate field key",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[1].Fields[0].Key = "budget"
			},
			wantMsg: "duplicate field key",
		},
		{
			name: "duplicate display order",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[1].DisplayOrder = def.Sections[0].DisplayOrder
			},
			wantMsg: "display order",
		},
		{
			name: "unknown field type",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[0].Fields[1].Type = "hologram"
			},
			wantMsg: "unknown field type",
		},
		{
			name: "unknown operator",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[1].Condition.Predicates[0].Operator = "resembles"
			},
			wantMsg: "unknown operator",
		},
		{
			name: "dangling condition reference",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[1].Condition.Predicates[0].Field = "no_such_field"
			},
			wantMsg: "unknown field",
		},
		{
			name: "bad pattern",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[0].Fields[1].Validations = []forms.ValidationRule{
					forms.PatternRule("([unclosed"),
				}
			},
			wantMsg: "pattern does not compile",
		},
		{
			name: "non-numeric threshold",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[1].Fields[0].Validations = []forms.ValidationRule{
					forms.MinRule("several"),
				}
			},
			wantMsg: "not numeric",
		},
		{
			name: "choice field without options",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[0].Fields[0].Options = nil
			},
			wantMsg: "no options source",
		},
		{
			name: "options on non-choice field",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[0].Fields[1].Options = &forms.OptionsSource{Kind: forms.OptionsStatic}
			},
			wantMsg: "does not take options",
		},
		{
			name: "unknown rule logic",
			mutate: func(def *forms.FormDefinition) {
				def.Sections[1].Condition.Logic = "xor"
			},
			wantMsg: "unknown rule logic",
		},
		{
			name: "missing agency",
			mutate: func(def *forms.FormDefinition) {
				def.AgencyID = ""
			},
			wantMsg: "AgencyID",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			def := consultationDefinition()
			tc.mutate(def)

			err := e.CheckDefinition(def)
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("want SchemaError, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestCheckDefinitionReportsEveryIssue(t *testing.T) {
	t.Parallel()

	e := testEngine()
	def := consultationDefinition()
	def.Sections[0].Fields[1].Type = "hologram"
	def.Sections[1].Fields[0].Key = "budget"

	err := e.CheckDefinition(def)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if len(schemaErr.Issues) < 2 {
		t.Fatalf("want all issues reported, got %v", schemaErr.Issues)
	}
}

func TestCheckDefinitionUnresolvableSharedSet(t *testing.T) {
	t.Parallel()

	registry := options.NewRegistry()
	e := New(WithOptionsResolver(registry))

	def := consultationDefinition()
	def.Sections[0].Fields[0].Options = &forms.OptionsSource{
		Kind:    forms.OptionsShared,
		SetName: "industries",
	}

	if err := e.CheckDefinition(def); err == nil {
		t.Fatal("unregistered shared set must fail the check")
	}

	registry.RegisterSet("industries", []forms.Option{{Value: "saas", Label: "SaaS"}})
	if err := e.CheckDefinition(def); err != nil {
		t.Fatalf("registered shared set must pass: %v", err)
	}
}

func TestPublishDefinition(t *testing.T) {
	t.Parallel()

	e := testEngine()
	def := consultationDefinition()

	published, err := e.PublishDefinition(def)
	if err != nil {
		t.Fatalf("PublishDefinition: %v", err)
	}
	if !published.Published || published.PublishedAt == nil {
		t.Fatalf("not frozen: %+v", published)
	}
	if def.Published {
		t.Fatal("input definition mutated")
	}

	if _, err := e.PublishDefinition(published); !errors.Is(err, ErrAlreadyPublished) {
		t.Fatalf("want ErrAlreadyPublished, got %v", err)
	}

	bad := consultationDefinition()
	bad.Sections[0].Fields[0].Options = nil
	if _, err := e.PublishDefinition(bad); err == nil {
		t.Fatal("invalid definition must not publish")
	}
}

func TestCheckCompatibilityRejectsKeyRename(t *testing.T) {
	t.Parallel()

	e := testEngine()
	published, err := e.PublishDefinition(consultationDefinition())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	renamed := published.NewDraftVersion()
	renamed.Sections[0].Fields[0].Key = "budget_range"

	err = e.CheckCompatibility(published, renamed)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError for renamed key, got %v", err)
	}

	grown := published.NewDraftVersion()
	grown.Sections[0].Fields = append(grown.Sections[0].Fields, forms.Field{
		Key: "timeline", Type: forms.FieldTypeText,
	})
	if err := e.CheckCompatibility(published, grown); err != nil {
		t.Fatalf("adding fields must be compatible: %v", err)
	}

	// Drafts that were never published may change freely.
	draft := consultationDefinition()
	other := consultationDefinition()
	other.Sections[0].Fields[0].Key = "budget_range"
	if err := e.CheckCompatibility(draft, other); err != nil {
		t.Fatalf("unpublished definitions are unconstrained: %v", err)
	}
}

func TestNewDraftVersionKeepsRule(t *testing.T) {
	t.Parallel()

	e := testEngine()
	published, err := e.PublishDefinition(consultationDefinition())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	draft := published.NewDraftVersion()
	if err := e.CheckDefinition(draft); err != nil {
		t.Fatalf("draft of a valid definition must stay valid: %v", err)
	}
	if draft.Version != published.Version+1 {
		t.Fatalf("draft version %d", draft.Version)
	}
}

func TestVisibleFieldsFiltersByCondition(t *testing.T) {
	t.Parallel()

	e := testEngine()
	sec := forms.Section{
		DisplayOrder: 1,
		Fields: []forms.Field{
			{Key: "always", Type: forms.FieldTypeText},
			{
				Key:  "gated",
				Type: forms.FieldTypeText,
				Condition: &conditions.Rule{Predicates: []conditions.Predicate{
					{Field: "always", Operator: conditions.OpIsNotEmpty},
				}},
			},
		},
	}

	def := &forms.FormDefinition{Sections: []forms.Section{sec}}

	fields := e.VisibleFields(def, sec, nil)
	if len(fields) != 1 || fields[0].Key != "always" {
		t.Fatalf("gated field must hide with no values: %+v", fields)
	}

	resp := &forms.FormResponse{Values: map[string]any{"always": "x"}}
	fields = e.VisibleFields(def, sec, resp)
	if len(fields) != 2 {
		t.Fatalf("gated field must show once its driver is set: %+v", fields)
	}
}
