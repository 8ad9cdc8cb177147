package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/forms"
)

func TestValidateHiddenFieldNeverBlocks(t *testing.T) {
	t.Parallel()

	field := forms.Field{
		Key:      "tax_id",
		Type:     forms.FieldTypeText,
		Required: true,
		Validations: []forms.ValidationRule{
			forms.PatternRule(`^\d+$`),
		},
	}

	for _, value := range []any{nil, "", "not even close", 42} {
		if errs := Validate(field, value, false); len(errs) != 0 {
			t.Fatalf("hidden field with value %v returned errors: %v", value, errs)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	t.Parallel()

	field := forms.Field{Key: "name", Type: forms.FieldTypeText, Required: true}

	errs := Validate(field, "", true)
	want := []Error{{FieldKey: "name", Kind: KindRequired, Message: "this field is required"}}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("required error mismatch (-want +got):\n%s", diff)
	}

	if errs := Validate(field, "Jordan", true); len(errs) != 0 {
		t.Fatalf("filled required field returned errors: %v", errs)
	}

	optional := forms.Field{Key: "nickname", Type: forms.FieldTypeText}
	if errs := Validate(optional, "", true); len(errs) != 0 {
		t.Fatalf("empty optional field returned errors: %v", errs)
	}
}

func TestValidatePatternScenario(t *testing.T) {
	t.Parallel()

	field := forms.Field{
		Key:  "slug",
		Type: forms.FieldTypeText,
		Validations: []forms.ValidationRule{
			forms.PatternRule(`^[a-z0-9-]+$`),
		},
	}

	errs := Validate(field, "Invalid Slug!", true)
	if len(errs) != 1 || errs[0].Kind != KindPattern {
		t.Fatalf("want exactly one pattern error, got %v", errs)
	}

	if errs := Validate(field, "valid-slug", true); len(errs) != 0 {
		t.Fatalf("valid slug returned errors: %v", errs)
	}
}

func TestValidateBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		field     forms.Field
		value     any
		wantKinds []string
	}{
		{
			name: "string too short",
			field: forms.Field{Key: "title", Type: forms.FieldTypeText,
				Validations: []forms.ValidationRule{forms.MinRule("3")}},
			value:     "ab",
			wantKinds: []string{KindMin},
		},
		{
			name: "string within range",
			field: forms.Field{Key: "title", Type: forms.FieldTypeText,
				Validations: []forms.ValidationRule{forms.MinRule("3"), forms.MaxRule("10")}},
			value:     "hello",
			wantKinds: nil,
		},
		{
			name: "number below min",
			field: forms.Field{Key: "pages", Type: forms.FieldTypeNumber,
				Validations: []forms.ValidationRule{forms.MinRule("5")}},
			value:     float64(3),
			wantKinds: []string{KindMin},
		},
		{
			name: "number above max",
			field: forms.Field{Key: "pages", Type: forms.FieldTypeNumber,
				Validations: []forms.ValidationRule{forms.MaxRule("100")}},
			value:     "250",
			wantKinds: []string{KindMax},
		},
		{
			name: "non-numeric value on number bound",
			field: forms.Field{Key: "pages", Type: forms.FieldTypeNumber,
				Validations: []forms.ValidationRule{forms.MinRule("5")}},
			value:     "lots",
			wantKinds: []string{KindType, KindType},
		},
		{
			name: "multiselect selection count",
			field: forms.Field{Key: "services", Type: forms.FieldTypeMultiSelect,
				Validations: []forms.ValidationRule{forms.MinRule("2")}},
			value:     []any{"design"},
			wantKinds: []string{KindMin},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			errs := Validate(tc.field, tc.value, true)
			var kinds []string
			for _, e := range errs {
				kinds = append(kinds, e.Kind)
			}
			if diff := cmp.Diff(tc.wantKinds, kinds); diff != "" {
				t.Fatalf("error kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateImplicitFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field forms.Field
		value any
		valid bool
	}{
		{"good email", forms.Field{Key: "email", Type: forms.FieldTypeEmail}, "a@example.com", true},
		{"bad email", forms.Field{Key: "email", Type: forms.FieldTypeEmail}, "nope", false},
		{"good url", forms.Field{Key: "site", Type: forms.FieldTypeURL}, "https://example.com", true},
		{"relative url", forms.Field{Key: "site", Type: forms.FieldTypeURL}, "/about", false},
		{"good date", forms.Field{Key: "launch", Type: forms.FieldTypeDate}, "2026-09-01", true},
		{"bad date", forms.Field{Key: "launch", Type: forms.FieldTypeDate}, "tomorrow", false},
		{"good number", forms.Field{Key: "pages", Type: forms.FieldTypeNumber}, "12.5", true},
		{"bad number", forms.Field{Key: "pages", Type: forms.FieldTypeNumber}, "a dozen", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			errs := Validate(tc.field, tc.value, true)
			if tc.valid && len(errs) != 0 {
				t.Fatalf("want valid, got %v", errs)
			}
			if !tc.valid && len(errs) == 0 {
				t.Fatal("want a format error, got none")
			}
		})
	}
}

func TestValidateSurfacesAllViolations(t *testing.T) {
	t.Parallel()

	field := forms.Field{
		Key:  "code",
		Type: forms.FieldTypeText,
		Validations: []forms.ValidationRule{
			forms.MinRule("10"),
			forms.PatternRule(`^[a-z]+$`),
		},
	}

	errs := Validate(field, "ABC", true)
	if len(errs) != 2 {
		t.Fatalf("want both min and pattern errors, got %v", errs)
	}
	if errs[0].Kind != KindMin || errs[1].Kind != KindPattern {
		t.Fatalf("rule order must be min before pattern, got %v", errs)
	}
}

func TestValidateOptions(t *testing.T) {
	t.Parallel()

	opts := []forms.Option{{Value: "low"}, {Value: "medium"}, {Value: "high"}}

	single := forms.Field{Key: "budget", Type: forms.FieldTypeSelect}
	if errs := ValidateOptions(single, "high", opts); len(errs) != 0 {
		t.Fatalf("allowed option rejected: %v", errs)
	}
	errs := ValidateOptions(single, "enormous", opts)
	if len(errs) != 1 || errs[0].Kind != KindOption {
		t.Fatalf("want one option error, got %v", errs)
	}

	multi := forms.Field{Key: "tiers", Type: forms.FieldTypeMultiSelect}
	errs = ValidateOptions(multi, []any{"low", "bogus"}, opts)
	if len(errs) != 1 || errs[0].Kind != KindOption {
		t.Fatalf("want one option error for the bad element, got %v", errs)
	}

	if errs := ValidateOptions(single, "", opts); len(errs) != 0 {
		t.Fatalf("empty value must not trigger option errors: %v", errs)
	}
}
