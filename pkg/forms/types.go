// Package forms defines the versioned form schema agencies author and the
// response object clients fill against it. The types here are plain data;
// evaluation lives in pkg/conditions, pkg/validation and pkg/engine.
package forms

import (
	"sort"
	"time"

	"github.com/goliatone/go-formflow/pkg/conditions"
)

// FieldType is the closed enumeration of supported input kinds. Unknown
// types are rejected at publish time rather than silently rendered as
// text.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeEmail       FieldType = "email"
	FieldTypeURL         FieldType = "url"
	FieldTypeNumber      FieldType = "number"
	FieldTypePhone       FieldType = "phone"
	FieldTypeDate        FieldType = "date"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeFile        FieldType = "file"
)

// Valid reports whether t is part of the closed enumeration.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypeURL,
		FieldTypeNumber, FieldTypePhone, FieldTypeDate, FieldTypeSelect,
		FieldTypeMultiSelect, FieldTypeRadio, FieldTypeCheckbox, FieldTypeFile:
		return true
	}
	return false
}

// Numeric reports whether min/max rules constrain the value itself rather
// than its length.
func (t FieldType) Numeric() bool { return t == FieldTypeNumber }

// Choice reports whether the field selects from an options source.
func (t FieldType) Choice() bool {
	switch t {
	case FieldTypeSelect, FieldTypeMultiSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	}
	return false
}

// Multi reports whether the field's value is a list of selections.
func (t FieldType) Multi() bool {
	return t == FieldTypeMultiSelect || t == FieldTypeCheckbox
}

// FormType scopes a definition to the product surface it serves.
type FormType string

const (
	FormTypeConsultation  FormType = "consultation"
	FormTypeQuestionnaire FormType = "questionnaire"
	FormTypeCustom        FormType = "custom"
)

// Valid reports whether t is a known form type.
func (t FormType) Valid() bool {
	switch t {
	case FormTypeConsultation, FormTypeQuestionnaire, FormTypeCustom:
		return true
	}
	return false
}

// Canonical validation rule kinds. Numeric bounds encode their threshold
// in Params["value"]; pattern rules carry the expression in
// Params["pattern"].
const (
	ValidationRuleMin     = "min"
	ValidationRuleMax     = "max"
	ValidationRulePattern = "pattern"
)

// ValidationRule is a single declarative constraint on a field value.
type ValidationRule struct {
	Kind   string            `json:"kind"             yaml:"kind" validate:"required,oneof=min max pattern"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// MinRule builds a min constraint (string length or numeric lower bound
// depending on the field type).
func MinRule(value string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMin, Params: map[string]string{"value": value}}
}

// MaxRule builds a max constraint.
func MaxRule(value string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMax, Params: map[string]string{"value": value}}
}

// PatternRule builds a regular-expression constraint. The expression must
// compile; CheckDefinition rejects definitions with bad patterns.
func PatternRule(expr string) ValidationRule {
	return ValidationRule{Kind: ValidationRulePattern, Params: map[string]string{"pattern": expr}}
}

// OptionsSourceKind distinguishes where a choice field's options come
// from.
type OptionsSourceKind string

const (
	OptionsStatic   OptionsSourceKind = "static"
	OptionsShared   OptionsSourceKind = "shared"
	OptionsExternal OptionsSourceKind = "external"
)

// Option is one selectable value/label pair.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// OptionsSource describes the origin of a choice field's options: an
// inline static list, a named shared set registered with the resolver, or
// an external reference resolved by a collaborator.
type OptionsSource struct {
	Kind     OptionsSourceKind `json:"kind"                yaml:"kind" validate:"required,oneof=static shared external"`
	Static   []Option          `json:"static,omitempty"    yaml:"static,omitempty"`
	SetName  string            `json:"set,omitempty"       yaml:"set,omitempty"`
	External string            `json:"external,omitempty"  yaml:"external,omitempty"`
}

// Field models one input. Key is the response-storage key and must be
// unique across the whole definition; renaming it after publication is a
// breaking change rejected by CheckCompatibility.
type Field struct {
	Key         string           `json:"key"                   yaml:"key" validate:"required"`
	Type        FieldType        `json:"type"                  yaml:"type" validate:"required"`
	Label       string           `json:"label,omitempty"       yaml:"label,omitempty"`
	Help        string           `json:"help,omitempty"        yaml:"help,omitempty"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool             `json:"required"              yaml:"required"`
	Validations []ValidationRule `json:"validations,omitempty" yaml:"validations,omitempty" validate:"dive"`
	Condition   *conditions.Rule `json:"condition,omitempty"   yaml:"condition,omitempty"`
	Options     *OptionsSource   `json:"options,omitempty"     yaml:"options,omitempty"`
}

// Section is an ordered group of fields with its own visibility rule.
// DisplayOrder values are unique within the definition but need not be
// contiguous.
type Section struct {
	Title        string           `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	DisplayOrder int              `json:"displayOrder"    yaml:"displayOrder"`
	Required     bool             `json:"required"        yaml:"required"`
	Condition    *conditions.Rule `json:"condition,omitempty" yaml:"condition,omitempty"`
	Fields       []Field          `json:"fields"          yaml:"fields" validate:"dive"`
}

// FormDefinition is the versioned schema a response is filled against.
// Once Published the structure is immutable; edits go through
// NewDraftVersion. Definitions are never hard-deleted while responses
// reference them; Archived soft-hides them instead.
type FormDefinition struct {
	ID          string     `json:"id,omitempty"       yaml:"id,omitempty"`
	AgencyID    string     `json:"agencyId"           yaml:"agencyId" validate:"required"`
	Slug        string     `json:"slug"               yaml:"slug" validate:"required"`
	Version     int        `json:"version"            yaml:"version" validate:"min=1"`
	Type        FormType   `json:"type"               yaml:"type" validate:"required"`
	Title       string     `json:"title,omitempty"    yaml:"title,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Sections    []Section  `json:"sections"           yaml:"sections" validate:"dive"`
	Published   bool       `json:"published"          yaml:"published"`
	Archived    bool       `json:"archived,omitempty" yaml:"archived,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
}

// SortedSections returns the sections ordered by DisplayOrder. The sort
// is stable so authoring order breaks ties; gaps between order values are
// fine.
func (d *FormDefinition) SortedSections() []Section {
	out := make([]Section, len(d.Sections))
	copy(out, d.Sections)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// FieldByKey finds a field anywhere in the definition along with its
// owning section.
func (d *FormDefinition) FieldByKey(key string) (Field, Section, bool) {
	for _, sec := range d.Sections {
		for _, f := range sec.Fields {
			if f.Key == key {
				return f, sec, true
			}
		}
	}
	return Field{}, Section{}, false
}

// FieldKeys returns every field key in section order. Duplicates are
// preserved so CheckDefinition can report them.
func (d *FormDefinition) FieldKeys() []string {
	var keys []string
	for _, sec := range d.SortedSections() {
		for _, f := range sec.Fields {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Clone returns a deep copy of the definition.
func (d *FormDefinition) Clone() *FormDefinition {
	out := *d
	if d.PublishedAt != nil {
		at := *d.PublishedAt
		out.PublishedAt = &at
	}
	out.Sections = make([]Section, len(d.Sections))
	for i, sec := range d.Sections {
		cp := sec
		cp.Condition = sec.Condition.Clone()
		cp.Fields = make([]Field, len(sec.Fields))
		for j, f := range sec.Fields {
			fc := f
			fc.Condition = f.Condition.Clone()
			if f.Options != nil {
				oc := *f.Options
				if len(f.Options.Static) > 0 {
					oc.Static = make([]Option, len(f.Options.Static))
					copy(oc.Static, f.Options.Static)
				}
				fc.Options = &oc
			}
			if len(f.Validations) > 0 {
				fc.Validations = make([]ValidationRule, len(f.Validations))
				for k, rule := range f.Validations {
					rc := rule
					if len(rule.Params) > 0 {
						rc.Params = make(map[string]string, len(rule.Params))
						for pk, pv := range rule.Params {
							rc.Params[pk] = pv
						}
					}
					fc.Validations[k] = rc
				}
			}
			cp.Fields[j] = fc
		}
		out.Sections[i] = cp
	}
	return &out
}

// NewDraftVersion clones the definition into the next unpublished
// version. The published original stays frozen.
func (d *FormDefinition) NewDraftVersion() *FormDefinition {
	draft := d.Clone()
	draft.Version = d.Version + 1
	draft.Published = false
	draft.PublishedAt = nil
	return draft
}
