package forms

import "time"

// ResponseStatus is the lifecycle state of a FormResponse. Transitions
// are one-way: not_started moves to in_progress on the first value
// write, in_progress moves to completed on a successful submit.
type ResponseStatus string

const (
	StatusNotStarted ResponseStatus = "not_started"
	StatusInProgress ResponseStatus = "in_progress"
	StatusCompleted  ResponseStatus = "completed"
)

// FormResponse is one client's answers against a specific definition
// version. Values is a flat fieldKey to scalar-or-list mapping; external
// consumers (content-brief generators, merge-field systems) read it
// directly by key name, so its persisted JSON shape must stay flat.
//
// CompletionPercent is always derived by the engine, never trusted from
// client input. Revision serializes concurrent autosaves at the storage
// boundary via compare-and-swap.
type FormResponse struct {
	ID                string         `json:"id,omitempty"`
	DefinitionID      string         `json:"definitionId"`
	DefinitionVersion int            `json:"definitionVersion"`
	EntityType        string         `json:"entityType,omitempty"`
	EntityID          string         `json:"entityId,omitempty"`
	Values            map[string]any `json:"values"`
	CurrentSection    int            `json:"currentSection"`
	CompletionPercent int            `json:"completionPercent"`
	Status            ResponseStatus `json:"status"`
	StartedAt         *time.Time     `json:"startedAt,omitempty"`
	LastActivityAt    *time.Time     `json:"lastActivityAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	Revision          int64          `json:"-"`
}

// NewResponse creates an empty not_started response bound to the given
// definition version and owning entity. Responses are created lazily on
// the first value write, not when a form is merely viewed.
func NewResponse(def *FormDefinition, entityType, entityID string) *FormResponse {
	return &FormResponse{
		DefinitionID:      def.ID,
		DefinitionVersion: def.Version,
		EntityType:        entityType,
		EntityID:          entityID,
		Values:            map[string]any{},
		Status:            StatusNotStarted,
	}
}

// Value returns the stored value for a field key.
func (r *FormResponse) Value(key string) (any, bool) {
	if r == nil || r.Values == nil {
		return nil, false
	}
	v, ok := r.Values[key]
	return v, ok
}

// Clone returns a deep-enough copy for snapshot passing: the values map
// is copied so engine mutations never alias the caller's response.
// Individual list values are copied one level deep.
func (r *FormResponse) Clone() *FormResponse {
	if r == nil {
		return nil
	}
	out := *r
	out.Values = make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		switch t := v.(type) {
		case []any:
			cp := make([]any, len(t))
			copy(cp, t)
			out.Values[k] = cp
		case []string:
			cp := make([]string, len(t))
			copy(cp, t)
			out.Values[k] = cp
		default:
			out.Values[k] = v
		}
	}
	out.StartedAt = cloneTime(r.StartedAt)
	out.LastActivityAt = cloneTime(r.LastActivityAt)
	out.CompletedAt = cloneTime(r.CompletedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	at := *t
	return &at
}
