// Package storage declares the persistence boundary the engine's
// callers use. The engine itself never touches storage; it computes new
// response snapshots and the caller persists them with an optimistic
// revision check, retrying against fresh state on conflict.
package storage

import (
	"context"
	"errors"

	"github.com/goliatone/go-formflow/pkg/forms"
)

// ErrNotFound indicates the requested definition or response does not
// exist.
var ErrNotFound = errors.New("storage: not found")

// ErrConflict indicates the revision check failed: another writer saved
// the response first. Callers reload the response, replay
// ApplyValueChange against the fresh snapshot and save again.
var ErrConflict = errors.New("storage: revision conflict")

// Store is the persistence collaborator contract.
type Store interface {
	// LoadDefinition fetches one definition version.
	LoadDefinition(ctx context.Context, id string, version int) (*forms.FormDefinition, error)

	// SaveDefinition persists a definition version. Saving an existing
	// (id, version) pair replaces the stored document; published
	// versions should only ever be replaced with identical structure.
	SaveDefinition(ctx context.Context, def *forms.FormDefinition) error

	// LoadResponse fetches a response by ID, including its current
	// revision.
	LoadResponse(ctx context.Context, id string) (*forms.FormResponse, error)

	// SaveResponse persists the response if its stored revision still
	// equals expectedRevision, returning the new revision. A zero
	// expectedRevision inserts a new response. Mismatches return
	// ErrConflict.
	SaveResponse(ctx context.Context, resp *forms.FormResponse, expectedRevision int64) (int64, error)
}
