// Package sqlite is the reference Store implementation. Definitions and
// responses persist as JSON documents alongside the columns queries
// need, keeping the stored values object in the flat key-to-value shape
// external consumers read directly.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-formflow/pkg/forms"
	"github.com/goliatone/go-formflow/pkg/storage"
)

// Store persists definitions and responses in a SQLite database.
type Store struct {
	db  *sql.DB
	log *logrus.Logger
}

// Option customises the store.
type Option func(*Store)

// WithLogger routes operational logging (migrations, conflicts) through
// the supplied logger instead of the default one.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Open opens (creating if necessary) the database at path and applies
// pending migrations.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	store := &Store{db: db, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(store)
	}

	if err := migrateDB(db); err != nil {
		db.Close()
		return nil, err
	}
	store.log.WithField("path", path).Debug("sqlite store ready")
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadDefinition implements storage.Store.
func (s *Store) LoadDefinition(ctx context.Context, id string, version int) (*forms.FormDefinition, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM form_definition
		WHERE id = ? AND version = ?`,
		id, version,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("definition %s v%d: %w", id, version, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load definition: %w", err)
	}

	var def forms.FormDefinition
	if err := json.Unmarshal(payload, &def); err != nil {
		return nil, fmt.Errorf("sqlite: decode definition %s v%d: %w", id, version, err)
	}
	return &def, nil
}

// SaveDefinition implements storage.Store. Definitions without an ID
// get one assigned.
func (s *Store) SaveDefinition(ctx context.Context, def *forms.FormDefinition) error {
	if def.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("sqlite: assign definition id: %w", err)
		}
		def.ID = id.String()
	}

	payload, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("sqlite: encode definition: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form_definition (id, version, agency_id, slug, form_type, published, archived, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id, version) DO UPDATE SET
			published  = excluded.published,
			archived   = excluded.archived,
			payload    = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`,
		def.ID, def.Version, def.AgencyID, def.Slug, string(def.Type),
		def.Published, def.Archived, payload,
	)
	if err != nil {
		return fmt.Errorf("sqlite: save definition: %w", err)
	}
	return nil
}

// LoadResponse implements storage.Store.
func (s *Store) LoadResponse(ctx context.Context, id string) (*forms.FormResponse, error) {
	var (
		payload  []byte
		revision int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, revision FROM form_response WHERE id = ?`,
		id,
	).Scan(&payload, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("response %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load response: %w", err)
	}

	var resp forms.FormResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("sqlite: decode response %s: %w", id, err)
	}
	resp.Revision = revision
	return &resp, nil
}

// SaveResponse implements storage.Store. A zero expectedRevision
// inserts; anything else updates only if the stored revision still
// matches, returning storage.ErrConflict when another writer got there
// first.
func (s *Store) SaveResponse(ctx context.Context, resp *forms.FormResponse, expectedRevision int64) (int64, error) {
	if resp.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return 0, fmt.Errorf("sqlite: assign response id: %w", err)
		}
		resp.ID = id.String()
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return 0, fmt.Errorf("sqlite: encode response: %w", err)
	}

	if expectedRevision == 0 {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO form_response (id, definition_id, definition_version, entity_type, entity_id, status, revision, payload)
			VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
			resp.ID, resp.DefinitionID, resp.DefinitionVersion,
			resp.EntityType, resp.EntityID, string(resp.Status), payload,
		)
		if err != nil {
			return 0, fmt.Errorf("sqlite: insert response: %w", err)
		}
		resp.Revision = 1
		return 1, nil
	}

	newRevision := expectedRevision + 1
	result, err := s.db.ExecContext(ctx, `
		UPDATE form_response
		SET status = ?, revision = ?, payload = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND revision = ?`,
		string(resp.Status), newRevision, payload, resp.ID, expectedRevision,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: update response: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: update response: %w", err)
	}
	if affected == 0 {
		s.log.WithFields(logrus.Fields{
			"response": resp.ID,
			"expected": expectedRevision,
		}).Debug("response revision conflict")
		return 0, fmt.Errorf("response %s at revision %d: %w", resp.ID, expectedRevision, storage.ErrConflict)
	}

	resp.Revision = newRevision
	return newRevision, nil
}
