package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/tally/internal/model"
	"github.com/jmoiron/sqlx"
)

// ActionStore persists rewards and punishments in the shared actions table.
// Lookups are scoped by kind so a reward id never resolves as a punishment.
type ActionStore struct {
	db *sqlx.DB
}

func NewActionStore(db *sqlx.DB) *ActionStore {
	return &ActionStore{db: db}
}

const actionCols = `id, kind, name, value, created_at, updated_at`

func (s *ActionStore) Create(ctx context.Context, kind model.ActionKind, name string, value int) (*model.Action, error) {
	now := time.Now().UTC()

	var id int64
	err := s.db.GetContext(ctx, &id, s.db.Rebind(
		`INSERT INTO actions (kind, name, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		string(kind), name, value, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", kind, err)
	}
	return s.GetByID(ctx, kind, id)
}

// GetByID returns nil, nil when no action of the given kind has that id.
func (s *ActionStore) GetByID(ctx context.Context, kind model.ActionKind, id int64) (*model.Action, error) {
	var a model.Action
	err := s.db.GetContext(ctx, &a, s.db.Rebind(
		`SELECT `+actionCols+` FROM actions WHERE id = ? AND kind = ?`), id, string(kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return &a, nil
}

// List returns actions ordered by kind then name. An empty kind lists both.
func (s *ActionStore) List(ctx context.Context, kind model.ActionKind) ([]model.Action, error) {
	var actions []model.Action
	var err error
	if kind == "" {
		err = s.db.SelectContext(ctx, &actions,
			`SELECT `+actionCols+` FROM actions ORDER BY kind ASC, name ASC, id ASC`)
	} else {
		err = s.db.SelectContext(ctx, &actions, s.db.Rebind(
			`SELECT `+actionCols+` FROM actions WHERE kind = ? ORDER BY name ASC, id ASC`), string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}

// Update changes name and value. Past assignments keep the values they were given.
func (s *ActionStore) Update(ctx context.Context, kind model.ActionKind, id int64, name string, value int) (*model.Action, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE actions SET name = ?, value = ?, updated_at = ? WHERE id = ? AND kind = ?`),
		name, value, time.Now().UTC(), id, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}
	return s.GetByID(ctx, kind, id)
}

func (s *ActionStore) Delete(ctx context.Context, kind model.ActionKind, id int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM actions WHERE id = ? AND kind = ?`), id, string(kind))
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}
