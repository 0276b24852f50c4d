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

type PersonStore struct {
	db *sqlx.DB
}

func NewPersonStore(db *sqlx.DB) *PersonStore {
	return &PersonStore{db: db}
}

const personCols = `id, name, created_at, updated_at`

func (s *PersonStore) Create(ctx context.Context, name string) (*model.Person, error) {
	now := time.Now().UTC()

	var id int64
	err := s.db.GetContext(ctx, &id, s.db.Rebind(
		`INSERT INTO persons (name, created_at, updated_at) VALUES (?, ?, ?) RETURNING id`),
		name, now, now,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("person %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID returns nil, nil when no person has the given id.
func (s *PersonStore) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	var p model.Person
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+personCols+` FROM persons WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return &p, nil
}

// List returns all persons ordered by name.
func (s *PersonStore) List(ctx context.Context) ([]model.Person, error) {
	var persons []model.Person
	if err := s.db.SelectContext(ctx, &persons, `SELECT `+personCols+` FROM persons ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return persons, nil
}

func (s *PersonStore) Update(ctx context.Context, id int64, name string) (*model.Person, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE persons SET name = ?, updated_at = ? WHERE id = ?`),
		name, time.Now().UTC(), id,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("person %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the person; their assignments go with them via ON DELETE CASCADE.
func (s *PersonStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM persons WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}
