package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/tally/internal/model"
	"github.com/jmoiron/sqlx"
)

const (
	DefaultAssignmentLimit = 100
	MaxAssignmentLimit     = 500
)

type AssignmentStore struct {
	db *sqlx.DB
}

func NewAssignmentStore(db *sqlx.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

const assignmentCols = `id, person_id, item_type, item_id, item_name, item_value, assigned_at`

// CreateBulk assigns one reward or punishment to every person in personIDs,
// one row per person, inside a single transaction. The item's current name and
// value are copied onto each row. Nothing is written unless every person
// exists and the item exists with the requested kind; an item of the other
// kind is reported as ErrNotFound.
func (s *AssignmentStore) CreateBulk(ctx context.Context, personIDs []int64, itemType model.ActionKind, itemID int64, at time.Time) ([]model.Assignment, error) {
	if len(personIDs) == 0 {
		return nil, fmt.Errorf("no persons given")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var item model.Action
	// Kind-scoped like the /api/rewards and /api/punishments lookups, so an id
	// of the other kind is simply not found.
	err = tx.GetContext(ctx, &item, tx.Rebind(
		`SELECT `+actionCols+` FROM actions WHERE id = ? AND kind = ?`), itemID, string(itemType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", itemType, itemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	query, args, err := sqlx.In(`SELECT id FROM persons WHERE id IN (?)`, personIDs)
	if err != nil {
		return nil, fmt.Errorf("build person query: %w", err)
	}
	var found []int64
	if err := tx.SelectContext(ctx, &found, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("check persons: %w", err)
	}
	if missing := missingIDs(personIDs, found); len(missing) > 0 {
		return nil, fmt.Errorf("person %s: %w", joinIDs(missing), ErrNotFound)
	}

	at = at.UTC().Truncate(time.Microsecond)
	insert := tx.Rebind(`INSERT INTO assignments (person_id, item_type, item_id, item_name, item_value, assigned_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

	created := make([]model.Assignment, 0, len(personIDs))
	for _, personID := range personIDs {
		var id int64
		if err := tx.GetContext(ctx, &id, insert,
			personID, string(item.Kind), item.ID, item.Name, item.Value, at,
		); err != nil {
			return nil, fmt.Errorf("insert assignment for person %d: %w", personID, err)
		}
		created = append(created, model.Assignment{
			ID:         id,
			PersonID:   personID,
			ItemType:   item.Kind,
			ItemID:     item.ID,
			ItemName:   item.Name,
			ItemValue:  item.Value,
			AssignedAt: at,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assignments: %w", err)
	}
	return created, nil
}

// GetByID returns nil, nil when the assignment does not exist.
func (s *AssignmentStore) GetByID(ctx context.Context, id int64) (*model.Assignment, error) {
	var a model.Assignment
	err := s.db.GetContext(ctx, &a, s.db.Rebind(`SELECT `+assignmentCols+` FROM assignments WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

// List returns assignments matching f, newest first.
func (s *AssignmentStore) List(ctx context.Context, f model.AssignmentFilter) ([]model.Assignment, error) {
	var (
		where []string
		args  []any
	)
	if f.PersonID != 0 {
		where = append(where, "person_id = ?")
		args = append(args, f.PersonID)
	}
	if f.ItemType != "" {
		where = append(where, "item_type = ?")
		args = append(args, string(f.ItemType))
	}
	if !f.From.IsZero() {
		where = append(where, "assigned_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "assigned_at < ?")
		args = append(args, f.To.UTC())
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultAssignmentLimit
	}
	if limit > MaxAssignmentLimit {
		limit = MaxAssignmentLimit
	}

	query := `SELECT ` + assignmentCols + ` FROM assignments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY assigned_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	var assignments []model.Assignment
	if err := s.db.SelectContext(ctx, &assignments, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

func (s *AssignmentStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM assignments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

func missingIDs(want, found []int64) []int64 {
	seen := make(map[int64]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
