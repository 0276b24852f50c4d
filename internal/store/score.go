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

// ScoreOrder selects how a score listing is sorted.
type ScoreOrder int

const (
	ByTotal ScoreOrder = iota
	ByWeekly
)

// ScoreStore derives person scores from assignments. Nothing is stored.
type ScoreStore struct {
	db *sqlx.DB
}

func NewScoreStore(db *sqlx.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

// The weekly column only counts assignments in [weekStart, weekEnd).
const scoreSelect = `SELECT p.id AS person_id, p.name AS name,
	COALESCE(SUM(a.item_value), 0) AS total_score,
	COALESCE(SUM(CASE WHEN a.assigned_at >= ? AND a.assigned_at < ? THEN a.item_value ELSE 0 END), 0) AS weekly_score
	FROM persons p
	LEFT JOIN assignments a ON a.person_id = p.id`

// List returns a score row for every person, including those with no assignments.
func (s *ScoreStore) List(ctx context.Context, weekStart, weekEnd time.Time, order ScoreOrder) ([]model.PersonScore, error) {
	query := scoreSelect + ` GROUP BY p.id, p.name`
	switch order {
	case ByWeekly:
		query += ` ORDER BY weekly_score DESC, total_score DESC, p.name ASC`
	default:
		query += ` ORDER BY total_score DESC, p.name ASC`
	}

	var scores []model.PersonScore
	if err := s.db.SelectContext(ctx, &scores, s.db.Rebind(query), weekStart.UTC(), weekEnd.UTC()); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}

// Get returns the score for one person, or nil, nil when the person does not exist.
func (s *ScoreStore) Get(ctx context.Context, personID int64, weekStart, weekEnd time.Time) (*model.PersonScore, error) {
	query := scoreSelect + ` WHERE p.id = ? GROUP BY p.id, p.name`

	var ps model.PersonScore
	err := s.db.GetContext(ctx, &ps, s.db.Rebind(query), weekStart.UTC(), weekEnd.UTC(), personID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get score: %w", err)
	}
	return &ps, nil
}
