package model

import "time"

// ActionKind distinguishes rewards from punishments in the shared actions table.
type ActionKind string

const (
	KindReward     ActionKind = "reward"
	KindPunishment ActionKind = "punishment"
)

// Valid reports whether k is a known kind.
func (k ActionKind) Valid() bool {
	return k == KindReward || k == KindPunishment
}

// AllowsValue reports whether v has the sign required by k:
// rewards are strictly positive, punishments strictly negative.
func (k ActionKind) AllowsValue(v int) bool {
	switch k {
	case KindReward:
		return v > 0
	case KindPunishment:
		return v < 0
	}
	return false
}

// Action is a reward or punishment with a signed point value.
type Action struct {
	ID        int64      `json:"id" db:"id"`
	Kind      ActionKind `json:"kind" db:"kind"`
	Name      string     `json:"name" db:"name"`
	Value     int        `json:"value" db:"value"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}
