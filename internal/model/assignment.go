package model

import "time"

// Assignment links a person to a reward or punishment. ItemName and ItemValue
// are copied from the action when the assignment is made and do not follow
// later edits.
type Assignment struct {
	ID         int64      `json:"id" db:"id"`
	PersonID   int64      `json:"personId" db:"person_id"`
	ItemType   ActionKind `json:"itemType" db:"item_type"`
	ItemID     int64      `json:"itemId" db:"item_id"`
	ItemName   string     `json:"itemName" db:"item_name"`
	ItemValue  int        `json:"itemValue" db:"item_value"`
	AssignedAt time.Time  `json:"assignedAt" db:"assigned_at"`
}

// AssignmentFilter narrows an assignment listing. Zero values mean "any".
type AssignmentFilter struct {
	PersonID int64
	ItemType ActionKind
	From     time.Time
	To       time.Time
	Limit    int
}
