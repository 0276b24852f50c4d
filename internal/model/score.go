package model

import "time"

type PersonScore struct {
	PersonID    int64  `json:"personId" db:"person_id"`
	Name        string `json:"name" db:"name"`
	TotalScore  int    `json:"totalScore" db:"total_score"`
	WeeklyScore int    `json:"weeklyScore" db:"weekly_score"`
}

// Leaderboard is the score table for every person, computed against one week window.
type Leaderboard struct {
	WeekStart time.Time     `json:"weekStart"`
	WeekEnd   time.Time     `json:"weekEnd"`
	Scores    []PersonScore `json:"scores"`
}
