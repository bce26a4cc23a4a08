package models

import "time"

// TeamScore is a derived leaderboard row. It is never persisted.
type TeamScore struct {
	TeamID      int    `json:"team_id"`
	TeamName    string `json:"team_name"`
	TotalPoints int    `json:"total_points"`
	Rank        int    `json:"rank"`
}

type StandingsSnapshot struct {
	Standings  []TeamScore `json:"standings"`
	ComputedAt time.Time   `json:"computed_at"`
	// Skipped counts result rows left out because their team could not be resolved.
	Skipped int `json:"skipped,omitempty"`
}
