package models

import "time"

// Result - итог одного события: очки команде и, опционально, участнику.
type Result struct {
	ID          int       `json:"id" db:"id"`
	EventID     int       `json:"event_id" db:"event_id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	CandidateID *int      `json:"candidate_id,omitempty" db:"candidate_id"`
	Position    int       `json:"position" db:"position"`
	Points      int       `json:"points" db:"points"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Заполняются JOIN-ами в репозитории
	Event     *Event     `json:"event,omitempty" db:"-"`
	Team      *Team      `json:"team,omitempty" db:"-"`
	Candidate *Candidate `json:"candidate,omitempty" db:"-"`
}
