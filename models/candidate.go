package models

import "time"

type Candidate struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	TeamID    int       `json:"team_id" db:"team_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`

	Team *Team `json:"team,omitempty" db:"-"`
}
