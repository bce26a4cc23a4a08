package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Leader1   *string   `json:"leader1,omitempty" db:"leader1"`
	Leader2   *string   `json:"leader2,omitempty" db:"leader2"`
	IsDefault bool      `json:"is_default" db:"is_default"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Leader1PhotoKey *string `json:"-" db:"leader1_photo_key"`
	Leader1PhotoURL *string `json:"leader1_photo_url,omitempty" db:"-"`
	Leader2PhotoKey *string `json:"-" db:"leader2_photo_key"`
	Leader2PhotoURL *string `json:"leader2_photo_url,omitempty" db:"-"`

	Candidates []Candidate `json:"candidates,omitempty" db:"-"`
}

// LeaderSlot номер лидера команды (1 или 2).
type LeaderSlot int

const (
	LeaderSlotFirst  LeaderSlot = 1
	LeaderSlotSecond LeaderSlot = 2
)

func (s LeaderSlot) Valid() bool {
	return s == LeaderSlotFirst || s == LeaderSlotSecond
}
