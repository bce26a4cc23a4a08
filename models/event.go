package models

import "time"

type Event struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Category  string     `json:"category" db:"category"`
	Date      *time.Time `json:"date,omitempty" db:"date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
