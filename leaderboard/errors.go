package leaderboard

import (
	"errors"
	"fmt"
)

var (
	// ErrDataFetch means the result set could not be read: standings are unknown, not empty.
	ErrDataFetch = errors.New("standings data fetch failed")
	// ErrDataIntegrity marks a result row that cannot be attributed to a team.
	ErrDataIntegrity = errors.New("standings data integrity violation")
)

// IntegrityError describes one skipped result row.
type IntegrityError struct {
	ResultID int
	TeamID   int
	Reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("result %d (team %d): %s", e.ResultID, e.TeamID, e.Reason)
}

func (e *IntegrityError) Unwrap() error {
	return ErrDataIntegrity
}
