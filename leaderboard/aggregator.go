package leaderboard

import (
	"errors"
	"sort"

	"github.com/Dosada05/fest-portal/models"
)

// ComputeStandings sums result points per team and ranks the teams.
//
// Teams without results do not appear. Equal totals are ordered by team name,
// then by team id. Rows whose team cannot be resolved are skipped; each of them
// is reported as an *IntegrityError joined into the returned error, and the
// standings of the remaining rows are returned alongside it.
func ComputeStandings(results []models.Result) ([]models.TeamScore, error) {
	totals := make(map[int]*models.TeamScore)
	var problems []error

	for _, r := range results {
		if r.TeamID <= 0 {
			problems = append(problems, &IntegrityError{ResultID: r.ID, TeamID: r.TeamID, Reason: "missing team reference"})
			continue
		}
		if r.Team == nil || r.Team.ID != r.TeamID {
			problems = append(problems, &IntegrityError{ResultID: r.ID, TeamID: r.TeamID, Reason: "team does not exist"})
			continue
		}

		score, ok := totals[r.TeamID]
		if !ok {
			score = &models.TeamScore{TeamID: r.TeamID, TeamName: r.Team.Name}
			totals[r.TeamID] = score
		}
		score.TotalPoints += r.Points
	}

	standings := make([]models.TeamScore, 0, len(totals))
	for _, score := range totals {
		standings = append(standings, *score)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamID < b.TeamID
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings, errors.Join(problems...)
}

// IntegrityErrors extracts the per-row problems from an error returned by ComputeStandings.
func IntegrityErrors(err error) []*IntegrityError {
	if err == nil {
		return nil
	}
	var out []*IntegrityError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			var ie *IntegrityError
			if errors.As(e, &ie) {
				out = append(out, ie)
			}
		}
		return out
	}
	var ie *IntegrityError
	if errors.As(err, &ie) {
		out = append(out, ie)
	}
	return out
}
