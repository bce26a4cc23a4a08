package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/fest-portal/models"
)

var (
	ErrResultNotFound         = errors.New("result not found")
	ErrResultEventInvalid     = errors.New("result event does not exist")
	ErrResultTeamInvalid      = errors.New("result team does not exist")
	ErrResultCandidateInvalid = errors.New("result candidate does not exist")
	ErrResultValueInvalid     = errors.New("result position or points out of range")
)

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id int) (*models.Result, error)
	List(ctx context.Context) ([]models.Result, error)
	// ListForStandings returns every result with only its team joined in.
	ListForStandings(ctx context.Context) ([]models.Result, error)
	ExistsForCandidate(ctx context.Context, candidateID int) (bool, error)
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id int) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

const resultSelect = `
	SELECT r.id, r.event_id, r.team_id, r.candidate_id, r.position, r.points, r.created_at,
	       e.name, t.name, c.name
	FROM results r
	LEFT JOIN events e ON e.id = r.event_id
	LEFT JOIN teams t ON t.id = r.team_id
	LEFT JOIN candidates c ON c.id = r.candidate_id`

func scanResult(row rowScanner) (*models.Result, error) {
	var res models.Result
	var candidateID sql.NullInt64
	var eventName, teamName, candidateName sql.NullString

	err := row.Scan(&res.ID, &res.EventID, &res.TeamID, &candidateID, &res.Position, &res.Points, &res.CreatedAt,
		&eventName, &teamName, &candidateName)
	if err != nil {
		return nil, err
	}

	res.CandidateID = nullIntPtr(candidateID)
	if eventName.Valid {
		res.Event = &models.Event{ID: res.EventID, Name: eventName.String}
	}
	if teamName.Valid {
		res.Team = &models.Team{ID: res.TeamID, Name: teamName.String}
	}
	if candidateName.Valid && res.CandidateID != nil {
		res.Candidate = &models.Candidate{ID: *res.CandidateID, Name: candidateName.String, TeamID: res.TeamID}
	}
	return &res, nil
}

func mapResultWriteError(err error) error {
	if constraint, ok := pqViolation(err, pgForeignKeyViolation); ok {
		switch constraint {
		case "results_event_id_fkey":
			return ErrResultEventInvalid
		case "results_team_id_fkey":
			return ErrResultTeamInvalid
		case "results_candidate_id_fkey":
			return ErrResultCandidateInvalid
		}
	}
	if _, ok := pqViolation(err, pgCheckViolation); ok {
		return ErrResultValueInvalid
	}
	return err
}

func (r *postgresResultRepository) Create(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (event_id, team_id, candidate_id, position, points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		result.EventID, result.TeamID, result.CandidateID, result.Position, result.Points,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return mapResultWriteError(err)
	}
	return nil
}

func (r *postgresResultRepository) GetByID(ctx context.Context, id int) (*models.Result, error) {
	res, err := scanResult(r.db.QueryRowContext(ctx, resultSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *postgresResultRepository) List(ctx context.Context) ([]models.Result, error) {
	rows, err := r.db.QueryContext(ctx, resultSelect+` ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.Result, 0)
	for rows.Next() {
		res, scanErr := scanResult(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		results = append(results, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postgresResultRepository) ListForStandings(ctx context.Context) ([]models.Result, error) {
	// LEFT JOIN: a result whose team vanished must reach the aggregator and be reported there.
	query := `
		SELECT r.id, r.team_id, r.points, t.id, t.name
		FROM results r
		LEFT JOIN teams t ON t.id = r.team_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.Result, 0)
	for rows.Next() {
		var res models.Result
		var teamID sql.NullInt64
		var teamName sql.NullString
		if err := rows.Scan(&res.ID, &res.TeamID, &res.Points, &teamID, &teamName); err != nil {
			return nil, err
		}
		if teamID.Valid {
			res.Team = &models.Team{ID: int(teamID.Int64), Name: teamName.String}
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postgresResultRepository) ExistsForCandidate(ctx context.Context, candidateID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM results WHERE candidate_id = $1)`, candidateID).Scan(&exists)
	return exists, err
}

func (r *postgresResultRepository) Update(ctx context.Context, result *models.Result) error {
	query := `
		UPDATE results
		SET event_id = $1, team_id = $2, candidate_id = $3, position = $4, points = $5
		WHERE id = $6`

	res, err := r.db.ExecContext(ctx, query,
		result.EventID, result.TeamID, result.CandidateID, result.Position, result.Points, result.ID)
	if err != nil {
		return mapResultWriteError(err)
	}
	return checkAffectedRows(res, ErrResultNotFound)
}

func (r *postgresResultRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrResultNotFound)
}
