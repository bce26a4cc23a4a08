package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/fest-portal/models"
)

var (
	ErrCandidateNotFound    = errors.New("candidate not found")
	ErrCandidateTeamInvalid = errors.New("candidate team does not exist")
	ErrCandidateInUse       = errors.New("candidate is referenced by results")
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	GetByID(ctx context.Context, id int) (*models.Candidate, error)
	List(ctx context.Context) ([]models.Candidate, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
	UpdatePhotoKey(ctx context.Context, id int, key *string) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type postgresCandidateRepository struct {
	db *sql.DB
}

func NewPostgresCandidateRepository(db *sql.DB) CandidateRepository {
	return &postgresCandidateRepository{db: db}
}

const candidateSelect = `
	SELECT c.id, c.name, c.team_id, c.photo_key, c.created_at, t.name
	FROM candidates c
	JOIN teams t ON t.id = c.team_id`

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	var photoKey sql.NullString
	var teamName string
	if err := row.Scan(&c.ID, &c.Name, &c.TeamID, &photoKey, &c.CreatedAt, &teamName); err != nil {
		return nil, err
	}
	c.PhotoKey = nullStringPtr(photoKey)
	c.Team = &models.Team{ID: c.TeamID, Name: teamName}
	return &c, nil
}

func (r *postgresCandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	query := `
		INSERT INTO candidates (name, team_id, photo_key)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, candidate.Name, candidate.TeamID, candidate.PhotoKey).
		Scan(&candidate.ID, &candidate.CreatedAt)
	if err != nil {
		if _, ok := pqViolation(err, pgForeignKeyViolation); ok {
			return ErrCandidateTeamInvalid
		}
		return err
	}
	return nil
}

func (r *postgresCandidateRepository) GetByID(ctx context.Context, id int) (*models.Candidate, error) {
	candidate, err := scanCandidate(r.db.QueryRowContext(ctx, candidateSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	return candidate, nil
}

func (r *postgresCandidateRepository) List(ctx context.Context) ([]models.Candidate, error) {
	return r.list(ctx, candidateSelect+` ORDER BY c.name ASC`)
}

func (r *postgresCandidateRepository) ListByTeam(ctx context.Context, teamID int) ([]models.Candidate, error) {
	return r.list(ctx, candidateSelect+` WHERE c.team_id = $1 ORDER BY c.name ASC`, teamID)
}

func (r *postgresCandidateRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]models.Candidate, 0)
	for rows.Next() {
		c, scanErr := scanCandidate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		candidates = append(candidates, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *postgresCandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	// Смена команды запрещена, пока результаты ссылаются на участника под старой командой.
	query := `
		UPDATE candidates SET name = $1, team_id = $2
		WHERE id = $3
		  AND NOT EXISTS (SELECT 1 FROM results WHERE candidate_id = $3 AND team_id <> $2)`

	result, err := r.db.ExecContext(ctx, query, candidate.Name, candidate.TeamID, candidate.ID)
	if err != nil {
		if _, ok := pqViolation(err, pgForeignKeyViolation); ok {
			return ErrCandidateTeamInvalid
		}
		return err
	}
	if err := checkAffectedRows(result, ErrCandidateNotFound); err != nil {
		var exists bool
		if qErr := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM candidates WHERE id = $1)`, candidate.ID).Scan(&exists); qErr != nil {
			return qErr
		}
		if exists {
			return ErrCandidateInUse
		}
		return err
	}
	return nil
}

func (r *postgresCandidateRepository) UpdatePhotoKey(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE candidates SET photo_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCandidateNotFound)
}

func (r *postgresCandidateRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		if _, ok := pqViolation(err, pgForeignKeyViolation); ok {
			return ErrCandidateInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrCandidateNotFound)
}

func (r *postgresCandidateRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&n)
	return n, err
}
