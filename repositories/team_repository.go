package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/fest-portal/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name conflict")
	ErrTeamInUse        = errors.New("team is referenced by candidates or results")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateLeaderPhotoKey(ctx context.Context, id int, slot models.LeaderSlot, key *string) error
	Delete(ctx context.Context, id int) error
	SetDefault(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, name, leader1, leader2, leader1_photo_key, leader2_photo_key, is_default, created_at`

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	var leader1, leader2, photo1Key, photo2Key sql.NullString
	err := row.Scan(&t.ID, &t.Name, &leader1, &leader2, &photo1Key, &photo2Key, &t.IsDefault, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Leader1 = nullStringPtr(leader1)
	t.Leader2 = nullStringPtr(leader2)
	t.Leader1PhotoKey = nullStringPtr(photo1Key)
	t.Leader2PhotoKey = nullStringPtr(photo2Key)
	return &t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, leader1, leader2, leader1_photo_key, leader2_photo_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_default, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.Name, team.Leader1, team.Leader2, team.Leader1PhotoKey, team.Leader2PhotoKey,
	).Scan(&team.ID, &team.IsDefault, &team.CreatedAt)
	if err != nil {
		if constraint, ok := pqViolation(err, pgUniqueViolation); ok && constraint == "teams_name_key" {
			return ErrTeamNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, *team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, leader1 = $2, leader2 = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, team.Name, team.Leader1, team.Leader2, team.ID)
	if err != nil {
		if constraint, ok := pqViolation(err, pgUniqueViolation); ok && constraint == "teams_name_key" {
			return ErrTeamNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLeaderPhotoKey(ctx context.Context, id int, slot models.LeaderSlot, key *string) error {
	var query string
	switch slot {
	case models.LeaderSlotFirst:
		query = `UPDATE teams SET leader1_photo_key = $1 WHERE id = $2`
	case models.LeaderSlotSecond:
		query = `UPDATE teams SET leader2_photo_key = $1 WHERE id = $2`
	default:
		return fmt.Errorf("invalid leader slot %d", slot)
	}

	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if _, ok := pqViolation(err, pgForeignKeyViolation); ok {
			return ErrTeamInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// SetDefault moves the default flag to the given team in one transaction.
func (r *postgresTeamRepository) SetDefault(ctx context.Context, id int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SetDefault failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE teams SET is_default = false WHERE is_default AND id <> $1`, id); err != nil {
		return fmt.Errorf("SetDefault failed to clear previous default: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE teams SET is_default = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("SetDefault failed to mark team %d: %w", id, err)
	}
	if err = checkAffectedRows(result, ErrTeamNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresTeamRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&n)
	return n, err
}
