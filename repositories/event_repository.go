package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/fest-portal/models"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventInUse    = errors.New("event is referenced by results")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
	CountCategories(ctx context.Context) (int, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	var date sql.NullTime
	if err := row.Scan(&e.ID, &e.Name, &e.Category, &date, &e.CreatedAt); err != nil {
		return nil, err
	}
	if date.Valid {
		d := date.Time
		e.Date = &d
	}
	return &e, nil
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, category, date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query, event.Name, event.Category, event.Date).
		Scan(&event.ID, &event.CreatedAt)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT id, name, category, date, created_at FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := `SELECT id, name, category, date, created_at FROM events ORDER BY date DESC NULLS LAST, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `UPDATE events SET name = $1, category = $2, date = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, event.Name, event.Category, event.Date, event.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if _, ok := pqViolation(err, pgForeignKeyViolation); ok {
			return ErrEventInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

func (r *postgresEventRepository) CountCategories(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT category) FROM events`).Scan(&n)
	return n, err
}
