package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mwisniak/football-tournaments/models"
)

var ErrCoachNotFound = errors.New("coach not found")

type CoachRepository interface {
	Create(ctx context.Context, coach *models.Coach) error
	GetByID(ctx context.Context, id int) (*models.Coach, error)
	GetByTeam(ctx context.Context, teamID int) (*models.Coach, error)
	List(ctx context.Context, withoutTeam bool) ([]models.Coach, error)
	UpdateTeam(ctx context.Context, exec SQLExecutor, coachID int, teamID *int) error
}

type postgresCoachRepository struct {
	db *sql.DB
}

func NewPostgresCoachRepository(db *sql.DB) CoachRepository {
	return &postgresCoachRepository{db: db}
}

func (r *postgresCoachRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCoachRepository) Create(ctx context.Context, c *models.Coach) error {
	query := `
		INSERT INTO coaches (first_name, last_name, age)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query, c.FirstName, c.LastName, c.Age).
		Scan(&c.ID, &c.CreatedAt)
}

func (r *postgresCoachRepository) GetByID(ctx context.Context, id int) (*models.Coach, error) {
	query := `
		SELECT id, first_name, last_name, age, team_id, created_at
		FROM coaches
		WHERE id = $1`

	c := &models.Coach{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Age, &c.TeamID, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCoachRepository) GetByTeam(ctx context.Context, teamID int) (*models.Coach, error) {
	query := `
		SELECT id, first_name, last_name, age, team_id, created_at
		FROM coaches
		WHERE team_id = $1`

	c := &models.Coach{}
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Age, &c.TeamID, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCoachRepository) List(ctx context.Context, withoutTeam bool) ([]models.Coach, error) {
	query := `
		SELECT id, first_name, last_name, age, team_id, created_at
		FROM coaches`
	if withoutTeam {
		query += ` WHERE team_id IS NULL`
	}
	query += ` ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := make([]models.Coach, 0)
	for rows.Next() {
		var c models.Coach
		if scanErr := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Age, &c.TeamID, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

func (r *postgresCoachRepository) UpdateTeam(ctx context.Context, exec SQLExecutor, coachID int, teamID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE coaches SET team_id = $1 WHERE id = $2`, teamID, coachID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCoachNotFound)
}
