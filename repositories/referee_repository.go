package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mwisniak/football-tournaments/models"
)

var ErrRefereeNotFound = errors.New("referee not found")

type RefereeRepository interface {
	Create(ctx context.Context, referee *models.Referee) error
	GetByID(ctx context.Context, id int) (*models.Referee, error)
	List(ctx context.Context) ([]models.Referee, error)
}

type postgresRefereeRepository struct {
	db *sql.DB
}

func NewPostgresRefereeRepository(db *sql.DB) RefereeRepository {
	return &postgresRefereeRepository{db: db}
}

func (r *postgresRefereeRepository) Create(ctx context.Context, ref *models.Referee) error {
	query := `
		INSERT INTO referees (first_name, last_name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query, ref.FirstName, ref.LastName).
		Scan(&ref.ID, &ref.CreatedAt)
}

func (r *postgresRefereeRepository) GetByID(ctx context.Context, id int) (*models.Referee, error) {
	query := `
		SELECT id, first_name, last_name, created_at
		FROM referees
		WHERE id = $1`

	ref := &models.Referee{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ref.ID, &ref.FirstName, &ref.LastName, &ref.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefereeNotFound
		}
		return nil, err
	}
	return ref, nil
}

func (r *postgresRefereeRepository) List(ctx context.Context) ([]models.Referee, error) {
	query := `
		SELECT id, first_name, last_name, created_at
		FROM referees
		ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referees := make([]models.Referee, 0)
	for rows.Next() {
		var ref models.Referee
		if scanErr := rows.Scan(&ref.ID, &ref.FirstName, &ref.LastName, &ref.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		referees = append(referees, ref)
	}
	return referees, rows.Err()
}
