package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mwisniak/football-tournaments/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context, freeAgentsOnly bool) ([]models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	UpdateTeam(ctx context.Context, exec SQLExecutor, playerID int, teamID *int) error
	UpdatePosition(ctx context.Context, exec SQLExecutor, playerID int, position *models.PlayerPosition) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, playerID int, status models.PlayerStatus) error
	IncrementGoals(ctx context.Context, exec SQLExecutor, playerID int) error
	// IncrementAppearances bumps the appearance counter of every
	// field-position player on the given teams.
	IncrementAppearances(ctx context.Context, exec SQLExecutor, teamIDs []int) error
	// ClearSuspensions reactivates every suspended player on the given
	// teams.
	ClearSuspensions(ctx context.Context, exec SQLExecutor, teamIDs []int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (first_name, last_name, age, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query, p.FirstName, p.LastName, p.Age, p.Status).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, first_name, last_name, age, team_id, position, status, goals, appearances, created_at
		FROM players
		WHERE id = $1`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.TeamID,
		&p.Position, &p.Status, &p.Goals, &p.Appearances, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, freeAgentsOnly bool) ([]models.Player, error) {
	query := `
		SELECT id, first_name, last_name, age, team_id, position, status, goals, appearances, created_at
		FROM players`
	if freeAgentsOnly {
		query += ` WHERE team_id IS NULL`
	}
	query += ` ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	query := `
		SELECT id, first_name, last_name, age, team_id, position, status, goals, appearances, created_at
		FROM players
		WHERE team_id = $1
		ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players, err := scanPlayers(rows)
	if err != nil {
		return nil, err
	}
	result := make([]*models.Player, len(players))
	for i := range players {
		result[i] = &players[i]
	}
	return result, nil
}

func (r *postgresPlayerRepository) UpdateTeam(ctx context.Context, exec SQLExecutor, playerID int, teamID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE players SET team_id = $1 WHERE id = $2`, teamID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePosition(ctx context.Context, exec SQLExecutor, playerID int, position *models.PlayerPosition) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE players SET position = $1 WHERE id = $2`, position, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, playerID int, status models.PlayerStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE players SET status = $1 WHERE id = $2`, status, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) IncrementGoals(ctx context.Context, exec SQLExecutor, playerID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE players SET goals = goals + 1 WHERE id = $1`, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) IncrementAppearances(ctx context.Context, exec SQLExecutor, teamIDs []int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`UPDATE players SET appearances = appearances + 1 WHERE team_id = ANY($1) AND position = 'field'`,
		pq.Array(teamIDs))
	return err
}

func (r *postgresPlayerRepository) ClearSuspensions(ctx context.Context, exec SQLExecutor, teamIDs []int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`UPDATE players SET status = 'active' WHERE team_id = ANY($1) AND status = 'suspended'`,
		pq.Array(teamIDs))
	return err
}

func scanPlayers(rows *sql.Rows) ([]models.Player, error) {
	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.TeamID,
			&p.Position, &p.Status, &p.Goals, &p.Appearances, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
