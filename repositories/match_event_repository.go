package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mwisniak/football-tournaments/models"
)

var (
	ErrMatchEventNotFound      = errors.New("match event not found")
	ErrMatchEventMatchInvalid  = errors.New("match event match reference invalid")
	ErrMatchEventPlayerInvalid = errors.New("match event player reference invalid")
)

type MatchEventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error
	ListByMatch(ctx context.Context, matchID int) ([]models.MatchEvent, error)
	// CountGoalsByTeam counts goal events already recorded for the
	// given match by players of the given team.
	CountGoalsByTeam(ctx context.Context, exec SQLExecutor, matchID, teamID int) (int, error)
}

type postgresMatchEventRepository struct {
	db *sql.DB
}

func NewPostgresMatchEventRepository(db *sql.DB) MatchEventRepository {
	return &postgresMatchEventRepository{db: db}
}

func (r *postgresMatchEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.MatchEvent) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_events (match_id, player_id, event_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, e.MatchID, e.PlayerID, e.Type).
		Scan(&e.ID, &e.CreatedAt)

	return r.handleMatchEventError(err)
}

func (r *postgresMatchEventRepository) ListByMatch(ctx context.Context, matchID int) ([]models.MatchEvent, error) {
	query := `
		SELECT id, match_id, player_id, event_type, created_at
		FROM match_events
		WHERE match_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.MatchEvent, 0)
	for rows.Next() {
		var e models.MatchEvent
		if scanErr := rows.Scan(&e.ID, &e.MatchID, &e.PlayerID, &e.Type, &e.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresMatchEventRepository) CountGoalsByTeam(ctx context.Context, exec SQLExecutor, matchID, teamID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COUNT(*)
		FROM match_events e
		JOIN players p ON p.id = e.player_id
		WHERE e.match_id = $1 AND e.event_type = 'goal' AND p.team_id = $2`

	var count int
	err := executor.QueryRowContext(ctx, query, matchID, teamID).Scan(&count)
	return count, err
}

func (r *postgresMatchEventRepository) handleMatchEventError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "match_events_match_id_fkey":
				return ErrMatchEventMatchInvalid
			case "match_events_player_id_fkey":
				return ErrMatchEventPlayerInvalid
			}
		}
	}
	return err
}
