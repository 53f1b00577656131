package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mwisniak/football-tournaments/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchNotPlanned        = errors.New("match is not in a planned state")
	ErrMatchTeamInvalid       = errors.New("match team reference invalid")
	ErrMatchTournamentInvalid = errors.New("match tournament reference invalid")
	ErrMatchRefereeInvalid    = errors.New("match referee reference invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	CountByTeam(ctx context.Context, teamID int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int, status models.MatchStatus) error
	UpdateReferee(ctx context.Context, id int, refereeID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (tournament_id, home_team_id, away_team_id, round, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.HomeTeamID, m.AwayTeamID, m.Round, m.Status,
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT id, tournament_id, home_team_id, away_team_id, round, home_score, away_score, referee_id, status, created_at
		FROM matches
		WHERE id = $1`

	m := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID, &m.Round,
		&m.HomeScore, &m.AwayScore, &m.RefereeID, &m.Status, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, tournament_id, home_team_id, away_team_id, round, home_score, away_score, referee_id, status, created_at
		FROM matches
		WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2

	if round != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *round)
		placeholderIndex++
	}
	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *status)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY round ASC NULLS FIRST, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID, &m.Round,
			&m.HomeScore, &m.AwayScore, &m.RefereeID, &m.Status, &m.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID).Scan(&count)
	return count, err
}

func (r *postgresMatchRepository) CountByTeam(ctx context.Context, teamID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE home_team_id = $1 OR away_team_id = $1`, teamID).Scan(&count)
	return count, err
}

// UpdateResult writes a result only while the match is still planned.
// The status predicate is the optimistic guard: a concurrent finish
// makes the update hit zero rows and surface ErrMatchNotPlanned.
func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET home_score = $1, away_score = $2, status = $3 WHERE id = $4 AND status = $5`,
		homeScore, awayScore, status, id, models.MatchPlanned)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotPlanned)
}

func (r *postgresMatchRepository) UpdateReferee(ctx context.Context, id int, refereeID int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET referee_id = $1 WHERE id = $2`, refereeID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "matches_tournament_id_fkey":
				return ErrMatchTournamentInvalid
			case "matches_home_team_id_fkey", "matches_away_team_id_fkey":
				return ErrMatchTeamInvalid
			case "matches_referee_id_fkey":
				return ErrMatchRefereeInvalid
			}
		}
	}
	return err
}
