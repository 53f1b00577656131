package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mwisniak/football-tournaments/brackets"
	"github.com/mwisniak/football-tournaments/models"
	"github.com/mwisniak/football-tournaments/repositories"
)

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)

	// AssignReferee attaches a referee to a planned match. A match
	// gets exactly one referee and cannot change it afterwards.
	AssignReferee(ctx context.Context, matchID, refereeID int) error

	// FinishMatch records the final score. It refuses matches without
	// a referee and rosters with a suspended field player; on success
	// it bumps appearances of all field players and lifts suspensions
	// on both teams, atomically with the score write.
	FinishMatch(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	refereeRepo    repositories.RefereeRepository
	rankingCache   RankingCache
	notifier       Notifier
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	refereeRepo repositories.RefereeRepository,
	rankingCache RankingCache,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		refereeRepo:    refereeRepo,
		rankingCache:   rankingCache,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateMatchRepoError(err)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, translateTournamentRepoError(err)
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID, nil, nil)
}

func (s *matchService) AssignReferee(ctx context.Context, matchID, refereeID int) error {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Status != models.MatchPlanned {
		return ErrMatchAlreadyEnded
	}
	if match.RefereeID != nil {
		return ErrRefereeAlreadySet
	}
	if _, err := s.refereeRepo.GetByID(ctx, refereeID); err != nil {
		if errors.Is(err, repositories.ErrRefereeNotFound) {
			return ErrRefereeNotFound
		}
		return err
	}
	if err := s.matchRepo.UpdateReferee(ctx, matchID, refereeID); err != nil {
		return translateMatchRepoError(err)
	}
	return nil
}

func (s *matchService) FinishMatch(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrNegativeScore
	}

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchPlanned {
		return nil, ErrMatchAlreadyEnded
	}
	if match.RefereeID == nil {
		return nil, ErrRefereeRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, translateTournamentRepoError(err)
	}
	if tournament.IsTerminal() {
		return nil, ErrTournamentAlreadyOver
	}
	if tournament.Format == models.FormatPlayoff && homeScore == awayScore {
		return nil, ErrPlayoffTie
	}

	// Eligibility gate: a suspended player must be moved off a field
	// slot before the team's result can be recorded.
	teamIDs := []int{match.HomeTeamID, match.AwayTeamID}
	for _, teamID := range teamIDs {
		roster, err := s.playerRepo.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		for _, player := range roster {
			if player.IsFieldPlayer() && player.Status == models.PlayerSuspended {
				return nil, fmt.Errorf("%w: %s", ErrSuspendedFieldPlayer, player.FullName())
			}
		}
	}

	err = runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		// UpdateResult only moves a planned match, so a concurrent finish
		// loses here and nothing below runs twice.
		if err := s.matchRepo.UpdateResult(ctx, exec, matchID, homeScore, awayScore, models.MatchEnded); err != nil {
			return translateMatchRepoError(err)
		}
		if err := s.playerRepo.IncrementAppearances(ctx, exec, teamIDs); err != nil {
			return err
		}
		// Suspensions are single-match: serving them means sitting out
		// this result, so both rosters are reactivated here.
		return s.playerRepo.ClearSuspensions(ctx, exec, teamIDs)
	})
	if err != nil {
		return nil, err
	}

	match.HomeScore = &homeScore
	match.AwayScore = &awayScore
	match.Status = models.MatchEnded

	s.logger.Info("match finished",
		slog.Int("match_id", matchID),
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("home_score", homeScore),
		slog.Int("away_score", awayScore))

	if s.rankingCache != nil && tournament.Format == models.FormatLeague {
		if err := s.rankingCache.Invalidate(ctx, match.TournamentID); err != nil {
			s.logger.Warn("failed to invalidate ranking cache",
				slog.Int("tournament_id", match.TournamentID), slog.Any("error", err))
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyTournament(match.TournamentID, brackets.EventMatchFinished, match)
	}
	return match, nil
}
