package services

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mwisniak/football-tournaments/models"
	"github.com/mwisniak/football-tournaments/repositories"
)

type EventService interface {
	// RecordEvent attributes a goal or red card to a player of one of
	// the match's teams. Goal events must reconcile with the recorded
	// final score of the player's side; red cards suspend the player
	// (a no-op when already suspended).
	RecordEvent(ctx context.Context, matchID, playerID int, eventType models.MatchEventType) (*models.MatchEvent, error)

	ListByMatch(ctx context.Context, matchID int) ([]models.MatchEvent, error)
}

type eventService struct {
	db             *sql.DB
	eventRepo      repositories.MatchEventRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewEventService(
	db *sql.DB,
	eventRepo repositories.MatchEventRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) EventService {
	return &eventService{
		db:             db,
		eventRepo:      eventRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

func (s *eventService) RecordEvent(ctx context.Context, matchID, playerID int, eventType models.MatchEventType) (*models.MatchEvent, error) {
	if eventType != models.EventGoal && eventType != models.EventRedCard {
		return nil, ErrEventTypeInvalid
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, translateMatchRepoError(err)
	}
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, translatePlayerRepoError(err)
	}
	if player.TeamID == nil || !match.HasTeam(*player.TeamID) {
		return nil, ErrPlayerNotInMatch
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, translateTournamentRepoError(err)
	}
	// Once a playoff round has been advanced past, its matches are
	// history; backfilling events would desynchronize the bracket.
	if tournament.Format == models.FormatPlayoff &&
		match.Round != nil && tournament.CurrentRound != nil &&
		*tournament.CurrentRound > *match.Round {
		return nil, ErrRoundSuperseded
	}

	var sideScore int
	if eventType == models.EventGoal {
		if match.Status != models.MatchEnded {
			return nil, ErrMatchNotEnded
		}
		sideScore = *match.HomeScore
		if *player.TeamID == match.AwayTeamID {
			sideScore = *match.AwayScore
		}
	}

	event := &models.MatchEvent{
		MatchID:  matchID,
		PlayerID: playerID,
		Type:     eventType,
	}

	err = runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		if eventType == models.EventGoal {
			// Counting inside the transaction keeps a concurrent goal
			// event from slipping past the final-score reconciliation.
			recorded, err := s.eventRepo.CountGoalsByTeam(ctx, exec, matchID, *player.TeamID)
			if err != nil {
				return err
			}
			if recorded >= sideScore {
				return ErrGoalLimitReached
			}
		}
		if err := s.eventRepo.Create(ctx, exec, event); err != nil {
			return err
		}
		switch eventType {
		case models.EventGoal:
			return translatePlayerRepoError(s.playerRepo.IncrementGoals(ctx, exec, playerID))
		case models.EventRedCard:
			if player.Status == models.PlayerSuspended {
				return nil
			}
			return translatePlayerRepoError(s.playerRepo.UpdateStatus(ctx, exec, playerID, models.PlayerSuspended))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match event recorded",
		slog.Int("match_id", matchID),
		slog.Int("player_id", playerID),
		slog.String("type", string(eventType)))
	return event, nil
}

func (s *eventService) ListByMatch(ctx context.Context, matchID int) ([]models.MatchEvent, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		return nil, translateMatchRepoError(err)
	}
	return s.eventRepo.ListByMatch(ctx, matchID)
}
