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
	"golang.org/x/sync/errgroup"
)

const maxTournamentNameLength = 100

type CreateTournamentInput struct {
	Name   string                  `json:"name"`
	Format models.TournamentFormat `json:"format"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetDetails(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)

	// AttachTeamsAndGenerate closes registration: it assigns the teams
	// to the tournament, generates the full schedule for the
	// tournament's format and activates it, all in one transaction.
	// Calling it twice fails with ErrScheduleExists.
	AttachTeamsAndGenerate(ctx context.Context, tournamentID int, teamIDs []int) ([]*models.Match, error)

	// AdvanceRound closes the current playoff round and draws the next
	// one from its winners. When a single winner remains the
	// tournament is marked ended and no matches are returned.
	AdvanceRound(ctx context.Context, tournamentID int) ([]*models.Match, error)

	Cancel(ctx context.Context, id int) error
	ForceEnd(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	generators     map[models.TournamentFormat]brackets.Generator
	notifier       Notifier
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	leagueGen brackets.Generator,
	playoffGen brackets.Generator,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		generators: map[models.TournamentFormat]brackets.Generator{
			models.FormatLeague:  leagueGen,
			models.FormatPlayoff: playoffGen,
		},
		notifier: notifier,
		logger:   logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" || len(input.Name) > maxTournamentNameLength {
		return nil, ErrTournamentNameInvalid
	}
	if input.Format != models.FormatLeague && input.Format != models.FormatPlayoff {
		return nil, ErrTournamentFormatInvalid
	}

	tournament := &models.Tournament{
		Name:   input.Name,
		Format: input.Format,
		Status: models.TournamentPlanned,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, translateTournamentRepoError(err)
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("format", string(tournament.Format)))
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateTournamentRepoError(err)
	}
	return tournament, nil
}

// GetDetails loads the tournament with its teams and matches. Teams
// and matches are fetched in parallel.
func (s *tournamentService) GetDetails(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load teams for tournament %d: %w", id, err)
		}
		tournament.Teams = make([]models.Team, len(teams))
		for i, t := range teams {
			tournament.Teams[i] = *t
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, id, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to load matches for tournament %d: %w", id, err)
		}
		tournament.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			tournament.Matches[i] = *m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) AttachTeamsAndGenerate(ctx context.Context, tournamentID int, teamIDs []int) ([]*models.Match, error) {
	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentPlanned {
		return nil, ErrTournamentNotPlanned
	}
	if len(teamIDs) < 2 {
		return nil, ErrTeamCountTooSmall
	}
	if tournament.Format == models.FormatPlayoff && !isPowerOfTwo(len(teamIDs)) {
		return nil, ErrTeamCountNotPowerOfTwo
	}

	existing, err := s.matchRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrScheduleExists
	}

	seen := make(map[int]bool, len(teamIDs))
	teams := make([]*models.Team, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		if seen[teamID] {
			return nil, ErrDuplicateTeamSelection
		}
		seen[teamID] = true

		team, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return nil, translateTeamRepoError(err)
		}
		if team.TournamentID != nil {
			return nil, fmt.Errorf("%w: %s", ErrTeamAlreadyInTournament, team.Name)
		}
		teams = append(teams, team)
	}

	generator, ok := s.generators[tournament.Format]
	if !ok {
		return nil, ErrTournamentFormatInvalid
	}

	matches, err := generator.Generate(ctx, brackets.GenerateParams{
		Tournament: tournament,
		Teams:      teams,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate schedule for tournament %d: %w", tournamentID, err)
	}

	err = runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		// Claiming the planned status first makes a lost activation race
		// fail here, before any of the schedule is written.
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentPlanned, models.TournamentActive); err != nil {
			if errors.Is(err, repositories.ErrTournamentStale) {
				return ErrTournamentNotPlanned
			}
			return translateTournamentRepoError(err)
		}
		if tournament.Format == models.FormatPlayoff {
			firstRound := 1
			if err := s.tournamentRepo.UpdateCurrentRound(ctx, exec, tournamentID, nil, &firstRound); err != nil {
				return translateTournamentRepoError(err)
			}
		}
		for _, team := range teams {
			if err := s.teamRepo.UpdateTournament(ctx, exec, team.ID, &tournamentID); err != nil {
				return translateTeamRepoError(err)
			}
		}
		for _, match := range matches {
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", generator.GetName()),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)))

	if s.notifier != nil {
		s.notifier.NotifyTournament(tournamentID, brackets.EventScheduleGenerated, matches)
	}
	return matches, nil
}

func (s *tournamentService) AdvanceRound(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Format != models.FormatPlayoff {
		return nil, ErrTournamentNotPlayoff
	}
	if tournament.IsTerminal() {
		return nil, ErrTournamentAlreadyOver
	}
	if tournament.Status != models.TournamentActive || tournament.CurrentRound == nil {
		return nil, ErrScheduleNotGenerated
	}

	currentRound := *tournament.CurrentRound
	roundMatches, err := s.matchRepo.ListByTournament(ctx, tournamentID, &currentRound, nil)
	if err != nil {
		return nil, err
	}
	if len(roundMatches) == 0 {
		return nil, ErrRoundHasNoMatches
	}

	// Winners collected in match order. A tie here means the playoff
	// tie check at result entry was bypassed; treat it as fatal.
	winners := make([]int, 0, len(roundMatches))
	for _, match := range roundMatches {
		if match.Status != models.MatchEnded {
			return nil, ErrRoundNotFinished
		}
		if *match.HomeScore == *match.AwayScore {
			return nil, ErrPlayoffTie
		}
		if *match.HomeScore > *match.AwayScore {
			winners = append(winners, match.HomeTeamID)
		} else {
			winners = append(winners, match.AwayTeamID)
		}
	}

	if len(winners) == 1 {
		err = runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
			err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentActive, models.TournamentEnded)
			if errors.Is(err, repositories.ErrTournamentStale) {
				return ErrTournamentAlreadyOver
			}
			return translateTournamentRepoError(err)
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("tournament finished",
			slog.Int("tournament_id", tournamentID),
			slog.Int("winner_team_id", winners[0]))
		if s.notifier != nil {
			s.notifier.NotifyTournament(tournamentID, brackets.EventTournamentFinished, map[string]int{"winner_team_id": winners[0]})
		}
		return nil, nil
	}

	if len(winners)%2 != 0 {
		return nil, ErrOddWinnerCount
	}

	nextRound := currentRound + 1
	nextMatches := make([]*models.Match, 0, len(winners)/2)
	for i := 0; i < len(winners); i += 2 {
		round := nextRound
		nextMatches = append(nextMatches, &models.Match{
			TournamentID: tournamentID,
			HomeTeamID:   winners[i],
			AwayTeamID:   winners[i+1],
			Round:        &round,
			Status:       models.MatchPlanned,
		})
	}

	err = runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		// Claim the round before drawing its matches; a concurrent
		// advance already moved it and must not produce a second draw.
		if err := s.tournamentRepo.UpdateCurrentRound(ctx, exec, tournamentID, &currentRound, &nextRound); err != nil {
			if errors.Is(err, repositories.ErrTournamentStale) {
				return ErrRoundAlreadyAdvanced
			}
			return translateTournamentRepoError(err)
		}
		for _, match := range nextMatches {
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("round advanced",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", nextRound),
		slog.Int("matches", len(nextMatches)))

	if s.notifier != nil {
		s.notifier.NotifyTournament(tournamentID, brackets.EventRoundAdvanced, nextMatches)
	}
	return nextMatches, nil
}

func (s *tournamentService) Cancel(ctx context.Context, id int) error {
	return s.setTerminalStatus(ctx, id, models.TournamentCanceled)
}

// ForceEnd is the administrative override: it ends the tournament
// regardless of the bracket or table state.
func (s *tournamentService) ForceEnd(ctx context.Context, id int) error {
	return s.setTerminalStatus(ctx, id, models.TournamentEnded)
}

func (s *tournamentService) setTerminalStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.IsTerminal() {
		return ErrTournamentAlreadyOver
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, tournament.Status, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentStale) {
			return ErrTournamentAlreadyOver
		}
		return translateTournamentRepoError(err)
	}
	s.logger.Info("tournament closed by operator",
		slog.Int("tournament_id", id),
		slog.String("status", string(status)))
	return nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return translateTournamentRepoError(err)
	}
	return nil
}
