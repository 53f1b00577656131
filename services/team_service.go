package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mwisniak/football-tournaments/models"
	"github.com/mwisniak/football-tournaments/repositories"
	"github.com/mwisniak/football-tournaments/storage"
)

const (
	minTeamNameLength = 4
	maxTeamNameLength = 100
)

type RegisterTeamInput struct {
	Name      string `json:"name"`
	PlayerIDs []int  `json:"player_ids"`
	CoachID   *int   `json:"coach_id"`
}

type TeamService interface {
	// RegisterTeam creates a team and assigns its founding roster. All
	// players must be free agents and the coach, when given, must not
	// lead another team.
	RegisterTeam(ctx context.Context, input RegisterTeamInput) (*models.Team, error)

	// GetDetails returns a team with its roster and coach attached.
	GetDetails(ctx context.Context, id int) (*models.Team, error)

	List(ctx context.Context, withoutTournament bool) ([]models.Team, error)

	AddPlayer(ctx context.Context, teamID, playerID int) error

	// RemovePlayer detaches a player from the team, vacating their
	// position and lifting any suspension.
	RemovePlayer(ctx context.Context, teamID, playerID int) error

	// Delete removes a team that is not in a tournament and has never
	// played a match.
	Delete(ctx context.Context, id int) error

	// UploadCrest stores the team crest and records its object key.
	UploadCrest(ctx context.Context, teamID int, contentType string, reader io.Reader) (string, error)
}

type teamService struct {
	db          *sql.DB
	teamRepo    repositories.TeamRepository
	playerRepo  repositories.PlayerRepository
	coachRepo   repositories.CoachRepository
	matchRepo   repositories.MatchRepository
	eligibility *EligibilityChecker
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	coachRepo repositories.CoachRepository,
	matchRepo repositories.MatchRepository,
	eligibility *EligibilityChecker,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		db:          db,
		teamRepo:    teamRepo,
		playerRepo:  playerRepo,
		coachRepo:   coachRepo,
		matchRepo:   matchRepo,
		eligibility: eligibility,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *teamService) RegisterTeam(ctx context.Context, input RegisterTeamInput) (*models.Team, error) {
	if len(input.Name) < minTeamNameLength || len(input.Name) > maxTeamNameLength {
		return nil, ErrTeamNameInvalid
	}

	players := make([]*models.Player, 0, len(input.PlayerIDs))
	for _, id := range input.PlayerIDs {
		player, err := s.playerRepo.GetByID(ctx, id)
		if err != nil {
			return nil, translatePlayerRepoError(err)
		}
		players = append(players, player)
	}

	var coach *models.Coach
	if input.CoachID != nil {
		var err error
		coach, err = s.coachRepo.GetByID(ctx, *input.CoachID)
		if err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return nil, ErrCoachNotFound
			}
			return nil, err
		}
	}

	if err := s.eligibility.CanRegisterTeam(players, coach); err != nil {
		return nil, err
	}

	team := &models.Team{Name: input.Name}
	err := runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		if err := s.teamRepo.Create(ctx, exec, team); err != nil {
			return translateTeamRepoError(err)
		}
		for _, player := range players {
			if err := s.playerRepo.UpdateTeam(ctx, exec, player.ID, &team.ID); err != nil {
				return translatePlayerRepoError(err)
			}
		}
		if coach != nil {
			if err := s.coachRepo.UpdateTeam(ctx, exec, coach.ID, &team.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team registered",
		slog.Int("team_id", team.ID),
		slog.String("name", team.Name),
		slog.Int("players", len(players)))
	return team, nil
}

func (s *teamService) GetDetails(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateTeamRepoError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		players, err := s.playerRepo.ListByTeam(gctx, id)
		if err != nil {
			return err
		}
		team.Players = make([]models.Player, len(players))
		for i, p := range players {
			team.Players[i] = *p
		}
		return nil
	})
	g.Go(func() error {
		coach, err := s.coachRepo.GetByTeam(gctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return nil
			}
			return err
		}
		team.Coach = coach
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.fillCrestURL(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context, withoutTournament bool) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx, withoutTournament)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.fillCrestURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) AddPlayer(ctx context.Context, teamID, playerID int) error {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return translateTeamRepoError(err)
	}
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return translatePlayerRepoError(err)
	}
	if player.TeamID != nil {
		return fmt.Errorf("%w: %s", ErrPlayerAlreadyInTeam, player.FullName())
	}
	return translatePlayerRepoError(s.playerRepo.UpdateTeam(ctx, nil, playerID, &teamID))
}

func (s *teamService) RemovePlayer(ctx context.Context, teamID, playerID int) error {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return translatePlayerRepoError(err)
	}
	if player.TeamID == nil || *player.TeamID != teamID {
		return ErrPlayerNotInTeam
	}

	// Leaving the squad wipes club state: position, suspension and the
	// team link itself.
	return runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		if err := s.playerRepo.UpdatePosition(ctx, exec, playerID, nil); err != nil {
			return translatePlayerRepoError(err)
		}
		if player.Status == models.PlayerSuspended {
			if err := s.playerRepo.UpdateStatus(ctx, exec, playerID, models.PlayerActive); err != nil {
				return translatePlayerRepoError(err)
			}
		}
		return translatePlayerRepoError(s.playerRepo.UpdateTeam(ctx, exec, playerID, nil))
	})
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return translateTeamRepoError(err)
	}
	if team.TournamentID != nil {
		return ErrTeamInUse
	}
	matchCount, err := s.matchRepo.CountByTeam(ctx, id)
	if err != nil {
		return err
	}
	if matchCount > 0 {
		return ErrTeamInUse
	}

	if team.CrestKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *team.CrestKey); err != nil {
			s.logger.Warn("failed to delete team crest from storage",
				slog.Int("team_id", id), slog.Any("error", err))
		}
	}
	return translateTeamRepoError(s.teamRepo.Delete(ctx, id))
}

func (s *teamService) UploadCrest(ctx context.Context, teamID int, contentType string, reader io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrStorageDisabled
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return "", translateTeamRepoError(err)
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("teams/%d/crest%s", teamID, ext)

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return "", err
	}
	if err := s.teamRepo.UpdateCrestKey(ctx, teamID, &result.Key); err != nil {
		return "", translateTeamRepoError(err)
	}

	// A previous crest with a different extension becomes garbage.
	if team.CrestKey != nil && *team.CrestKey != result.Key {
		if err := s.uploader.Delete(ctx, *team.CrestKey); err != nil {
			s.logger.Warn("failed to delete previous team crest",
				slog.Int("team_id", teamID), slog.Any("error", err))
		}
	}

	s.logger.Info("team crest uploaded",
		slog.Int("team_id", teamID), slog.String("key", result.Key))
	return result.Location, nil
}

func (s *teamService) fillCrestURL(team *models.Team) {
	if s.uploader == nil || team.CrestKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.CrestKey); url != "" {
		team.CrestURL = &url
	}
}
