package services

import (
	"context"
	"log/slog"

	"github.com/mwisniak/football-tournaments/models"
	"github.com/mwisniak/football-tournaments/repositories"
)

const maxNameLength = 50

type CreatePlayerInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
}

type PlayerService interface {
	Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context, freeAgentsOnly bool) ([]models.Player, error)

	// ChangePosition moves a team's player into a field or substitute
	// slot, or off the squad entirely (nil position). Squad composition
	// limits and the suspension rule apply.
	ChangePosition(ctx context.Context, playerID int, position *models.PlayerPosition) error
}

type playerService struct {
	playerRepo  repositories.PlayerRepository
	teamRepo    repositories.TeamRepository
	eligibility *EligibilityChecker
	logger      *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	eligibility *EligibilityChecker,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo:  playerRepo,
		teamRepo:    teamRepo,
		eligibility: eligibility,
		logger:      logger,
	}
}

func (s *playerService) Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	if input.FirstName == "" || len(input.FirstName) > maxNameLength ||
		input.LastName == "" || len(input.LastName) > maxNameLength {
		return nil, ErrPlayerNameInvalid
	}
	if input.Age <= 0 {
		return nil, ErrPlayerAgeInvalid
	}

	player := &models.Player{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Age:       input.Age,
		Status:    models.PlayerActive,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player created",
		slog.Int("player_id", player.ID), slog.String("name", player.FullName()))
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translatePlayerRepoError(err)
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context, freeAgentsOnly bool) ([]models.Player, error) {
	return s.playerRepo.List(ctx, freeAgentsOnly)
}

func (s *playerService) ChangePosition(ctx context.Context, playerID int, position *models.PlayerPosition) error {
	if position != nil && *position != models.PositionField && *position != models.PositionSubstitute {
		return ErrPositionInvalid
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return translatePlayerRepoError(err)
	}
	if player.TeamID == nil {
		return ErrPlayerNotInTeam
	}
	team, err := s.teamRepo.GetByID(ctx, *player.TeamID)
	if err != nil {
		return translateTeamRepoError(err)
	}
	teammates, err := s.playerRepo.ListByTeam(ctx, team.ID)
	if err != nil {
		return err
	}

	if err := s.eligibility.CanAssignPosition(player, team, teammates, position); err != nil {
		return err
	}
	return translatePlayerRepoError(s.playerRepo.UpdatePosition(ctx, nil, playerID, position))
}
