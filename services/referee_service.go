package services

import (
	"context"
	"log/slog"

	"github.com/mwisniak/football-tournaments/models"
	"github.com/mwisniak/football-tournaments/repositories"
)

type CreateRefereeInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RefereeService interface {
	Create(ctx context.Context, input CreateRefereeInput) (*models.Referee, error)
	List(ctx context.Context) ([]models.Referee, error)
}

type refereeService struct {
	refereeRepo repositories.RefereeRepository
	logger      *slog.Logger
}

func NewRefereeService(refereeRepo repositories.RefereeRepository, logger *slog.Logger) RefereeService {
	return &refereeService{refereeRepo: refereeRepo, logger: logger}
}

func (s *refereeService) Create(ctx context.Context, input CreateRefereeInput) (*models.Referee, error) {
	if input.FirstName == "" || len(input.FirstName) > maxNameLength ||
		input.LastName == "" || len(input.LastName) > maxNameLength {
		return nil, ErrRefereeNameInvalid
	}

	referee := &models.Referee{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if err := s.refereeRepo.Create(ctx, referee); err != nil {
		return nil, err
	}

	s.logger.Info("referee created", slog.Int("referee_id", referee.ID))
	return referee, nil
}

func (s *refereeService) List(ctx context.Context) ([]models.Referee, error) {
	return s.refereeRepo.List(ctx)
}
