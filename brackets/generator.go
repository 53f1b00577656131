package brackets

import (
	"context"
	"errors"

	"github.com/mwisniak/football-tournaments/models"
)

var ErrNotEnoughTeams = errors.New("not enough teams to generate a schedule (minimum 2 required)")

type GenerateParams struct {
	Tournament *models.Tournament
	Teams      []*models.Team
}

// Generator produces the full initial match schedule for a tournament.
// Generated matches carry team and tournament references but no ID;
// persisting them is the caller's job.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error)

	GetName() string
}
