package brackets

import (
	"context"

	"github.com/mwisniak/football-tournaments/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate creates the league schedule: every team plays every other
// team twice, once at home and once away, so N teams yield N*(N-1)
// matches. League matches are not round-scoped; Round stays nil.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	matches := make([]*models.Match, 0, len(teams)*(len(teams)-1))
	for i := 0; i < len(teams); i++ {
		for j := 0; j < len(teams); j++ {
			if i == j {
				continue
			}
			matches = append(matches, &models.Match{
				TournamentID: params.Tournament.ID,
				HomeTeamID:   teams[i].ID,
				AwayTeamID:   teams[j].ID,
				Status:       models.MatchPlanned,
			})
		}
	}

	return matches, nil
}
