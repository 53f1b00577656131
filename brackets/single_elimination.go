package brackets

import (
	"context"
	"errors"
	"math/rand"

	"github.com/mwisniak/football-tournaments/models"
)

// ErrTeamCountNotEven guards the pairing loop. The service layer
// enforces the stronger power-of-two precondition before teams are
// attached, so hitting this means an earlier invariant was broken.
var ErrTeamCountNotEven = errors.New("single elimination requires an even number of teams")

type SingleEliminationGenerator struct {
	rnd *rand.Rand
}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

// NewSeededSingleEliminationGenerator returns a generator with a
// deterministic draw order.
func NewSeededSingleEliminationGenerator(seed int64) Generator {
	return &SingleEliminationGenerator{rnd: rand.New(rand.NewSource(seed))}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// Generate draws the first playoff round: the team list is shuffled
// and consecutive teams are paired, producing teamCount/2 matches with
// round = 1. Later rounds are created by the round advancer from
// winners, never here.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}
	if len(teams)%2 != 0 {
		return nil, ErrTeamCountNotEven
	}

	drawn := make([]*models.Team, len(teams))
	copy(drawn, teams)
	g.shuffle(drawn)

	matches := make([]*models.Match, 0, len(drawn)/2)
	for i := 0; i < len(drawn); i += 2 {
		round := 1
		matches = append(matches, &models.Match{
			TournamentID: params.Tournament.ID,
			HomeTeamID:   drawn[i].ID,
			AwayTeamID:   drawn[i+1].ID,
			Round:        &round,
			Status:       models.MatchPlanned,
		})
	}

	return matches, nil
}

func (g *SingleEliminationGenerator) shuffle(teams []*models.Team) {
	swap := func(i, j int) { teams[i], teams[j] = teams[j], teams[i] }
	if g.rnd != nil {
		g.rnd.Shuffle(len(teams), swap)
		return
	}
	rand.Shuffle(len(teams), swap)
}
