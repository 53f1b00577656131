package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mwisniak/football-tournaments/models"
	"github.com/mwisniak/football-tournaments/repositories"
)

// League scoring.
const (
	pointsForWin  = 3
	pointsForDraw = 1
)

// RankingCache is an optional read-through cache for league rankings.
// Implemented by cache.RankingCache; a Get miss is (nil, nil).
type RankingCache interface {
	Get(ctx context.Context, tournamentID int) ([]models.TeamStanding, error)
	Set(ctx context.Context, tournamentID int, standings []models.TeamStanding) error
	Invalidate(ctx context.Context, tournamentID int) error
}

type StandingsService interface {
	// CalculateRanking derives the league table from the tournament's
	// ended matches. The team set comes strictly from the match list:
	// a team with no matches recorded does not appear. Equal points
	// keep schedule encounter order.
	CalculateRanking(ctx context.Context, tournamentID int) ([]models.TeamStanding, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	cache          RankingCache
	logger         *slog.Logger
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	cache RankingCache,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		cache:          cache,
		logger:         logger,
	}
}

func (s *standingsService) CalculateRanking(ctx context.Context, tournamentID int) ([]models.TeamStanding, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, translateTournamentRepoError(err)
	}
	if tournament.Format != models.FormatLeague {
		return nil, ErrTournamentNotLeague
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tournamentID)
		if err != nil {
			s.logger.Warn("ranking cache read failed, recomputing",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		} else if cached != nil {
			return cached, nil
		}
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrScheduleNotGenerated
	}

	standings := buildStandings(matches)

	if err := s.fillTeamNames(ctx, tournamentID, standings); err != nil {
		s.logger.Warn("failed to resolve team names for ranking",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tournamentID, standings); err != nil {
			s.logger.Warn("ranking cache write failed",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		}
	}
	return standings, nil
}

// buildStandings accumulates one row per team in schedule encounter
// order, then sorts by points descending. The sort is stable so equal
// points preserve encounter order.
func buildStandings(matches []*models.Match) []models.TeamStanding {
	index := make(map[int]int)
	standings := make([]models.TeamStanding, 0)

	rowFor := func(teamID int) *models.TeamStanding {
		if i, ok := index[teamID]; ok {
			return &standings[i]
		}
		index[teamID] = len(standings)
		standings = append(standings, models.TeamStanding{TeamID: teamID})
		return &standings[len(standings)-1]
	}

	for _, match := range matches {
		home := rowFor(match.HomeTeamID)
		away := rowFor(match.AwayTeamID)

		if match.Status != models.MatchEnded {
			continue
		}

		homeScore, awayScore := *match.HomeScore, *match.AwayScore
		home.Played++
		away.Played++
		home.GoalsFor += homeScore
		home.GoalsAgainst += awayScore
		away.GoalsFor += awayScore
		away.GoalsAgainst += homeScore

		switch {
		case homeScore > awayScore:
			home.Wins++
			home.Points += pointsForWin
			away.Losses++
		case homeScore < awayScore:
			away.Wins++
			away.Points += pointsForWin
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points += pointsForDraw
			away.Points += pointsForDraw
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Points > standings[j].Points
	})
	return standings
}

func (s *standingsService) fillTeamNames(ctx context.Context, tournamentID int, standings []models.TeamStanding) error {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	names := make(map[int]string, len(teams))
	for _, team := range teams {
		names[team.ID] = team.Name
	}
	for i := range standings {
		standings[i].TeamName = names[standings[i].TeamID]
	}
	return nil
}
