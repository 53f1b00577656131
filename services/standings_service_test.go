package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mwisniak/football-tournaments/models"
)

type standingsFixture struct {
	service        StandingsService
	tournamentRepo *fakeTournamentRepo
	matchRepo      *fakeMatchRepo
	teamRepo       *fakeTeamRepo
	cache          *fakeRankingCache
}

func newStandingsFixture(cache *fakeRankingCache) *standingsFixture {
	f := &standingsFixture{
		tournamentRepo: newFakeTournamentRepo(),
		matchRepo:      newFakeMatchRepo(),
		teamRepo:       newFakeTeamRepo(),
		cache:          cache,
	}
	var rankingCache RankingCache
	if cache != nil {
		rankingCache = cache
	}
	f.service = NewStandingsService(f.tournamentRepo, f.matchRepo, f.teamRepo, rankingCache, testLogger())
	return f
}

func (f *standingsFixture) seedLeague(t *testing.T) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{Name: "League", Format: models.FormatLeague, Status: models.TournamentActive}
	if err := f.tournamentRepo.Create(context.Background(), tournament); err != nil {
		t.Fatalf("failed to seed tournament: %v", err)
	}
	return tournament
}

func (f *standingsFixture) seedEndedMatch(t *testing.T, tournamentID, home, away, homeScore, awayScore int) {
	t.Helper()
	ctx := context.Background()
	match := &models.Match{TournamentID: tournamentID, HomeTeamID: home, AwayTeamID: away, Status: models.MatchPlanned}
	if err := f.matchRepo.Create(ctx, nil, match); err != nil {
		t.Fatalf("failed to seed match: %v", err)
	}
	if err := f.matchRepo.UpdateResult(ctx, nil, match.ID, homeScore, awayScore, models.MatchEnded); err != nil {
		t.Fatalf("failed to end match: %v", err)
	}
}

func TestCalculateRankingRejections(t *testing.T) {
	f := newStandingsFixture(nil)
	ctx := context.Background()

	playoff := &models.Tournament{Name: "Playoff", Format: models.FormatPlayoff, Status: models.TournamentActive}
	if err := f.tournamentRepo.Create(ctx, playoff); err != nil {
		t.Fatalf("failed to seed tournament: %v", err)
	}
	if _, err := f.service.CalculateRanking(ctx, playoff.ID); !errors.Is(err, ErrTournamentNotLeague) {
		t.Errorf("playoff ranking: got %v, want ErrTournamentNotLeague", err)
	}

	league := f.seedLeague(t)
	if _, err := f.service.CalculateRanking(ctx, league.ID); !errors.Is(err, ErrScheduleNotGenerated) {
		t.Errorf("empty schedule: got %v, want ErrScheduleNotGenerated", err)
	}

	if _, err := f.service.CalculateRanking(ctx, 999); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("unknown tournament: got %v, want ErrTournamentNotFound", err)
	}
}

func TestCalculateRankingPointsAndOrder(t *testing.T) {
	f := newStandingsFixture(nil)
	ctx := context.Background()
	league := f.seedLeague(t)

	tid := league.ID
	f.teamRepo.add(models.Team{ID: 1, Name: "Alpha", TournamentID: &tid})
	f.teamRepo.add(models.Team{ID: 2, Name: "Beta", TournamentID: &tid})
	f.teamRepo.add(models.Team{ID: 3, Name: "Gamma", TournamentID: &tid})

	// Alpha beats Beta 2:0, Beta and Gamma draw 1:1.
	f.seedEndedMatch(t, league.ID, 1, 2, 2, 0)
	f.seedEndedMatch(t, league.ID, 2, 3, 1, 1)

	standings, err := f.service.CalculateRanking(ctx, league.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("%d rows in table, want 3", len(standings))
	}

	want := []models.TeamStanding{
		{TeamID: 1, TeamName: "Alpha", Played: 1, Wins: 1, GoalsFor: 2, GoalsAgainst: 0, Points: 3},
		{TeamID: 2, TeamName: "Beta", Played: 2, Draws: 1, Losses: 1, GoalsFor: 1, GoalsAgainst: 3, Points: 1},
		{TeamID: 3, TeamName: "Gamma", Played: 1, Draws: 1, GoalsFor: 1, GoalsAgainst: 1, Points: 1},
	}
	for i, row := range want {
		if standings[i] != row {
			t.Errorf("row %d = %+v, want %+v", i, standings[i], row)
		}
	}
}

func TestCalculateRankingIgnoresPlannedResultsButListsTeams(t *testing.T) {
	f := newStandingsFixture(nil)
	ctx := context.Background()
	league := f.seedLeague(t)

	f.seedEndedMatch(t, league.ID, 1, 2, 1, 0)
	// A still-planned fixture contributes its teams with empty records.
	planned := &models.Match{TournamentID: league.ID, HomeTeamID: 3, AwayTeamID: 4, Status: models.MatchPlanned}
	if err := f.matchRepo.Create(ctx, nil, planned); err != nil {
		t.Fatalf("failed to seed match: %v", err)
	}

	standings, err := f.service.CalculateRanking(ctx, league.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(standings) != 4 {
		t.Fatalf("%d rows in table, want 4", len(standings))
	}
	for _, row := range standings {
		if row.TeamID == 3 || row.TeamID == 4 {
			if row.Played != 0 || row.Points != 0 {
				t.Errorf("team %d has played %d / %d points, want empty record", row.TeamID, row.Played, row.Points)
			}
		}
	}
}

func TestCalculateRankingUsesCache(t *testing.T) {
	cache := newFakeRankingCache()
	f := newStandingsFixture(cache)
	ctx := context.Background()
	league := f.seedLeague(t)
	f.seedEndedMatch(t, league.ID, 1, 2, 1, 1)

	first, err := f.service.CalculateRanking(ctx, league.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.setCalls != 1 {
		t.Errorf("cache written %d times, want 1", cache.setCalls)
	}

	// Second read is served from the cache without recomputation.
	f.seedEndedMatch(t, league.ID, 2, 1, 5, 0)
	second, err := f.service.CalculateRanking(ctx, league.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != len(first) || second[0] != first[0] {
		t.Errorf("cached read differs from first computation")
	}
	if cache.setCalls != 1 {
		t.Errorf("cache written %d times after cached read, want 1", cache.setCalls)
	}

	// Invalidation forces the fresh result through.
	if err := cache.Invalidate(ctx, league.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	third, err := f.service.CalculateRanking(ctx, league.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third[0].TeamID != 2 {
		t.Errorf("leader after invalidation is team %d, want 2", third[0].TeamID)
	}
}
