package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mwisniak/football-tournaments/brackets"
	"github.com/mwisniak/football-tournaments/models"
)

type matchFixture struct {
	service        MatchService
	matchRepo      *fakeMatchRepo
	tournamentRepo *fakeTournamentRepo
	playerRepo     *fakePlayerRepo
	refereeRepo    *fakeRefereeRepo
	rankingCache   *fakeRankingCache
	notifier       *fakeNotifier
}

func newMatchFixture() *matchFixture {
	f := &matchFixture{
		matchRepo:      newFakeMatchRepo(),
		tournamentRepo: newFakeTournamentRepo(),
		playerRepo:     newFakePlayerRepo(),
		refereeRepo:    newFakeRefereeRepo(),
		rankingCache:   newFakeRankingCache(),
		notifier:       &fakeNotifier{},
	}
	f.service = NewMatchService(
		nil,
		f.matchRepo,
		f.tournamentRepo,
		f.playerRepo,
		f.refereeRepo,
		f.rankingCache,
		f.notifier,
		testLogger(),
	)
	return f
}

// seedMatch creates a tournament, two teams of players, a referee and
// one planned match between the teams.
func (f *matchFixture) seedMatch(t *testing.T, format models.TournamentFormat) *models.Match {
	t.Helper()
	ctx := context.Background()

	tournament := &models.Tournament{Name: "Cup", Format: format, Status: models.TournamentActive}
	if err := f.tournamentRepo.Create(ctx, tournament); err != nil {
		t.Fatalf("failed to seed tournament: %v", err)
	}

	field := models.PositionField
	sub := models.PositionSubstitute
	for teamID := 1; teamID <= 2; teamID++ {
		id := teamID
		f.playerRepo.add(models.Player{FirstName: "Field", LastName: "One", TeamID: &id, Position: &field})
		f.playerRepo.add(models.Player{FirstName: "Field", LastName: "Two", TeamID: &id, Position: &field})
		f.playerRepo.add(models.Player{FirstName: "Bench", LastName: "One", TeamID: &id, Position: &sub})
	}

	referee := f.refereeRepo.add(models.Referee{FirstName: "Main", LastName: "Official"})

	match := &models.Match{
		TournamentID: tournament.ID,
		HomeTeamID:   1,
		AwayTeamID:   2,
		Status:       models.MatchPlanned,
	}
	if format == models.FormatPlayoff {
		round := 1
		match.Round = &round
		if err := f.tournamentRepo.UpdateCurrentRound(ctx, nil, tournament.ID, nil, &round); err != nil {
			t.Fatalf("failed to set current round: %v", err)
		}
	}
	if err := f.matchRepo.Create(ctx, nil, match); err != nil {
		t.Fatalf("failed to seed match: %v", err)
	}
	if err := f.matchRepo.UpdateReferee(ctx, match.ID, referee.ID); err != nil {
		t.Fatalf("failed to assign referee: %v", err)
	}
	match.RefereeID = &referee.ID
	return match
}

func TestAssignReferee(t *testing.T) {
	f := newMatchFixture()
	ctx := context.Background()

	tournament := &models.Tournament{Name: "Cup", Format: models.FormatLeague, Status: models.TournamentActive}
	if err := f.tournamentRepo.Create(ctx, tournament); err != nil {
		t.Fatalf("failed to seed tournament: %v", err)
	}
	match := &models.Match{TournamentID: tournament.ID, HomeTeamID: 1, AwayTeamID: 2, Status: models.MatchPlanned}
	if err := f.matchRepo.Create(ctx, nil, match); err != nil {
		t.Fatalf("failed to seed match: %v", err)
	}
	referee := f.refereeRepo.add(models.Referee{FirstName: "Main", LastName: "Official"})

	if err := f.service.AssignReferee(ctx, match.ID, 999); !errors.Is(err, ErrRefereeNotFound) {
		t.Errorf("unknown referee: got %v, want ErrRefereeNotFound", err)
	}
	if err := f.service.AssignReferee(ctx, match.ID, referee.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.service.AssignReferee(ctx, match.ID, referee.ID); !errors.Is(err, ErrRefereeAlreadySet) {
		t.Errorf("second assignment: got %v, want ErrRefereeAlreadySet", err)
	}

	if err := f.matchRepo.UpdateResult(ctx, nil, match.ID, 1, 0, models.MatchEnded); err != nil {
		t.Fatalf("failed to end match: %v", err)
	}
	other := f.refereeRepo.add(models.Referee{FirstName: "Backup", LastName: "Official"})
	if err := f.service.AssignReferee(ctx, match.ID, other.ID); !errors.Is(err, ErrMatchAlreadyEnded) {
		t.Errorf("assignment after end: got %v, want ErrMatchAlreadyEnded", err)
	}
}

func TestFinishMatchRejections(t *testing.T) {
	f := newMatchFixture()
	ctx := context.Background()
	match := f.seedMatch(t, models.FormatLeague)

	if _, err := f.service.FinishMatch(ctx, match.ID, -1, 0); !errors.Is(err, ErrNegativeScore) {
		t.Errorf("negative score: got %v, want ErrNegativeScore", err)
	}
	if _, err := f.service.FinishMatch(ctx, 999, 1, 0); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("unknown match: got %v, want ErrMatchNotFound", err)
	}

	// A match without a referee cannot produce a result.
	bare := &models.Match{TournamentID: match.TournamentID, HomeTeamID: 1, AwayTeamID: 2, Status: models.MatchPlanned}
	if err := f.matchRepo.Create(ctx, nil, bare); err != nil {
		t.Fatalf("failed to seed match: %v", err)
	}
	if _, err := f.service.FinishMatch(ctx, bare.ID, 1, 0); !errors.Is(err, ErrRefereeRequired) {
		t.Errorf("no referee: got %v, want ErrRefereeRequired", err)
	}

	if _, err := f.service.FinishMatch(ctx, match.ID, 2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.service.FinishMatch(ctx, match.ID, 2, 1); !errors.Is(err, ErrMatchAlreadyEnded) {
		t.Errorf("double finish: got %v, want ErrMatchAlreadyEnded", err)
	}
}

func TestFinishMatchRejectsPlayoffTie(t *testing.T) {
	f := newMatchFixture()
	match := f.seedMatch(t, models.FormatPlayoff)

	if _, err := f.service.FinishMatch(context.Background(), match.ID, 2, 2); !errors.Is(err, ErrPlayoffTie) {
		t.Errorf("tied playoff result: got %v, want ErrPlayoffTie", err)
	}
}

func TestFinishMatchRejectsSuspendedFieldPlayer(t *testing.T) {
	f := newMatchFixture()
	ctx := context.Background()
	match := f.seedMatch(t, models.FormatLeague)

	// Suspend one of the away side's field players.
	awayRoster, _ := f.playerRepo.ListByTeam(ctx, match.AwayTeamID)
	var suspendedID int
	for _, p := range awayRoster {
		if p.IsFieldPlayer() {
			suspendedID = p.ID
			break
		}
	}
	if err := f.playerRepo.UpdateStatus(ctx, nil, suspendedID, models.PlayerSuspended); err != nil {
		t.Fatalf("failed to suspend player: %v", err)
	}

	if _, err := f.service.FinishMatch(ctx, match.ID, 1, 0); !errors.Is(err, ErrSuspendedFieldPlayer) {
		t.Errorf("suspended field player: got %v, want ErrSuspendedFieldPlayer", err)
	}

	// Off the field position, the suspension no longer blocks the match
	// and gets lifted by the result.
	if err := f.playerRepo.UpdatePosition(ctx, nil, suspendedID, nil); err != nil {
		t.Fatalf("failed to clear position: %v", err)
	}
	if _, err := f.service.FinishMatch(ctx, match.ID, 1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reinstated, _ := f.playerRepo.GetByID(ctx, suspendedID)
	if reinstated.Status != models.PlayerActive {
		t.Errorf("suspended player has status %q after the match, want %q", reinstated.Status, models.PlayerActive)
	}
}

// plannedViewMatchRepo reports every match as still planned regardless
// of the stored state, standing in for a reader that lost a finish
// race.
type plannedViewMatchRepo struct {
	*fakeMatchRepo
}

func (r *plannedViewMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := r.fakeMatchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	match.Status = models.MatchPlanned
	match.HomeScore, match.AwayScore = nil, nil
	return match, nil
}

func TestFinishMatchRejectsConcurrentFinish(t *testing.T) {
	f := newMatchFixture()
	ctx := context.Background()
	match := f.seedMatch(t, models.FormatLeague)

	// A rival request finished the match after this one read it as
	// planned.
	if err := f.matchRepo.UpdateResult(ctx, nil, match.ID, 1, 0, models.MatchEnded); err != nil {
		t.Fatalf("failed to end match: %v", err)
	}
	service := NewMatchService(
		nil,
		&plannedViewMatchRepo{f.matchRepo},
		f.tournamentRepo,
		f.playerRepo,
		f.refereeRepo,
		f.rankingCache,
		f.notifier,
		testLogger(),
	)

	if _, err := service.FinishMatch(ctx, match.ID, 2, 1); !errors.Is(err, ErrMatchAlreadyEnded) {
		t.Errorf("lost finish race: got %v, want ErrMatchAlreadyEnded", err)
	}

	// The losing request must not overwrite the result or re-apply the
	// roster side effects.
	stored, _ := f.matchRepo.GetByID(ctx, match.ID)
	if *stored.HomeScore != 1 || *stored.AwayScore != 0 {
		t.Errorf("stored score %d:%d, want 1:0", *stored.HomeScore, *stored.AwayScore)
	}
	for _, teamID := range []int{match.HomeTeamID, match.AwayTeamID} {
		roster, _ := f.playerRepo.ListByTeam(ctx, teamID)
		for _, p := range roster {
			if p.Appearances != 0 {
				t.Errorf("player %d has %d appearances after the lost race, want 0", p.ID, p.Appearances)
			}
		}
	}
	if len(f.rankingCache.invalidated) != 0 {
		t.Errorf("ranking cache invalidated %v by the lost race, want none", f.rankingCache.invalidated)
	}
}

func TestFinishMatchRejectsTerminalTournament(t *testing.T) {
	f := newMatchFixture()
	ctx := context.Background()
	match := f.seedMatch(t, models.FormatLeague)

	if err := f.tournamentRepo.UpdateStatus(ctx, nil, match.TournamentID, models.TournamentActive, models.TournamentCanceled); err != nil {
		t.Fatalf("failed to cancel tournament: %v", err)
	}
	if _, err := f.service.FinishMatch(ctx, match.ID, 1, 0); !errors.Is(err, ErrTournamentAlreadyOver) {
		t.Errorf("result for canceled tournament: got %v, want ErrTournamentAlreadyOver", err)
	}
}

func TestFinishMatchRecordsResultAndAppearances(t *testing.T) {
	f := newMatchFixture()
	ctx := context.Background()
	match := f.seedMatch(t, models.FormatLeague)

	finished, err := f.service.FinishMatch(ctx, match.ID, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finished.Status != models.MatchEnded {
		t.Errorf("match status %q, want %q", finished.Status, models.MatchEnded)
	}
	if finished.HomeScore == nil || *finished.HomeScore != 3 || finished.AwayScore == nil || *finished.AwayScore != 1 {
		t.Errorf("recorded score %v:%v, want 3:1", finished.HomeScore, finished.AwayScore)
	}

	// Field players gain an appearance, substitutes do not.
	for _, teamID := range []int{match.HomeTeamID, match.AwayTeamID} {
		roster, _ := f.playerRepo.ListByTeam(ctx, teamID)
		for _, p := range roster {
			want := 0
			if p.IsFieldPlayer() {
				want = 1
			}
			if p.Appearances != want {
				t.Errorf("player %d (%v) has %d appearances, want %d", p.ID, p.Position, p.Appearances, want)
			}
		}
	}

	if len(f.rankingCache.invalidated) != 1 || f.rankingCache.invalidated[0] != match.TournamentID {
		t.Errorf("ranking cache invalidations %v, want [%d]", f.rankingCache.invalidated, match.TournamentID)
	}
	if len(f.notifier.notifications) != 1 || f.notifier.notifications[0].event != brackets.EventMatchFinished {
		t.Errorf("notifications %v, want one match-finished event", f.notifier.notifications)
	}
}
