package services

import (
	"context"
	"sort"

	"github.com/mwisniak/football-tournaments/models"
	"github.com/mwisniak/football-tournaments/repositories"
)

// In-memory repository fakes. Services run their transactional blocks
// through runInTx with a nil handle, so every repository call lands
// here directly.

type fakeTournamentRepo struct {
	nextID      int
	tournaments map[int]models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{nextID: 1, tournaments: make(map[int]models.Tournament)}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = r.nextID
	r.nextID++
	r.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]models.Tournament, error) {
	result := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, from, to models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.Status != from {
		return repositories.ErrTournamentStale
	}
	t.Status = to
	r.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateCurrentRound(ctx context.Context, exec repositories.SQLExecutor, id int, from, to *int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if !equalIntPtr(t.CurrentRound, from) {
		return repositories.ErrTournamentStale
	}
	t.CurrentRound = to
	r.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeTeamRepo struct {
	nextID int
	teams  map[int]models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{nextID: 1, teams: make(map[int]models.Team)}
}

func (r *fakeTeamRepo) add(team models.Team) models.Team {
	if team.ID == 0 {
		team.ID = r.nextID
		r.nextID++
	} else if team.ID >= r.nextID {
		r.nextID = team.ID + 1
	}
	r.teams[team.ID] = team
	return team
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	*team = r.add(*team)
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := t
	return &copied, nil
}

func (r *fakeTeamRepo) List(ctx context.Context, withoutTournament bool) ([]models.Team, error) {
	result := make([]models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		if withoutTournament && t.TournamentID != nil {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	ids := make([]int, 0, len(r.teams))
	for id, t := range r.teams {
		if t.TournamentID != nil && *t.TournamentID == tournamentID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	result := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		t := r.teams[id]
		result = append(result, &t)
	}
	return result, nil
}

func (r *fakeTeamRepo) UpdateTournament(ctx context.Context, exec repositories.SQLExecutor, teamID int, tournamentID *int) error {
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.TournamentID = tournamentID
	r.teams[teamID] = t
	return nil
}

func (r *fakeTeamRepo) UpdateCrestKey(ctx context.Context, teamID int, crestKey *string) error {
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.CrestKey = crestKey
	r.teams[teamID] = t
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakePlayerRepo struct {
	nextID  int
	players map[int]models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{nextID: 1, players: make(map[int]models.Player)}
}

func (r *fakePlayerRepo) add(p models.Player) models.Player {
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	} else if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	if p.Status == "" {
		p.Status = models.PlayerActive
	}
	r.players[p.ID] = p
	return p
}

func (r *fakePlayerRepo) Create(ctx context.Context, p *models.Player) error {
	*p = r.add(*p)
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := p
	return &copied, nil
}

func (r *fakePlayerRepo) List(ctx context.Context, freeAgentsOnly bool) ([]models.Player, error) {
	result := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		if freeAgentsOnly && p.TeamID != nil {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakePlayerRepo) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	ids := make([]int, 0, len(r.players))
	for id, p := range r.players {
		if p.TeamID != nil && *p.TeamID == teamID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	result := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		p := r.players[id]
		result = append(result, &p)
	}
	return result, nil
}

func (r *fakePlayerRepo) UpdateTeam(ctx context.Context, exec repositories.SQLExecutor, playerID int, teamID *int) error {
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.TeamID = teamID
	r.players[playerID] = p
	return nil
}

func (r *fakePlayerRepo) UpdatePosition(ctx context.Context, exec repositories.SQLExecutor, playerID int, position *models.PlayerPosition) error {
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Position = position
	r.players[playerID] = p
	return nil
}

func (r *fakePlayerRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, playerID int, status models.PlayerStatus) error {
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Status = status
	r.players[playerID] = p
	return nil
}

func (r *fakePlayerRepo) IncrementGoals(ctx context.Context, exec repositories.SQLExecutor, playerID int) error {
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Goals++
	r.players[playerID] = p
	return nil
}

func (r *fakePlayerRepo) IncrementAppearances(ctx context.Context, exec repositories.SQLExecutor, teamIDs []int) error {
	for id, p := range r.players {
		if p.TeamID == nil || !containsInt(teamIDs, *p.TeamID) {
			continue
		}
		if p.IsFieldPlayer() {
			p.Appearances++
			r.players[id] = p
		}
	}
	return nil
}

func (r *fakePlayerRepo) ClearSuspensions(ctx context.Context, exec repositories.SQLExecutor, teamIDs []int) error {
	for id, p := range r.players {
		if p.TeamID == nil || !containsInt(teamIDs, *p.TeamID) {
			continue
		}
		if p.Status == models.PlayerSuspended {
			p.Status = models.PlayerActive
			r.players[id] = p
		}
	}
	return nil
}

type fakeCoachRepo struct {
	nextID  int
	coaches map[int]models.Coach
}

func newFakeCoachRepo() *fakeCoachRepo {
	return &fakeCoachRepo{nextID: 1, coaches: make(map[int]models.Coach)}
}

func (r *fakeCoachRepo) add(c models.Coach) models.Coach {
	if c.ID == 0 {
		c.ID = r.nextID
		r.nextID++
	}
	r.coaches[c.ID] = c
	return c
}

func (r *fakeCoachRepo) Create(ctx context.Context, c *models.Coach) error {
	*c = r.add(*c)
	return nil
}

func (r *fakeCoachRepo) GetByID(ctx context.Context, id int) (*models.Coach, error) {
	c, ok := r.coaches[id]
	if !ok {
		return nil, repositories.ErrCoachNotFound
	}
	copied := c
	return &copied, nil
}

func (r *fakeCoachRepo) GetByTeam(ctx context.Context, teamID int) (*models.Coach, error) {
	for _, c := range r.coaches {
		if c.TeamID != nil && *c.TeamID == teamID {
			copied := c
			return &copied, nil
		}
	}
	return nil, repositories.ErrCoachNotFound
}

func (r *fakeCoachRepo) List(ctx context.Context, withoutTeam bool) ([]models.Coach, error) {
	result := make([]models.Coach, 0, len(r.coaches))
	for _, c := range r.coaches {
		if withoutTeam && c.TeamID != nil {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeCoachRepo) UpdateTeam(ctx context.Context, exec repositories.SQLExecutor, coachID int, teamID *int) error {
	c, ok := r.coaches[coachID]
	if !ok {
		return repositories.ErrCoachNotFound
	}
	c.TeamID = teamID
	r.coaches[coachID] = c
	return nil
}

type fakeRefereeRepo struct {
	nextID   int
	referees map[int]models.Referee
}

func newFakeRefereeRepo() *fakeRefereeRepo {
	return &fakeRefereeRepo{nextID: 1, referees: make(map[int]models.Referee)}
}

func (r *fakeRefereeRepo) add(ref models.Referee) models.Referee {
	if ref.ID == 0 {
		ref.ID = r.nextID
		r.nextID++
	}
	r.referees[ref.ID] = ref
	return ref
}

func (r *fakeRefereeRepo) Create(ctx context.Context, ref *models.Referee) error {
	*ref = r.add(*ref)
	return nil
}

func (r *fakeRefereeRepo) GetByID(ctx context.Context, id int) (*models.Referee, error) {
	ref, ok := r.referees[id]
	if !ok {
		return nil, repositories.ErrRefereeNotFound
	}
	copied := ref
	return &copied, nil
}

func (r *fakeRefereeRepo) List(ctx context.Context) ([]models.Referee, error) {
	result := make([]models.Referee, 0, len(r.referees))
	for _, ref := range r.referees {
		result = append(result, ref)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: make(map[int]models.Match)}
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	m.ID = r.nextID
	r.nextID++
	r.matches[m.ID] = *m
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	result := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && (m.Round == nil || *m.Round != *round) {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		copied := m
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		ri, rj := result[i].Round, result[j].Round
		if ri == nil && rj != nil {
			return true
		}
		if ri != nil && rj == nil {
			return false
		}
		if ri != nil && rj != nil && *ri != *rj {
			return *ri < *rj
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *fakeMatchRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) CountByTeam(ctx context.Context, teamID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.HomeTeamID == teamID || m.AwayTeamID == teamID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, homeScore, awayScore int, status models.MatchStatus) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.Status != models.MatchPlanned {
		return repositories.ErrMatchNotPlanned
	}
	m.HomeScore = &homeScore
	m.AwayScore = &awayScore
	m.Status = status
	r.matches[id] = m
	return nil
}

func (r *fakeMatchRepo) UpdateReferee(ctx context.Context, id int, refereeID int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.RefereeID = &refereeID
	r.matches[id] = m
	return nil
}

type fakeEventRepo struct {
	nextID  int
	events  []models.MatchEvent
	players *fakePlayerRepo
}

func newFakeEventRepo(players *fakePlayerRepo) *fakeEventRepo {
	return &fakeEventRepo{nextID: 1, players: players}
}

func (r *fakeEventRepo) Create(ctx context.Context, exec repositories.SQLExecutor, e *models.MatchEvent) error {
	e.ID = r.nextID
	r.nextID++
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeEventRepo) ListByMatch(ctx context.Context, matchID int) ([]models.MatchEvent, error) {
	result := make([]models.MatchEvent, 0)
	for _, e := range r.events {
		if e.MatchID == matchID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) CountGoalsByTeam(ctx context.Context, exec repositories.SQLExecutor, matchID, teamID int) (int, error) {
	count := 0
	for _, e := range r.events {
		if e.MatchID != matchID || e.Type != models.EventGoal {
			continue
		}
		p, ok := r.players.players[e.PlayerID]
		if ok && p.TeamID != nil && *p.TeamID == teamID {
			count++
		}
	}
	return count, nil
}

type fakeRankingCache struct {
	entries     map[int][]models.TeamStanding
	invalidated []int
	getCalls    int
	setCalls    int
}

func newFakeRankingCache() *fakeRankingCache {
	return &fakeRankingCache{entries: make(map[int][]models.TeamStanding)}
}

func (c *fakeRankingCache) Get(ctx context.Context, tournamentID int) ([]models.TeamStanding, error) {
	c.getCalls++
	return c.entries[tournamentID], nil
}

func (c *fakeRankingCache) Set(ctx context.Context, tournamentID int, standings []models.TeamStanding) error {
	c.setCalls++
	c.entries[tournamentID] = standings
	return nil
}

func (c *fakeRankingCache) Invalidate(ctx context.Context, tournamentID int) error {
	c.invalidated = append(c.invalidated, tournamentID)
	delete(c.entries, tournamentID)
	return nil
}

type notification struct {
	tournamentID int
	event        string
}

type fakeNotifier struct {
	notifications []notification
}

func (n *fakeNotifier) NotifyTournament(tournamentID int, event string, payload interface{}) {
	n.notifications = append(n.notifications, notification{tournamentID: tournamentID, event: event})
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
