package models

import "time"

// MatchStatus mirrors the match_status ENUM. A match is immutable once
// ended, except for events recorded against the final score.
type MatchStatus string

const (
	MatchPlanned MatchStatus = "planned"
	MatchEnded   MatchStatus = "ended"
)

// Match references two distinct teams of one tournament. Round is set
// for playoff matches only; scores stay nil until the match ends.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	HomeTeamID   int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int         `json:"away_team_id" db:"away_team_id"`
	Round        *int        `json:"round,omitempty" db:"round"`
	HomeScore    *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int        `json:"away_score,omitempty" db:"away_score"`
	RefereeID    *int        `json:"referee_id,omitempty" db:"referee_id"`
	Status       MatchStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	HomeTeam *Team        `json:"home_team,omitempty" db:"-"`
	AwayTeam *Team        `json:"away_team,omitempty" db:"-"`
	Events   []MatchEvent `json:"events,omitempty" db:"-"`
}

// HasTeam reports whether teamID plays in this match.
func (m *Match) HasTeam(teamID int) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}
