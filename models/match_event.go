package models

import "time"

// MatchEventType mirrors the match_event_type ENUM.
type MatchEventType string

const (
	EventGoal    MatchEventType = "goal"
	EventRedCard MatchEventType = "red_card"
)

// MatchEvent is a discrete in-match occurrence attributed to a player
// of one of the match's two teams.
type MatchEvent struct {
	ID        int            `json:"id" db:"id"`
	MatchID   int            `json:"match_id" db:"match_id"`
	PlayerID  int            `json:"player_id" db:"player_id"`
	Type      MatchEventType `json:"type" db:"event_type"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
