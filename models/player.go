package models

import "time"

// PlayerPosition mirrors the player_position ENUM. A nil position on
// Player means the player is registered but not in the squad.
type PlayerPosition string

const (
	PositionField      PlayerPosition = "field"
	PositionSubstitute PlayerPosition = "substitute"
)

// PlayerStatus mirrors the player_status ENUM. Suspension is
// single-match: it is set by a red card event and cleared by the next
// finished match of the player's team.
type PlayerStatus string

const (
	PlayerActive    PlayerStatus = "active"
	PlayerSuspended PlayerStatus = "suspended"
)

type Player struct {
	ID          int             `json:"id" db:"id"`
	FirstName   string          `json:"first_name" db:"first_name"`
	LastName    string          `json:"last_name" db:"last_name"`
	Age         int             `json:"age" db:"age"`
	TeamID      *int            `json:"team_id,omitempty" db:"team_id"`
	Position    *PlayerPosition `json:"position,omitempty" db:"position"`
	Status      PlayerStatus    `json:"status" db:"status"`
	Goals       int             `json:"goals" db:"goals"`
	Appearances int             `json:"appearances" db:"appearances"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// FullName is used in user-facing validation messages.
func (p *Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

// IsFieldPlayer reports whether the player occupies a field slot.
func (p *Player) IsFieldPlayer() bool {
	return p.Position != nil && *p.Position == PositionField
}
