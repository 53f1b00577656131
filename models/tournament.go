package models

import "time"

// TournamentFormat mirrors the tournament_format ENUM in the database.
type TournamentFormat string

const (
	FormatLeague  TournamentFormat = "league"
	FormatPlayoff TournamentFormat = "playoff"
)

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentPlanned  TournamentStatus = "planned"
	TournamentActive   TournamentStatus = "active"
	TournamentEnded    TournamentStatus = "ended"
	TournamentCanceled TournamentStatus = "canceled"
)

// Tournament is the aggregate root of the progression engine.
// CurrentRound is only set for playoff tournaments with a generated
// bracket; league tournaments are not round-scoped.
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Format       TournamentFormat `json:"format" db:"format"`
	Status       TournamentStatus `json:"status" db:"status"`
	CurrentRound *int             `json:"current_round,omitempty" db:"current_round"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	// Optional linked entities, populated by the service layer.
	Teams   []Team  `json:"teams,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}

// IsTerminal reports whether no further mutating operation may touch
// the tournament.
func (t *Tournament) IsTerminal() bool {
	return t.Status == TournamentEnded || t.Status == TournamentCanceled
}
