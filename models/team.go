package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	TournamentID *int      `json:"tournament_id,omitempty" db:"tournament_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	CrestKey *string `json:"-" db:"crest_key"`
	CrestURL *string `json:"crest_url,omitempty" db:"-"`

	Players []Player `json:"players,omitempty" db:"-"`
	Coach   *Coach   `json:"coach,omitempty" db:"-"`
}
