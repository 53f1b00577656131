package models

import "time"

// Coach leads at most one team at a time.
type Coach struct {
	ID        int       `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Age       *int      `json:"age,omitempty" db:"age"`
	TeamID    *int      `json:"team_id,omitempty" db:"team_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
