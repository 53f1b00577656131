package models

// TeamStanding is one row of a league ranking, derived on demand from
// the tournament's ended matches. Win = 3 points, draw = 1.
type TeamStanding struct {
	TeamID       int    `json:"team_id"`
	TeamName     string `json:"team_name,omitempty"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Points       int    `json:"points"`
}

// GoalDifference is reported for display; it does not participate in
// the ranking order.
func (s TeamStanding) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}
