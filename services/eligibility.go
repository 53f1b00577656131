package services

import (
	"fmt"

	"github.com/mwisniak/football-tournaments/models"
)

// Default squad composition limits.
const (
	MaxFieldPlayers = 5
	MaxSubstitutes  = 4
)

type RosterLimits struct {
	Field      int
	Substitute int
}

func DefaultRosterLimits() RosterLimits {
	return RosterLimits{Field: MaxFieldPlayers, Substitute: MaxSubstitutes}
}

// EligibilityChecker holds the pure roster-composition rules. It never
// mutates anything; callers apply changes only after a nil result.
type EligibilityChecker struct {
	limits RosterLimits
}

func NewEligibilityChecker(limits RosterLimits) *EligibilityChecker {
	if limits.Field <= 0 {
		limits.Field = MaxFieldPlayers
	}
	if limits.Substitute <= 0 {
		limits.Substitute = MaxSubstitutes
	}
	return &EligibilityChecker{limits: limits}
}

// CanAssignPosition validates moving player to newPosition (nil means
// off the squad) within team. teammates must be the team's current
// roster; player may or may not be part of the slice.
func (c *EligibilityChecker) CanAssignPosition(player *models.Player, team *models.Team, teammates []*models.Player, newPosition *models.PlayerPosition) error {
	if player.TeamID == nil || *player.TeamID != team.ID {
		return ErrPlayerNotInTeam
	}
	if samePosition(player.Position, newPosition) {
		return ErrPlayerAlreadyAtPosition
	}

	if newPosition == nil {
		return nil
	}

	switch *newPosition {
	case models.PositionField:
		if player.Status == models.PlayerSuspended {
			return ErrPlayerSuspended
		}
		if c.countAtPosition(teammates, player.ID, models.PositionField) >= c.limits.Field {
			return ErrFieldSlotsFull
		}
	case models.PositionSubstitute:
		if c.countAtPosition(teammates, player.ID, models.PositionSubstitute) >= c.limits.Substitute {
			return ErrSubstituteSlotsFull
		}
	default:
		return ErrPositionInvalid
	}

	return nil
}

// CanRegisterTeam validates the founding roster of a new team: every
// player must be a free agent and the coach must not lead another team.
func (c *EligibilityChecker) CanRegisterTeam(players []*models.Player, coach *models.Coach) error {
	for _, p := range players {
		if p.TeamID != nil {
			return fmt.Errorf("%w: %s", ErrPlayerAlreadyInTeam, p.FullName())
		}
	}
	if coach != nil && coach.TeamID != nil {
		return ErrCoachAlreadyAssigned
	}
	return nil
}

func (c *EligibilityChecker) countAtPosition(players []*models.Player, excludeID int, position models.PlayerPosition) int {
	count := 0
	for _, p := range players {
		if p.ID == excludeID {
			continue
		}
		if p.Position != nil && *p.Position == position {
			count++
		}
	}
	return count
}

func samePosition(a, b *models.PlayerPosition) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
