package services

import "errors"

// Business-rule errors shared across services and the HTTP mapping.
// Every rejection branch of the engine gets its own sentinel so the
// boundary can surface a precise reason to the user.
var (
	// Not found
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrCoachNotFound      = errors.New("coach not found")
	ErrRefereeNotFound    = errors.New("referee not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Conflicts
	ErrTournamentNameConflict = errors.New("tournament name is already in use")
	ErrTeamNameConflict       = errors.New("team name is already in use")

	// Tournament lifecycle
	ErrTournamentNameInvalid   = errors.New("tournament name must be between 1 and 100 characters")
	ErrTournamentFormatInvalid = errors.New("tournament format must be league or playoff")
	ErrTournamentNotPlanned    = errors.New("teams can only be attached while the tournament is planned")
	ErrTournamentNotActive     = errors.New("tournament is not active")
	ErrTournamentNotLeague     = errors.New("operation is only valid for league tournaments")
	ErrTournamentNotPlayoff    = errors.New("operation is only valid for playoff tournaments")
	ErrTournamentAlreadyOver   = errors.New("tournament has already ended or been canceled")
	ErrTournamentInUse         = errors.New("tournament cannot be deleted while other records reference it")
	ErrTeamCountTooSmall       = errors.New("at least two teams are required")
	ErrTeamCountNotPowerOfTwo  = errors.New("playoff tournaments require a power-of-two team count")
	ErrDuplicateTeamSelection  = errors.New("the same team was selected more than once")
	ErrTeamAlreadyInTournament = errors.New("team already belongs to a tournament")
	ErrScheduleExists          = errors.New("schedule has already been generated for this tournament")
	ErrScheduleNotGenerated    = errors.New("tournament has no generated schedule")

	// Round advancement
	ErrRoundHasNoMatches    = errors.New("current round has no matches")
	ErrRoundNotFinished     = errors.New("not all matches of the current round have ended")
	ErrRoundAlreadyAdvanced = errors.New("the current round was advanced by another request")
	ErrPlayoffTie           = errors.New("playoff matches cannot end in a tie")
	ErrOddWinnerCount       = errors.New("odd winner count: bracket state is corrupt")

	// Match results
	ErrMatchAlreadyEnded    = errors.New("match has already ended")
	ErrMatchNotEnded        = errors.New("match has no recorded result yet")
	ErrNegativeScore        = errors.New("scores must be non-negative")
	ErrRefereeRequired      = errors.New("match has no referee assigned")
	ErrRefereeAlreadySet    = errors.New("match already has a referee assigned")
	ErrSuspendedFieldPlayer = errors.New("a suspended player occupies a field position")

	// Match events
	ErrEventTypeInvalid = errors.New("event type must be goal or red_card")
	ErrPlayerNotInMatch = errors.New("player does not belong to either team of this match")
	ErrRoundSuperseded  = errors.New("events cannot be recorded for a round that has already been advanced past")
	ErrGoalLimitReached = errors.New("all goals of this side have already been recorded")

	// Roster and eligibility
	ErrPlayerNameInvalid       = errors.New("player first and last name must be between 1 and 50 characters")
	ErrRefereeNameInvalid      = errors.New("referee first and last name must be between 1 and 50 characters")
	ErrPlayerAgeInvalid        = errors.New("player age must be positive")
	ErrTeamNameInvalid         = errors.New("team name must be between 4 and 100 characters")
	ErrPositionInvalid         = errors.New("position must be field, substitute or none")
	ErrPlayerNotInTeam         = errors.New("player does not belong to this team")
	ErrPlayerAlreadyInTeam     = errors.New("player already belongs to a team")
	ErrPlayerAlreadyAtPosition = errors.New("player already plays at this position")
	ErrPlayerSuspended         = errors.New("a suspended player cannot be assigned a field position")
	ErrFieldSlotsFull          = errors.New("all field slots of this team are taken")
	ErrSubstituteSlotsFull     = errors.New("all substitute slots of this team are taken")
	ErrCoachAlreadyAssigned    = errors.New("coach already leads a team")
	ErrTeamInUse               = errors.New("team cannot be deleted while it belongs to a tournament or has matches")

	// Infrastructure
	ErrStorageDisabled = errors.New("file storage is not configured")
)
