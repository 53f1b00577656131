package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mwisniak/football-tournaments/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	errorResponse(w, r, http.StatusInternalServerError,
		"the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unprocessableResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

// mapServiceErrorToHTTP translates the service error taxonomy into
// HTTP statuses: missing resources 404, state collisions 409, rule
// violations 422, malformed input 400, everything else 500.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrCoachNotFound),
		errors.Is(err, services.ErrRefereeNotFound),
		errors.Is(err, services.ErrMatchNotFound):
		notFoundResponse(w, r)

	case errors.Is(err, services.ErrTournamentNameConflict),
		errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrScheduleExists),
		errors.Is(err, services.ErrMatchAlreadyEnded),
		errors.Is(err, services.ErrRefereeAlreadySet),
		errors.Is(err, services.ErrTeamAlreadyInTournament),
		errors.Is(err, services.ErrTournamentAlreadyOver),
		errors.Is(err, services.ErrRoundAlreadyAdvanced),
		errors.Is(err, services.ErrTournamentInUse),
		errors.Is(err, services.ErrTeamInUse):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrTournamentNameInvalid),
		errors.Is(err, services.ErrTournamentFormatInvalid),
		errors.Is(err, services.ErrPlayerNameInvalid),
		errors.Is(err, services.ErrRefereeNameInvalid),
		errors.Is(err, services.ErrPlayerAgeInvalid),
		errors.Is(err, services.ErrTeamNameInvalid),
		errors.Is(err, services.ErrPositionInvalid),
		errors.Is(err, services.ErrEventTypeInvalid),
		errors.Is(err, services.ErrNegativeScore),
		errors.Is(err, services.ErrDuplicateTeamSelection):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrTournamentNotPlanned),
		errors.Is(err, services.ErrTournamentNotActive),
		errors.Is(err, services.ErrTournamentNotLeague),
		errors.Is(err, services.ErrTournamentNotPlayoff),
		errors.Is(err, services.ErrTeamCountTooSmall),
		errors.Is(err, services.ErrTeamCountNotPowerOfTwo),
		errors.Is(err, services.ErrScheduleNotGenerated),
		errors.Is(err, services.ErrRoundHasNoMatches),
		errors.Is(err, services.ErrRoundNotFinished),
		errors.Is(err, services.ErrPlayoffTie),
		errors.Is(err, services.ErrOddWinnerCount),
		errors.Is(err, services.ErrMatchNotEnded),
		errors.Is(err, services.ErrRefereeRequired),
		errors.Is(err, services.ErrSuspendedFieldPlayer),
		errors.Is(err, services.ErrPlayerNotInMatch),
		errors.Is(err, services.ErrRoundSuperseded),
		errors.Is(err, services.ErrGoalLimitReached),
		errors.Is(err, services.ErrPlayerNotInTeam),
		errors.Is(err, services.ErrPlayerAlreadyInTeam),
		errors.Is(err, services.ErrPlayerAlreadyAtPosition),
		errors.Is(err, services.ErrPlayerSuspended),
		errors.Is(err, services.ErrFieldSlotsFull),
		errors.Is(err, services.ErrSubstituteSlotsFull),
		errors.Is(err, services.ErrCoachAlreadyAssigned):
		unprocessableResponse(w, r, err)

	case errors.Is(err, services.ErrStorageDisabled):
		errorResponse(w, r, http.StatusNotImplemented, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		idStr = chi.URLParam(r, "id")
		if idStr == "" {
			return 0, fmt.Errorf("missing %s or id in URL path", paramName)
		}
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	return id, nil
}
