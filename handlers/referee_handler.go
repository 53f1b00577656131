package handlers

import (
	"net/http"

	"github.com/mwisniak/football-tournaments/services"
)

type RefereeHandler struct {
	refereeService services.RefereeService
}

func NewRefereeHandler(refereeService services.RefereeService) *RefereeHandler {
	return &RefereeHandler{refereeService: refereeService}
}

func (h *RefereeHandler) CreateRefereeHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateRefereeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee, err := h.refereeService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) ListRefereesHandler(w http.ResponseWriter, r *http.Request) {
	referees, err := h.refereeService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"referees": referees}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
