package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"run-planner/internal/planner/importer"
	"run-planner/internal/planner/model"
	"run-planner/internal/planner/schedule"
)

// SaveStops handles POST /stops with a JSON array of stops. Nothing is saved
// unless every stop is valid.
func (h *Handler) SaveStops(w http.ResponseWriter, r *http.Request) {
	var stops []model.ServiceStop
	if err := decodeJSON(r, &stops); err != nil {
		if model.IsValidation(err) {
			h.fail(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if len(stops) == 0 {
		writeError(w, http.StatusBadRequest, "no stops")
		return
	}

	var problems []string
	for i, s := range stops {
		for _, p := range importer.Problems(s) {
			problems = append(problems, fmt.Sprintf("stop %d: %s", i+1, p))
		}
	}
	if len(problems) > 0 {
		h.fail(w, r, &model.ValidationError{Msg: strings.Join(problems, "; ")})
		return
	}

	saved, err := h.Stops.SaveStops(r.Context(), stops)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// PlanStops handles GET /plans/{planID}/stops.
func (h *Handler) PlanStops(w http.ResponseWriter, r *http.Request) {
	stops, err := h.Stops.ListStopsByPlan(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if stops == nil {
		stops = []model.ServiceStop{}
	}
	writeJSON(w, http.StatusOK, stops)
}

// PlanWeek handles GET /plans/{planID}/week?date=YYYY-MM-DD.
func (h *Handler) PlanWeek(w http.ResponseWriter, r *http.Request) {
	ref, err := refDate(r.URL.Query().Get("date"), h.Location, h.Now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	stops, err := h.Stops.ListStopsByPlan(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule.Aggregate(stops, ref))
}

type weekRequest struct {
	Date  string              `json:"date,omitempty"`
	Stops []model.ServiceStop `json:"stops"`
}

// Week handles POST /schedule/week for stops supplied in the body.
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	var req weekRequest
	if err := decodeJSON(r, &req); err != nil {
		if model.IsValidation(err) {
			h.fail(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	ref, err := refDate(req.Date, h.Location, h.Now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, schedule.Aggregate(req.Stops, ref))
}
