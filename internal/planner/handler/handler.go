// Package handler exposes address resolution, sheet import, stop persistence
// and the weekly schedule over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"run-planner/internal/fileio"
	"run-planner/internal/middleware"
	"run-planner/internal/planner/address"
	"run-planner/internal/planner/importer"
	"run-planner/internal/planner/model"
)

// StopRepo persists service stops.
type StopRepo interface {
	SaveStops(ctx context.Context, stops []model.ServiceStop) ([]model.ServiceStop, error)
	ListStopsByPlan(ctx context.Context, planID string) ([]model.ServiceStop, error)
}

type Deps struct {
	Resolver  *address.Resolver
	Importer  *importer.Importer
	Book      address.AddressBook
	Stops     StopRepo
	Threshold float64 // default for /addresses/resolve
	MaxUpload int64   // bytes kept in memory while parsing multipart forms
	Location  *time.Location
	Now       func() time.Time
	Logger    zerolog.Logger
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxUpload <= 0 {
		d.MaxUpload = 32 << 20
	}
	return &Handler{Deps: d}
}

func (h *Handler) logger(r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return h.Logger.With().Str("rid", rid).Logger()
	}
	return h.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case model.IsValidation(err):
		return http.StatusUnprocessableEntity
	case model.IsLookup(err):
		return http.StatusBadGateway
	case errors.Is(err, fileio.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail logs server-side failures and writes the mapped status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= 500 {
		log := h.logger(r)
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal"
	}
	writeError(w, status, msg)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
