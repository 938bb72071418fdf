package api

import (
	"context"
	"net/http"

	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/internal/domain/types"
)

// DayDependencies defines what the day handlers need.
type DayDependencies interface {
	OccurrencesOn(ctx context.Context, d model.Date) []model.Occurrence
	HasConflict(ctx context.Context, d model.Date, r model.TimeRange) bool
	DeleteAllOn(ctx context.Context, d model.Date) int
}

// DaysHandler serves a single day and conflict checks.
type DaysHandler struct {
	deps DayDependencies
}

// NewDaysHandler creates a new days handler.
func NewDaysHandler(deps DayDependencies) *DaysHandler {
	return &DaysHandler{deps: deps}
}

// HandleDay handles GET and DELETE /days/{date}.
func (h *DaysHandler) HandleDay(w http.ResponseWriter, r *http.Request) {
	const op = "api.day"
	d, err := parseDate("date", r.PathValue("date"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, types.FromOccurrences(h.deps.OccurrencesOn(r.Context(), d)))
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, countResponse{Deleted: h.deps.DeleteAllOn(r.Context(), d)})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

type conflictResponse struct {
	Conflict bool `json:"conflict"`
}

// HandleConflicts handles GET /conflicts?date=&start=&end=.
func (h *DaysHandler) HandleConflicts(w http.ResponseWriter, r *http.Request) {
	const op = "api.conflicts"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	d, err := parseDate("date", q.Get("date"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	tr, err := parseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, conflictResponse{Conflict: h.deps.HasConflict(r.Context(), d, tr)})
}
