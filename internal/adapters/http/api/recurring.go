package api

import (
	"context"
	"net/http"
)

// RecurringDependencies defines what the recurring handler needs.
type RecurringDependencies interface {
	DeleteRecurring(ctx context.Context, name string) int
}

// RecurringHandler deletes recurring events by name.
type RecurringHandler struct {
	deps RecurringDependencies
}

// NewRecurringHandler creates a new recurring handler.
func NewRecurringHandler(deps RecurringDependencies) *RecurringHandler {
	return &RecurringHandler{deps: deps}
}

// HandleDeleteRecurring handles DELETE /recurring/{name}.
func (h *RecurringHandler) HandleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_recurring"
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	n := h.deps.DeleteRecurring(r.Context(), r.PathValue("name"))
	if n == 0 {
		writeFailure(w, NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Deleted: n})
}
