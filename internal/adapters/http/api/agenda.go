package api

import (
	"context"
	"net/http"

	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/internal/domain/types"
)

// AgendaDependencies defines what the agenda handler needs.
type AgendaDependencies interface {
	Agenda(ctx context.Context, from, to model.Date) ([]model.Occurrence, error)
}

// AgendaHandler expands events over a date window.
type AgendaHandler struct {
	deps AgendaDependencies
}

// NewAgendaHandler creates a new agenda handler.
func NewAgendaHandler(deps AgendaDependencies) *AgendaHandler {
	return &AgendaHandler{deps: deps}
}

// HandleAgenda handles GET /agenda?from=&to=.
func (h *AgendaHandler) HandleAgenda(w http.ResponseWriter, r *http.Request) {
	const op = "api.agenda"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	from, err := parseDate("from", q.Get("from"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	to, err := parseDate("to", q.Get("to"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	occs, err := h.deps.Agenda(r.Context(), from, to)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromOccurrences(occs))
}
