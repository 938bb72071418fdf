package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// CalendarDependencies defines what the iCalendar export needs.
type CalendarDependencies interface {
	WriteICS(ctx context.Context, w io.Writer) error
}

// CalendarHandler serves the iCalendar export.
type CalendarHandler struct {
	deps CalendarDependencies
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(deps CalendarDependencies) *CalendarHandler {
	return &CalendarHandler{deps: deps}
}

// HandleCalendar handles GET /calendar.ics. The body is buffered so an encode
// failure can still be reported with a 500.
func (h *CalendarHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	var buf bytes.Buffer
	if err := h.deps.WriteICS(r.Context(), &buf); err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
