// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/daybook/internal/adapters/repository"
	"github.com/okian/daybook/internal/domain/dedupe"
	"github.com/okian/daybook/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DayDependencies
	EventDependencies
	RecurringDependencies
	AgendaDependencies
	CalendarDependencies
}

// Server wires HTTP routes for the calendar API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	daysHandler      *DaysHandler
	eventsHandler    *EventsHandler
	recurringHandler *RecurringHandler
	agendaHandler    *AgendaHandler
	calendarHandler  *CalendarHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		daysHandler:      NewDaysHandler(deps),
		eventsHandler:    NewEventsHandler(deps),
		recurringHandler: NewRecurringHandler(deps),
		agendaHandler:    NewAgendaHandler(deps),
		calendarHandler:  NewCalendarHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/days/{date}", MetricsMiddleware(s.daysHandler.HandleDay, "days"))
	mux.HandleFunc("/conflicts", MetricsMiddleware(s.daysHandler.HandleConflicts, "conflicts"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleEvents, "events"))
	mux.HandleFunc("/recurring/{name}", MetricsMiddleware(s.recurringHandler.HandleDeleteRecurring, "recurring"))
	mux.HandleFunc("/agenda", MetricsMiddleware(s.agendaHandler.HandleAgenda, "agenda"))
	mux.HandleFunc("/calendar.ics", MetricsMiddleware(s.calendarHandler.HandleCalendar, "calendar"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type countResponse struct {
	Deleted int `json:"deleted"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps domain errors onto status codes.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, dedupe.ErrInFlight):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusConflict, "in_flight", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidTime),
		errors.Is(err, model.ErrInvalidRange),
		errors.Is(err, model.ErrInvalidDays):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

func methodNotAllowed(w http.ResponseWriter, allow ...string) {
	w.Header().Set("Allow", strings.Join(allow, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

// parseDate reads a YYYY-MM-DD value named field.
func parseDate(field, value string) (model.Date, error) {
	if strings.TrimSpace(value) == "" {
		return model.Date{}, fmt.Errorf("missing %s", field)
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}

// parseRange reads an HH:MM start/end pair.
func parseRange(start, end string) (model.TimeRange, error) {
	s, err := model.ParseClock(start)
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("invalid start: %w", err)
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("invalid end: %w", err)
	}
	return model.NewTimeRange(s, e)
}
