package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/daybook/internal/adapters/eventfile"
	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/internal/domain/types"
)

// EventDependencies defines the interface for event endpoints.
type EventDependencies interface {
	CreateOneTime(ctx context.Context, requestID, name string, d model.Date, r model.TimeRange) (id string, duplicate bool, err error)
	DeleteOneTime(ctx context.Context, d model.Date, name string) bool
	ListOneTime(ctx context.Context) []model.Event
	ListRecurring(ctx context.Context) []model.Event
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest is the body of POST /events.
type eventRequest struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	RequestID string `json:"request_id"`
}

func (e eventRequest) parse() (model.Date, model.TimeRange, error) {
	if strings.TrimSpace(e.Name) == "" {
		return model.Date{}, model.TimeRange{}, errors.New("missing name")
	}
	if err := eventfile.ValidName(e.Name); err != nil {
		return model.Date{}, model.TimeRange{}, err
	}
	d, err := parseDate("date", e.Date)
	if err != nil {
		return model.Date{}, model.TimeRange{}, err
	}
	r, err := parseRange(e.Start, e.End)
	if err != nil {
		return model.Date{}, model.TimeRange{}, err
	}
	return d, r, nil
}

// HandleEvents dispatches /events by method.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.HandleListEvents(w, r)
	case http.MethodPost:
		h.HandlePostEvent(w, r)
	case http.MethodDelete:
		h.HandleDeleteEvent(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	d, tr, err := req.parse()
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	id, dup, err := h.deps.CreateOneTime(r.Context(), strings.TrimSpace(req.RequestID), strings.TrimSpace(req.Name), d, tr)
	switch {
	case err != nil:
		writeFailure(w, err)
	case dup:
		writeJSON(w, http.StatusOK, types.Created{ID: id, Status: "duplicate", Duplicate: true})
	default:
		writeJSON(w, http.StatusCreated, types.Created{ID: id, Status: "created"})
	}
}

// HandleDeleteEvent handles DELETE /events?date=&name=.
func (h *EventsHandler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_event"
	q := r.URL.Query()
	d, err := parseDate("date", q.Get("date"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	name := q.Get("name")
	if strings.TrimSpace(name) == "" {
		writeFailure(w, WrapKind(op, ErrBadRequest, errors.New("missing name")))
		return
	}
	if !h.deps.DeleteOneTime(r.Context(), d, name) {
		writeFailure(w, NewKind(op, ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListEvents handles GET /events.
func (h *EventsHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.Listing{
		OneTime:   types.FromEvents(h.deps.ListOneTime(r.Context())),
		Recurring: types.FromEvents(h.deps.ListRecurring(r.Context())),
	})
}
