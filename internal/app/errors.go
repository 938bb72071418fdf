package service

import (
	"errors"
	"fmt"

	"github.com/okian/daybook/internal/domain/model"
)

var (
	// ErrNotStarted is returned by operations that need Start to have run.
	ErrNotStarted = errors.New("service not started")
	// ErrAgendaWindow is returned when an agenda window is inverted or too wide.
	ErrAgendaWindow = fmt.Errorf("agenda window: %w", model.ErrInvalidRange)
)
