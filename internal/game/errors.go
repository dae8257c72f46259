package game

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a game that could not be created.
	ErrConfiguration = errors.New("invalid game configuration")

	// ErrIllegalAction marks a rejected action. State is never changed.
	ErrIllegalAction = errors.New("illegal action")

	// ErrInvariantViolation signals an engine defect, not a user error.
	ErrInvariantViolation = errors.New("engine invariant violated")
)

// ConfigError describes why a game could not be created.
type ConfigError struct {
	Players int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("number of players must be between %d and %d, got %d", MinPlayers, MaxPlayers, e.Players)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Reason is a machine-readable cause for an illegal action.
type Reason string

const (
	ReasonWrongPhase    Reason = "wrong_phase"
	ReasonGameOver      Reason = "game_over"
	ReasonNoSuchFactory Reason = "no_such_factory"
	ReasonBadSource     Reason = "bad_source"
	ReasonBadColor      Reason = "bad_color"
	ReasonColorAbsent   Reason = "color_absent"
	ReasonBadLine       Reason = "bad_line"
	ReasonLineRejected  Reason = "line_rejected"
)

// ActionError is returned for every rejected action.
type ActionError struct {
	Action Action
	Reason Reason
	Detail string
}

func (e *ActionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("illegal action (%s): %s: %s", e.Action, e.Reason, e.Detail)
	}
	return fmt.Sprintf("illegal action (%s): %s", e.Action, e.Reason)
}

func (e *ActionError) Unwrap() error { return ErrIllegalAction }

func illegal(a Action, r Reason, format string, args ...any) error {
	return &ActionError{Action: a, Reason: r, Detail: fmt.Sprintf(format, args...)}
}

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
