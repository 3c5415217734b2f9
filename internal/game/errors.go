package game

import "errors"

// Code classifies failures for transport-layer mapping.
type Code string

const (
	CodeValidation    Code = "validation"
	CodeRuleViolation Code = "rule_violation"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeUnavailable   Code = "unavailable"
)

// Rule violation reasons.
const (
	ReasonNotAParticipant    = "not_a_participant"
	ReasonOutOfTurn          = "out_of_turn"
	ReasonPositionTaken      = "position_taken"
	ReasonPositionOutOfRange = "position_out_of_range"
	ReasonInvalidTransition  = "invalid_transition"
)

// Error is a typed failure with a stable code and, for rule
// violations, a machine-readable reason. The message is safe to send
// to clients.
type Error struct {
	Code    Code
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on code and reason so callers can compare against the
// package sentinels regardless of the human-readable message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code != t.Code {
		return false
	}
	return t.Reason == "" || e.Reason == t.Reason
}

var (
	ErrNotAParticipant    = &Error{Code: CodeRuleViolation, Reason: ReasonNotAParticipant, Message: "you are not a player in this game"}
	ErrOutOfTurn          = &Error{Code: CodeRuleViolation, Reason: ReasonOutOfTurn, Message: "it is not your turn"}
	ErrPositionTaken      = &Error{Code: CodeRuleViolation, Reason: ReasonPositionTaken, Message: "position is not available"}
	ErrPositionOutOfRange = &Error{Code: CodeValidation, Reason: ReasonPositionOutOfRange, Message: "position must be between 0 and 8"}
	ErrInvalidTransition  = &Error{Code: CodeRuleViolation, Reason: ReasonInvalidTransition, Message: "action is not allowed in the current game state"}

	ErrNotFound    = &Error{Code: CodeNotFound, Message: "game not found"}
	ErrConflict    = &Error{Code: CodeConflict, Message: "game was modified concurrently"}
	ErrUnavailable = &Error{Code: CodeUnavailable, Message: "storage temporarily unavailable, try again"}
)

// invalidTransition builds an ErrInvalidTransition variant with a more
// specific message. errors.Is still matches the sentinel.
func invalidTransition(msg string) *Error {
	return &Error{Code: CodeRuleViolation, Reason: ReasonInvalidTransition, Message: msg}
}

// validationError reports malformed client input.
func validationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// CodeOf extracts the failure code from err, or empty for untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
