package domain

import (
	"context"
	"fmt"
)

// CommandType is the kind of mutation a command carries.
type CommandType string

const (
	CommandMoveSession   CommandType = "MOVE_SESSION"
	CommandDeleteSession CommandType = "DELETE_SESSION"
)

// Error codes the backend is known to return. The dispatcher surfaces
// them without interpretation; policy lives in the caller.
const (
	CodeVersionMismatch    = "VERSION_MISMATCH"
	CodeConstraintConflict = "CONSTRAINT_CONFLICT"
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeUnknownCommand     = "UNKNOWN_COMMAND"
)

// CommandPayload carries the fields of a move or delete. Only the
// fields relevant to the command type are populated.
type CommandPayload struct {
	SessionID string `json:"sessionId"`
	ToJour    string `json:"toJour,omitempty"`
	ToCreneau int    `json:"toCreneau,omitempty"`
	ToSalle   string `json:"toSalle,omitempty"`
}

// Command is a versioned, idempotent mutation intent. CommandID is the
// idempotency key: unique per user action, reused only on a genuine
// retry of the same action.
type Command struct {
	CommandID       string         `json:"commandId"`
	ExpectedVersion int            `json:"expectedVersion"`
	Type            CommandType    `json:"type"`
	Payload         CommandPayload `json:"payload"`
}

// CommandResult is the success envelope of the commands endpoint: the
// new authoritative version and session list.
type CommandResult struct {
	OK       bool      `json:"ok"`
	Version  int       `json:"version"`
	Sessions []Session `json:"sessions"`
	Warnings []string  `json:"warnings"`
}

// CommandError is a structured rejection from the backend. Code is one
// of the Code* constants when the backend supplied one; Message is
// suitable for direct display to the user.
type CommandError struct {
	Code          string         `json:"code"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	Version       int            `json:"version,omitempty"`
	ServerVersion int            `json:"serverVersion,omitempty"`
	Status        int            `json:"-"`
}

func (e *CommandError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsVersionMismatch reports whether the rejection demands a full
// refetch of the authoritative timetable.
func (e *CommandError) IsVersionMismatch() bool {
	return e.Code == CodeVersionMismatch
}

// CommandDispatcher sends versioned commands to the backend. A non-nil
// error is either a *CommandError (backend rejection) or a transport
// failure.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd Command, scope Scope) (*CommandResult, error)
}

// RoomAvailability is a snapshot of free and taken physical rooms for
// one grid cell. It is valid only for the immediate decision being
// made; concurrent mutation is arbitrated by the version check.
type RoomAvailability struct {
	AvailableRooms []string `json:"availableRooms"`
	OccupiedRooms  []string `json:"occupiedRooms,omitempty"`
}

// RoomResolver queries the backend for free physical rooms in a cell.
// No caching: every call is a fresh query.
type RoomResolver interface {
	AvailableRooms(ctx context.Context, jour string, creneau int, scope Scope) (RoomAvailability, error)
}

// TimetableFetcher loads the authoritative timetable for a scope, used
// at startup and after a version mismatch.
type TimetableFetcher interface {
	FetchTimetable(ctx context.Context, scope Scope) (*TimetableSnapshot, error)
}
