package domain

// RequestType is the kind of change a teacher proposes.
type RequestType string

const (
	RequestMove       RequestType = "MOVE"
	RequestChangeRoom RequestType = "CHANGE_ROOM"
	RequestDelete     RequestType = "DELETE"
	RequestInsert     RequestType = "INSERT"
)

// RequestStatus is the lifecycle state of a change request. Requests
// are PENDING until an admin decision; decided states are terminal.
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusApproved   RequestStatus = "APPROVED"
	StatusRejected   RequestStatus = "REJECTED"
	StatusSuperseded RequestStatus = "SUPERSEDED"
)

// SessionFields is the loosely populated field set carried by a change
// request. MOVE/CHANGE_ROOM use jour/creneau/salle; INSERT carries the
// full candidate session; DELETE carries only an optional motif.
type SessionFields struct {
	Formateur string `json:"formateur,omitempty"`
	Groupe    string `json:"groupe,omitempty"`
	Module    string `json:"module,omitempty"`
	Jour      string `json:"jour,omitempty"`
	Creneau   int    `json:"creneau,omitempty"`
	Salle     string `json:"salle,omitempty"`
	Motif     string `json:"motif,omitempty"`
}

// ChangeRequest is a teacher-origin proposal against the draft
// timetable. The client only displays status and asks the backend for
// decisions; it never mutates status itself.
type ChangeRequest struct {
	ID             string        `json:"id"`
	Type           RequestType   `json:"type"`
	SessionID      string        `json:"sessionId,omitempty"`
	TeacherID      string        `json:"teacherId"`
	OldData        SessionFields `json:"oldData"`
	NewData        SessionFields `json:"newData"`
	Status         RequestStatus `json:"status"`
	SubmittedAt    string        `json:"submittedAt"`
	DecidedAt      string        `json:"decidedAt,omitempty"`
	DecidedBy      string        `json:"decidedBy,omitempty"`
	DecisionReason string        `json:"decisionReason,omitempty"`
}

// VirtualState tags a session in the draft overlay view.
type VirtualState string

const (
	VirtualNormal              VirtualState = "NORMAL"
	VirtualToDelete            VirtualState = "TO_DELETE"
	VirtualInserted            VirtualState = "INSERTED"
	VirtualMovedAway           VirtualState = "MOVED_AWAY"
	VirtualProposedDestination VirtualState = "PROPOSED_DESTINATION"
)

// VirtualSession is a session annotated for the ghost view. Derived on
// every render pass, never persisted.
type VirtualSession struct {
	Session
	VirtualState VirtualState `json:"_virtualState"`
	RequestID    string       `json:"_virtualRequestId,omitempty"`
}

// VirtualView is the reconciled draft overlay: the base sessions with
// their tags plus the extra ghost entries (proposed destinations and
// inserts).
type VirtualView struct {
	Base  []VirtualSession `json:"sessionsBase"`
	Extra []VirtualSession `json:"sessionsExtra"`
}
