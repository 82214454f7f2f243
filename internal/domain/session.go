package domain

// VirtualRoomID is the reserved room identifier for online sessions.
// Online sessions keep this identity when moved and never compete for
// physical rooms.
const VirtualRoomID = "VIRTUEL"

// RoomTypeVirtual marks a room entry in the grid config as non-physical.
const RoomTypeVirtual = "VIRTUELLE"

// Scope selects between the official timetable and the draft used
// during negotiation.
type Scope string

const (
	ScopeOfficial Scope = "official"
	ScopeDraft    Scope = "draft"
)

// Session represents one scheduled occurrence in the week grid.
type Session struct {
	ID        string `json:"id"`
	Formateur string `json:"formateur"`
	Groupe    string `json:"groupe"`
	Module    string `json:"module"`
	Jour      string `json:"jour"`
	Creneau   int    `json:"creneau"`
	Salle     string `json:"salle"`
}

// IsOnline reports whether the session lives in the virtual room.
func (s Session) IsOnline() bool {
	return s.Salle == VirtualRoomID
}

// Cell is a coordinate in the day × time-slot grid.
type Cell struct {
	Jour    string
	Creneau int
}

// TimetableSnapshot is the authoritative state returned by the backend
// for one scope: the full session list plus its version counter.
// Draft snapshots additionally carry negotiation metadata.
type TimetableSnapshot struct {
	Version   int       `json:"version"`
	Sessions  []Session `json:"sessions"`
	WeekStart string    `json:"week_start,omitempty"`
	Revision  int       `json:"revision,omitempty"`
}
