package domain

import "encoding/json"

// Room is a bookable room in the grid config. The backend serves two
// shapes: the current `{id,type}` object and a legacy bare string
// (treated as a physical room).
type Room struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// IsVirtual reports whether the room is the online/non-physical kind.
func (r Room) IsVirtual() bool {
	return r.Type == RoomTypeVirtual || r.ID == VirtualRoomID
}

func (r *Room) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Type = ""
		return nil
	}
	type alias Room
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Room(a)
	return nil
}

// GridConfig is the backend's /api/config payload: the fixed axes of
// the timetable grid and the room inventory.
type GridConfig struct {
	Jours            []string          `json:"jours"`
	Creneaux         []int             `json:"creneaux"`
	Salles           []Room            `json:"salles"`
	CategorieSalles  map[string]string `json:"categorieSalles,omitempty"`
	ModuleCategories map[string]string `json:"moduleCategories,omitempty"`
}

// GroupFusion maps a composite online-group id to its constituent real
// groups.
type GroupFusion struct {
	ID      string   `json:"id"`
	Groupes []string `json:"groupes"`
}

// FusionExpander expands a group id into the real groups it stands
// for. Ids without a registered fusion expand to themselves.
type FusionExpander interface {
	Expand(groupID string) []string
}

// TeacherRef identifies a trainer in the catalog.
type TeacherRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GroupRef identifies a student group in the catalog.
type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ModuleRef identifies a teaching module in the catalog.
type ModuleRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Assignment binds a teacher to a module they may teach.
type Assignment struct {
	Teacher string `json:"teacher"`
	Module  string `json:"module"`
}

// Catalog is the backend's /api/catalog payload. OnlineFusions may be
// absent from older backends; absent means no fusions.
type Catalog struct {
	Teachers      []TeacherRef  `json:"teachers"`
	Groups        []GroupRef    `json:"groups"`
	Modules       []ModuleRef   `json:"modules"`
	Assignments   []Assignment  `json:"assignments"`
	OnlineFusions []GroupFusion `json:"onlineFusions,omitempty"`
}
