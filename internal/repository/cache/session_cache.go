// Package cache holds the client-side copy of one scope's timetable.
// It is pure data-structure logic: the authoritative state always
// comes from the backend, the cache only mirrors it between fetches
// and hosts the optimistic mutations of the coordinator.
package cache

import (
	"sync"

	"edtclient/internal/domain"
)

// ConflictKind classifies why a session clashes with a grid cell.
type ConflictKind string

const (
	ConflictTeacher ConflictKind = "teacher"
	ConflictGroup   ConflictKind = "group"
	ConflictRoom    ConflictKind = "room"
)

// SessionCache is the only shared mutable resource on the client. It
// is mutated exclusively by full refreshes and by the coordinator's
// optimistic apply/rollback.
type SessionCache struct {
	mu       sync.RWMutex
	sessions []domain.Session
	version  int
	expander domain.FusionExpander
}

// New returns an empty cache. The expander is consulted for
// group-based conflict and filter matching.
func New(expander domain.FusionExpander) *SessionCache {
	return &SessionCache{expander: expander}
}

// List returns a copy of the current session collection.
func (c *SessionCache) List() []domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// Version returns the last version adopted from the backend.
func (c *SessionCache) Version() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Replace adopts a new collection and version wholesale. Used for
// fetch responses, command confirmations, and rollbacks alike.
func (c *SessionCache) Replace(sessions []domain.Session, version int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = make([]domain.Session, len(sessions))
	copy(c.sessions, sessions)
	c.version = version
}

// Get looks a session up by id.
func (c *SessionCache) Get(id string) (domain.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Session{}, false
}

// HasConflict scans all sessions except the candidate itself and
// returns the first one occupying the target cell with the same
// teacher, an overlapping group, or the same physical room. Checks run
// teacher, then group, then room per session, so aborts always name
// the strongest reason.
func (c *SessionCache) HasConflict(candidate domain.Session, target domain.Cell) (*domain.Session, ConflictKind) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.sessions {
		s := c.sessions[i]
		if s.ID == candidate.ID {
			continue
		}
		if s.Jour != target.Jour || s.Creneau != target.Creneau {
			continue
		}
		if s.Formateur == candidate.Formateur {
			return &s, ConflictTeacher
		}
		if c.groupsOverlap(s.Groupe, candidate.Groupe) {
			return &s, ConflictGroup
		}
		if !s.IsOnline() && !candidate.IsOnline() && s.Salle == candidate.Salle {
			return &s, ConflictRoom
		}
	}
	return nil, ""
}

// ApplyFilters returns the subsequence matching every active filter.
// A groupe filter also matches sessions whose group expands to include
// the filter value, so fused online sessions show up under each of
// their constituent groups.
func (c *SessionCache) ApplyFilters(sessions []domain.Session, filters []domain.Filter) []domain.Session {
	out := sessions
	for _, f := range filters {
		if f.IsAll() {
			continue
		}
		filtered := make([]domain.Session, 0, len(out))
		for _, s := range out {
			if c.matches(s, f) {
				filtered = append(filtered, s)
			}
		}
		out = filtered
	}
	return out
}

func (c *SessionCache) matches(s domain.Session, f domain.Filter) bool {
	switch f.Type {
	case domain.FilterFormateur:
		return s.Formateur == f.Value
	case domain.FilterSalle:
		return s.Salle == f.Value
	case domain.FilterGroupe:
		if s.Groupe == f.Value {
			return true
		}
		for _, g := range c.expand(s.Groupe) {
			if g == f.Value {
				return true
			}
		}
		return false
	}
	return false
}

// MoveLocally produces a new collection with the session relocated.
// It does not touch the cache state; the coordinator decides whether
// the result is adopted. The second return is false when the id is
// unknown.
func (c *SessionCache) MoveLocally(id string, target domain.Cell, salle string) ([]domain.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	found := false
	out := make([]domain.Session, len(c.sessions))
	for i, s := range c.sessions {
		if s.ID == id {
			s.Jour = target.Jour
			s.Creneau = target.Creneau
			s.Salle = salle
			found = true
		}
		out[i] = s
	}
	return out, found
}

// DeleteLocally produces a new collection without the session. Pure,
// like MoveLocally.
func (c *SessionCache) DeleteLocally(id string) ([]domain.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Session, 0, len(c.sessions))
	found := false
	for _, s := range c.sessions {
		if s.ID == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	return out, found
}

func (c *SessionCache) expand(groupID string) []string {
	if c.expander == nil {
		return []string{groupID}
	}
	return c.expander.Expand(groupID)
}

func (c *SessionCache) groupsOverlap(a, b string) bool {
	ga := c.expand(a)
	gb := c.expand(b)
	for _, x := range ga {
		for _, y := range gb {
			if x == y {
				return true
			}
		}
	}
	return false
}
