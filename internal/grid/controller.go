// Package grid owns the day × time-slot surface of the timetable.
// Instead of one drop handler per cell, a single controller validates
// coordinates against the configured axes and forwards drops to the
// coordinator, so every cell shares one conflict and availability
// policy.
package grid

import (
	"context"
	"fmt"

	"edtclient/internal/domain"
	"edtclient/internal/services"
)

type cellKey struct {
	jour    string
	creneau int
}

// Controller dispatches uniform drop messages for a fixed grid.
type Controller struct {
	jours    []string
	creneaux []int
	cells    map[cellKey]struct{}
	coord    *services.Coordinator
}

// New builds the controller from the backend grid config.
func New(cfg domain.GridConfig, coord *services.Coordinator) *Controller {
	cells := make(map[cellKey]struct{}, len(cfg.Jours)*len(cfg.Creneaux))
	for _, j := range cfg.Jours {
		for _, c := range cfg.Creneaux {
			cells[cellKey{jour: j, creneau: c}] = struct{}{}
		}
	}
	return &Controller{
		jours:    append([]string(nil), cfg.Jours...),
		creneaux: append([]int(nil), cfg.Creneaux...),
		cells:    cells,
		coord:    coord,
	}
}

// Drop handles a session dropped onto (jour, creneau).
func (g *Controller) Drop(ctx context.Context, sessionID, jour string, creneau int) (services.MutationOutcome, error) {
	if !g.hasCell(jour, creneau) {
		return services.MutationOutcome{}, fmt.Errorf("no grid cell (%s, %d)", jour, creneau)
	}
	return g.coord.Move(ctx, sessionID, domain.Cell{Jour: jour, Creneau: creneau})
}

// CompleteDrop resumes a drop that was suspended on room choice.
func (g *Controller) CompleteDrop(ctx context.Context, sessionID, jour string, creneau int, salle string) (services.MutationOutcome, error) {
	if !g.hasCell(jour, creneau) {
		return services.MutationOutcome{}, fmt.Errorf("no grid cell (%s, %d)", jour, creneau)
	}
	return g.coord.CompleteMove(ctx, sessionID, domain.Cell{Jour: jour, Creneau: creneau}, salle)
}

// Remove deletes a session from the grid.
func (g *Controller) Remove(ctx context.Context, sessionID string) (services.MutationOutcome, error) {
	return g.coord.Delete(ctx, sessionID)
}

// Jours returns the configured day axis in display order.
func (g *Controller) Jours() []string {
	return append([]string(nil), g.jours...)
}

// Creneaux returns the configured slot axis in display order.
func (g *Controller) Creneaux() []int {
	return append([]int(nil), g.creneaux...)
}

func (g *Controller) hasCell(jour string, creneau int) bool {
	_, ok := g.cells[cellKey{jour: jour, creneau: creneau}]
	return ok
}
