package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edtclient/internal/domain"
)

func baseSession(id string) domain.Session {
	return domain.Session{
		ID:        id,
		Formateur: "T1",
		Groupe:    "G1",
		Module:    "M1",
		Jour:      "lundi",
		Creneau:   1,
		Salle:     "R1",
	}
}

func TestReconcileVirtualDelete(t *testing.T) {
	base := []domain.Session{baseSession("S1"), baseSession("S2")}
	requests := []domain.ChangeRequest{
		{ID: "CR1", Type: domain.RequestDelete, SessionID: "S1", Status: domain.StatusPending},
	}

	view := ReconcileVirtual(base, requests)

	require.Len(t, view.Base, 2)
	assert.Equal(t, domain.VirtualToDelete, view.Base[0].VirtualState)
	assert.Equal(t, "CR1", view.Base[0].RequestID)
	assert.Equal(t, domain.VirtualNormal, view.Base[1].VirtualState)
	assert.Empty(t, view.Extra)
}

func TestReconcileVirtualMove(t *testing.T) {
	base := []domain.Session{baseSession("S1")}
	requests := []domain.ChangeRequest{
		{
			ID:        "CR1",
			Type:      domain.RequestMove,
			SessionID: "S1",
			Status:    domain.StatusPending,
			OldData:   domain.SessionFields{Jour: "lundi", Creneau: 1, Salle: "R1"},
			NewData:   domain.SessionFields{Jour: "mardi", Creneau: 3, Salle: "R2"},
		},
	}

	view := ReconcileVirtual(base, requests)

	require.Len(t, view.Base, 1)
	assert.Equal(t, domain.VirtualMovedAway, view.Base[0].VirtualState)
	// The moved-away marker keeps the original coordinates.
	assert.Equal(t, "lundi", view.Base[0].Jour)

	require.Len(t, view.Extra, 1)
	ghost := view.Extra[0]
	assert.Equal(t, domain.VirtualProposedDestination, ghost.VirtualState)
	assert.Equal(t, "mardi", ghost.Jour)
	assert.Equal(t, 3, ghost.Creneau)
	assert.Equal(t, "R2", ghost.Salle)
	assert.Equal(t, "CR1", ghost.RequestID)
	// Identity fields carry over from the base session.
	assert.Equal(t, "T1", ghost.Formateur)
	assert.Equal(t, "G1", ghost.Groupe)
}

func TestReconcileVirtualMoveFallsBackToOldData(t *testing.T) {
	base := []domain.Session{baseSession("S1")}
	requests := []domain.ChangeRequest{
		{
			ID:        "CR1",
			Type:      domain.RequestMove,
			SessionID: "S1",
			Status:    domain.StatusPending,
			OldData:   domain.SessionFields{Jour: "mercredi", Creneau: 2, Salle: "R9"},
			NewData:   domain.SessionFields{Salle: "R2"},
		},
	}

	view := ReconcileVirtual(base, requests)

	require.Len(t, view.Extra, 1)
	assert.Equal(t, "mercredi", view.Extra[0].Jour)
	assert.Equal(t, 2, view.Extra[0].Creneau)
	assert.Equal(t, "R2", view.Extra[0].Salle)
}

func TestReconcileVirtualChangeRoomKeepsCell(t *testing.T) {
	base := []domain.Session{baseSession("S1")}
	requests := []domain.ChangeRequest{
		{
			ID:        "CR1",
			Type:      domain.RequestChangeRoom,
			SessionID: "S1",
			Status:    domain.StatusPending,
			OldData:   domain.SessionFields{Jour: "lundi", Creneau: 1, Salle: "R1"},
			// A stray jour in newData must not relocate a room change.
			NewData: domain.SessionFields{Jour: "vendredi", Creneau: 4, Salle: "R5"},
		},
	}

	view := ReconcileVirtual(base, requests)

	require.Len(t, view.Extra, 1)
	ghost := view.Extra[0]
	assert.Equal(t, "lundi", ghost.Jour)
	assert.Equal(t, 1, ghost.Creneau)
	assert.Equal(t, "R5", ghost.Salle)
}

func TestReconcileVirtualInsert(t *testing.T) {
	requests := []domain.ChangeRequest{
		{
			ID:     "CR1",
			Type:   domain.RequestInsert,
			Status: domain.StatusPending,
			NewData: domain.SessionFields{
				Formateur: "T2",
				Groupe:    "G2",
				Module:    "M2",
				Jour:      "jeudi",
				Creneau:   2,
				Salle:     "R3",
			},
		},
		{
			ID:        "CR2",
			Type:      domain.RequestInsert,
			SessionID: "TEACHER_NEW_1",
			Status:    domain.StatusPending,
			NewData:   domain.SessionFields{Formateur: "T3", Jour: "lundi", Creneau: 1, Salle: "R4"},
		},
		{
			ID:      "CR3",
			Type:    domain.RequestInsert,
			Status:  domain.StatusRejected,
			NewData: domain.SessionFields{Formateur: "T4"},
		},
	}

	view := ReconcileVirtual(nil, requests)

	require.Len(t, view.Extra, 2)
	assert.Equal(t, "INS_CR1", view.Extra[0].ID)
	assert.Equal(t, domain.VirtualInserted, view.Extra[0].VirtualState)
	assert.Equal(t, "T2", view.Extra[0].Formateur)
	assert.Equal(t, "TEACHER_NEW_1", view.Extra[1].ID)
}

func TestReconcileVirtualUnknownTypeStaysNormal(t *testing.T) {
	base := []domain.Session{baseSession("S1")}
	requests := []domain.ChangeRequest{
		{ID: "CR1", Type: "SWAP", SessionID: "S1", Status: domain.StatusPending},
	}

	view := ReconcileVirtual(base, requests)

	require.Len(t, view.Base, 1)
	assert.Equal(t, domain.VirtualNormal, view.Base[0].VirtualState)
	assert.Empty(t, view.Extra)
}

func TestReconcileVirtualLatestPendingWins(t *testing.T) {
	base := []domain.Session{baseSession("S1")}
	requests := []domain.ChangeRequest{
		{
			ID: "CR_old", Type: domain.RequestDelete, SessionID: "S1",
			Status: domain.StatusPending, SubmittedAt: "2026-01-01T08:00:00Z",
		},
		{
			ID: "CR_new", Type: domain.RequestMove, SessionID: "S1",
			Status: domain.StatusPending, SubmittedAt: "2026-01-02T08:00:00Z",
			NewData: domain.SessionFields{Jour: "mardi", Creneau: 2, Salle: "R2"},
		},
	}

	view := ReconcileVirtual(base, requests)

	require.Len(t, view.Base, 1)
	assert.Equal(t, domain.VirtualMovedAway, view.Base[0].VirtualState)
	assert.Equal(t, "CR_new", view.Base[0].RequestID)
}

func TestReconcileVirtualIdempotent(t *testing.T) {
	base := []domain.Session{baseSession("S1"), baseSession("S2")}
	requests := []domain.ChangeRequest{
		{
			ID: "CR1", Type: domain.RequestMove, SessionID: "S1", Status: domain.StatusPending,
			NewData: domain.SessionFields{Jour: "mardi", Creneau: 2, Salle: "R2"},
		},
		{ID: "CR2", Type: domain.RequestInsert, Status: domain.StatusPending,
			NewData: domain.SessionFields{Formateur: "T9", Jour: "samedi", Creneau: 4, Salle: "R9"}},
	}

	first := ReconcileVirtual(base, requests)
	second := ReconcileVirtual(base, requests)
	assert.Equal(t, first, second)
}

func TestReconcileVirtualIgnoresDecidedRequests(t *testing.T) {
	base := []domain.Session{baseSession("S1")}
	requests := []domain.ChangeRequest{
		{ID: "CR1", Type: domain.RequestDelete, SessionID: "S1", Status: domain.StatusApproved},
	}

	view := ReconcileVirtual(base, requests)
	assert.Equal(t, domain.VirtualNormal, view.Base[0].VirtualState)
}
