package services

import "edtclient/internal/domain"

// ReconcileVirtual merges a base session list with pending change
// requests into the displayable ghost view. It is a pure function of
// its inputs: identical inputs produce structurally identical output,
// so it is safe to recompute on every render pass.
//
// Per request type:
//   - DELETE: the base session stays visible, tagged TO_DELETE.
//   - MOVE: the base session is tagged MOVED_AWAY and a ghost appears
//     at the proposed destination.
//   - CHANGE_ROOM: like MOVE, but the destination keeps the original
//     day and slot; only the room comes from the proposal.
//   - INSERT: one ghost carrying the proposed session, tagged INSERTED.
func ReconcileVirtual(base []domain.Session, requests []domain.ChangeRequest) domain.VirtualView {
	pending := latestPendingBySession(requests)

	view := domain.VirtualView{
		Base:  make([]domain.VirtualSession, 0, len(base)),
		Extra: []domain.VirtualSession{},
	}

	for _, s := range base {
		req, ok := pending[s.ID]
		if !ok {
			view.Base = append(view.Base, domain.VirtualSession{Session: s, VirtualState: domain.VirtualNormal})
			continue
		}
		switch req.Type {
		case domain.RequestMove:
			view.Base = append(view.Base, domain.VirtualSession{Session: s, VirtualState: domain.VirtualMovedAway, RequestID: req.ID})
			view.Extra = append(view.Extra, proposedDestination(s, req, false))
		case domain.RequestChangeRoom:
			view.Base = append(view.Base, domain.VirtualSession{Session: s, VirtualState: domain.VirtualMovedAway, RequestID: req.ID})
			view.Extra = append(view.Extra, proposedDestination(s, req, true))
		case domain.RequestDelete:
			view.Base = append(view.Base, domain.VirtualSession{Session: s, VirtualState: domain.VirtualToDelete, RequestID: req.ID})
		default:
			// Unknown request type: leave the session untouched.
			view.Base = append(view.Base, domain.VirtualSession{Session: s, VirtualState: domain.VirtualNormal})
		}
	}

	for _, req := range requests {
		if req.Status != domain.StatusPending || req.Type != domain.RequestInsert {
			continue
		}
		id := req.SessionID
		if id == "" {
			// Deterministic so reconciling twice yields identical output.
			id = "INS_" + req.ID
		}
		view.Extra = append(view.Extra, domain.VirtualSession{
			Session: domain.Session{
				ID:        id,
				Formateur: req.NewData.Formateur,
				Groupe:    req.NewData.Groupe,
				Module:    req.NewData.Module,
				Jour:      req.NewData.Jour,
				Creneau:   req.NewData.Creneau,
				Salle:     req.NewData.Salle,
			},
			VirtualState: domain.VirtualInserted,
			RequestID:    req.ID,
		})
	}

	return view
}

// proposedDestination builds the ghost at the request's target cell.
// Destination fields fall back newData -> oldData -> base session; a
// room-only change keeps the base day and slot.
func proposedDestination(s domain.Session, req domain.ChangeRequest, roomOnly bool) domain.VirtualSession {
	dest := s
	if !roomOnly {
		dest.Jour = firstNonEmpty(req.NewData.Jour, req.OldData.Jour, s.Jour)
		dest.Creneau = firstNonZero(req.NewData.Creneau, req.OldData.Creneau, s.Creneau)
	} else {
		dest.Jour = firstNonEmpty(req.OldData.Jour, s.Jour)
		dest.Creneau = firstNonZero(req.OldData.Creneau, s.Creneau)
	}
	dest.Salle = firstNonEmpty(req.NewData.Salle, req.OldData.Salle, s.Salle)
	return domain.VirtualSession{Session: dest, VirtualState: domain.VirtualProposedDestination, RequestID: req.ID}
}

// latestPendingBySession indexes PENDING requests by session id,
// keeping the most recently submitted one when several exist.
func latestPendingBySession(requests []domain.ChangeRequest) map[string]domain.ChangeRequest {
	out := make(map[string]domain.ChangeRequest)
	for _, r := range requests {
		if r.Status != domain.StatusPending || r.SessionID == "" {
			continue
		}
		if prev, ok := out[r.SessionID]; ok && prev.SubmittedAt >= r.SubmittedAt {
			continue
		}
		out[r.SessionID] = r
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
