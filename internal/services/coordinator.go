package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"edtclient/internal/domain"
	"edtclient/internal/repository/cache"
)

// MutationStatus is the terminal state of one user-initiated move or
// delete.
type MutationStatus string

const (
	// MutationConfirmed: the backend accepted the command; the cache
	// now holds the server-returned authoritative state.
	MutationConfirmed MutationStatus = "confirmed"
	// MutationRejected: the action was refused before any optimistic
	// apply or network dispatch; nothing changed.
	MutationRejected MutationStatus = "rejected"
	// MutationRolledBack: the optimistic apply was undone after a
	// backend rejection or transport failure.
	MutationRolledBack MutationStatus = "rolled_back"
	// MutationNeedsRoomChoice: the move is suspended until the caller
	// picks a room and resumes with CompleteMove. Abandoning the
	// choice is a no-op.
	MutationNeedsRoomChoice MutationStatus = "needs_room_choice"
)

// MutationOutcome reports how a move or delete ended. Message is
// user-facing; Rooms is populated only for MutationNeedsRoomChoice.
type MutationOutcome struct {
	Status    MutationStatus
	Message   string
	Rooms     []string
	Version   int
	Warnings  []string
	Refetched bool
}

// Coordinator orchestrates optimistic mutations: precheck against the
// cache, resolve a room, apply locally, dispatch the versioned
// command, and reconcile the response (adopt or roll back). It is the
// only mutator of the cache besides full refreshes.
type Coordinator struct {
	cache      *cache.SessionCache
	dispatcher domain.CommandDispatcher
	rooms      domain.RoomResolver
	fetcher    domain.TimetableFetcher
	scope      domain.Scope
	logger     *slog.Logger
	timeout    time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}

	newCommandID func() string
}

// NewCoordinator wires a coordinator for one scope.
func NewCoordinator(
	sessionCache *cache.SessionCache,
	dispatcher domain.CommandDispatcher,
	rooms domain.RoomResolver,
	fetcher domain.TimetableFetcher,
	scope domain.Scope,
	logger *slog.Logger,
	timeout time.Duration,
) *Coordinator {
	return &Coordinator{
		cache:        sessionCache,
		dispatcher:   dispatcher,
		rooms:        rooms,
		fetcher:      fetcher,
		scope:        scope,
		logger:       logger,
		timeout:      timeout,
		inflight:     make(map[string]struct{}),
		newCommandID: uuid.NewString,
	}
}

// Move handles a drop of the session onto the target cell. It either
// completes the move end to end, or suspends with
// MutationNeedsRoomChoice when the user has to pick among the free
// rooms.
func (c *Coordinator) Move(ctx context.Context, sessionID string, target domain.Cell) (MutationOutcome, error) {
	if err := c.acquire(sessionID); err != nil {
		return MutationOutcome{}, err
	}
	defer c.release(sessionID)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess, ok := c.cache.Get(sessionID)
	if !ok {
		return MutationOutcome{}, domain.ErrNotFound
	}

	rejected, roomConflict := c.precheck(sess, target)
	if rejected != nil {
		return *rejected, nil
	}

	// Online sessions move freely between cells keeping their virtual
	// room; no availability query.
	if sess.IsOnline() {
		return c.submitMove(ctx, sess, target, domain.VirtualRoomID)
	}

	avail, err := c.rooms.AvailableRooms(ctx, target.Jour, target.Creneau, c.scope)
	if err != nil {
		c.logger.Warn("room availability query failed", "session", sessionID, "error", err)
		return MutationOutcome{Status: MutationRejected, Message: userMessage(err, "Impossible de vérifier les salles disponibles. Réessayez.")}, nil
	}
	if len(avail.AvailableRooms) == 0 {
		return MutationOutcome{Status: MutationRejected, Message: "Aucune salle disponible sur ce créneau."}, nil
	}

	// Same room still free and nothing occupying it at the target:
	// move directly without prompting.
	if !roomConflict && contains(avail.AvailableRooms, sess.Salle) {
		return c.submitMove(ctx, sess, target, sess.Salle)
	}

	return MutationOutcome{Status: MutationNeedsRoomChoice, Rooms: avail.AvailableRooms}, nil
}

// CompleteMove resumes a move suspended on room choice with the room
// the user picked. The precheck runs again: the cache may have changed
// while the prompt was open.
func (c *Coordinator) CompleteMove(ctx context.Context, sessionID string, target domain.Cell, salle string) (MutationOutcome, error) {
	if err := c.acquire(sessionID); err != nil {
		return MutationOutcome{}, err
	}
	defer c.release(sessionID)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess, ok := c.cache.Get(sessionID)
	if !ok {
		return MutationOutcome{}, domain.ErrNotFound
	}
	if rejected, _ := c.precheck(sess, target); rejected != nil {
		return *rejected, nil
	}
	return c.submitMove(ctx, sess, target, salle)
}

// Delete removes a session optimistically and dispatches the delete
// command.
func (c *Coordinator) Delete(ctx context.Context, sessionID string) (MutationOutcome, error) {
	if err := c.acquire(sessionID); err != nil {
		return MutationOutcome{}, err
	}
	defer c.release(sessionID)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prev, prevVersion := c.cache.List(), c.cache.Version()
	next, ok := c.cache.DeleteLocally(sessionID)
	if !ok {
		return MutationOutcome{}, domain.ErrNotFound
	}
	c.cache.Replace(next, prevVersion)

	cmd := domain.Command{
		CommandID:       c.newCommandID(),
		ExpectedVersion: prevVersion,
		Type:            domain.CommandDeleteSession,
		Payload:         domain.CommandPayload{SessionID: sessionID},
	}
	return c.reconcile(ctx, cmd, prev, prevVersion, "Séance supprimée.")
}

// precheck aborts on teacher or group conflicts at the target cell. A
// room-only conflict does not abort; it only forces the room prompt.
func (c *Coordinator) precheck(sess domain.Session, target domain.Cell) (*MutationOutcome, bool) {
	conflicting, kind := c.cache.HasConflict(sess, target)
	if conflicting == nil {
		return nil, false
	}
	switch kind {
	case cache.ConflictTeacher:
		return &MutationOutcome{Status: MutationRejected, Message: "Conflit: formateur déjà occupé sur ce créneau"}, false
	case cache.ConflictGroup:
		return &MutationOutcome{Status: MutationRejected, Message: "Conflit: groupe déjà occupé sur ce créneau"}, false
	}
	return nil, true
}

func (c *Coordinator) submitMove(ctx context.Context, sess domain.Session, target domain.Cell, salle string) (MutationOutcome, error) {
	prev, prevVersion := c.cache.List(), c.cache.Version()
	next, ok := c.cache.MoveLocally(sess.ID, target, salle)
	if !ok {
		return MutationOutcome{}, domain.ErrNotFound
	}
	c.cache.Replace(next, prevVersion)

	cmd := domain.Command{
		CommandID:       c.newCommandID(),
		ExpectedVersion: prevVersion,
		Type:            domain.CommandMoveSession,
		Payload: domain.CommandPayload{
			SessionID: sess.ID,
			ToJour:    target.Jour,
			ToCreneau: target.Creneau,
			ToSalle:   salle,
		},
	}
	return c.reconcile(ctx, cmd, prev, prevVersion, "Séance déplacée.")
}

// reconcile dispatches the command and settles the cache: adopt the
// server state on success, restore the pre-mutation snapshot on any
// failure, and additionally refetch the authoritative timetable on a
// version mismatch.
func (c *Coordinator) reconcile(ctx context.Context, cmd domain.Command, prev []domain.Session, prevVersion int, successMessage string) (MutationOutcome, error) {
	result, err := c.dispatcher.Dispatch(ctx, cmd, c.scope)
	if err == nil {
		c.cache.Replace(result.Sessions, result.Version)
		return MutationOutcome{
			Status:   MutationConfirmed,
			Message:  successMessage,
			Version:  result.Version,
			Warnings: result.Warnings,
		}, nil
	}

	c.cache.Replace(prev, prevVersion)

	var cmdErr *domain.CommandError
	if errors.As(err, &cmdErr) && cmdErr.IsVersionMismatch() {
		c.logger.Info("version mismatch, refetching timetable",
			"command", cmd.CommandID, "expected", cmd.ExpectedVersion, "server", cmdErr.ServerVersion)
		refetched := c.refetch(ctx)
		return MutationOutcome{
			Status:    MutationRolledBack,
			Message:   userMessage(err, "L'emploi du temps a changé. Rechargez."),
			Refetched: refetched,
		}, nil
	}

	c.logger.Warn("command rejected", "command", cmd.CommandID, "type", cmd.Type, "error", err)
	return MutationOutcome{
		Status:  MutationRolledBack,
		Message: userMessage(err, "L'opération a échoué. Réessayez."),
	}, nil
}

func (c *Coordinator) refetch(ctx context.Context) bool {
	snapshot, err := c.fetcher.FetchTimetable(ctx, c.scope)
	if err != nil {
		c.logger.Warn("refetch after version mismatch failed", "error", err)
		return false
	}
	c.cache.Replace(snapshot.Sessions, snapshot.Version)
	return true
}

func (c *Coordinator) acquire(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[sessionID]; busy {
		return fmt.Errorf("%w: %s", domain.ErrMutationInFlight, sessionID)
	}
	c.inflight[sessionID] = struct{}{}
	return nil
}

func (c *Coordinator) release(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, sessionID)
}

// userMessage prefers the backend-provided message, falling back to a
// generic one for transport failures.
func userMessage(err error, fallback string) string {
	var cmdErr *domain.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Message != "" {
		return cmdErr.Message
	}
	return fallback
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
