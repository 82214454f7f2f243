package grid

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edtclient/internal/domain"
	"edtclient/internal/repository/cache"
	"edtclient/internal/services"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type noFusions struct{}

func (noFusions) Expand(groupID string) []string { return []string{groupID} }

// acceptAllDispatcher confirms every command and records it.
type acceptAllDispatcher struct {
	commands []domain.Command
}

func (d *acceptAllDispatcher) Dispatch(ctx context.Context, cmd domain.Command, scope domain.Scope) (*domain.CommandResult, error) {
	d.commands = append(d.commands, cmd)
	return &domain.CommandResult{OK: true, Version: 2, Sessions: []domain.Session{}}, nil
}

type allRoomsFree struct{}

func (allRoomsFree) AvailableRooms(ctx context.Context, jour string, creneau int, scope domain.Scope) (domain.RoomAvailability, error) {
	return domain.RoomAvailability{AvailableRooms: []string{"R1", "R2"}}, nil
}

type neverFetch struct{}

func (neverFetch) FetchTimetable(ctx context.Context, scope domain.Scope) (*domain.TimetableSnapshot, error) {
	return &domain.TimetableSnapshot{Version: 1, Sessions: []domain.Session{}}, nil
}

func newController(t *testing.T) (*Controller, *acceptAllDispatcher) {
	t.Helper()
	sessionCache := cache.New(noFusions{})
	sessionCache.Replace([]domain.Session{
		{ID: "S1", Formateur: "T1", Groupe: "G1", Module: "M1", Jour: "lundi", Creneau: 1, Salle: "R1"},
	}, 1)

	dispatcher := &acceptAllDispatcher{}
	coord := services.NewCoordinator(sessionCache, dispatcher, allRoomsFree{}, neverFetch{}, domain.ScopeOfficial, testLogger, time.Second)

	cfg := domain.GridConfig{
		Jours:    []string{"lundi", "mardi", "mercredi", "jeudi", "vendredi"},
		Creneaux: []int{1, 2, 3, 4},
	}
	return New(cfg, coord), dispatcher
}

func TestDropRejectsUnknownCell(t *testing.T) {
	controller, dispatcher := newController(t)

	tests := []struct {
		name    string
		jour    string
		creneau int
	}{
		{"unknown day", "dimanche", 1},
		{"slot out of range", "lundi", 9},
		{"both unknown", "samedi", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := controller.Drop(context.Background(), "S1", tt.jour, tt.creneau)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, dispatcher.commands)
}

func TestDropDelegatesToCoordinator(t *testing.T) {
	controller, dispatcher := newController(t)

	outcome, err := controller.Drop(context.Background(), "S1", "mardi", 2)
	require.NoError(t, err)

	assert.Equal(t, services.MutationConfirmed, outcome.Status)
	require.Len(t, dispatcher.commands, 1)
	assert.Equal(t, "mardi", dispatcher.commands[0].Payload.ToJour)
	assert.Equal(t, 2, dispatcher.commands[0].Payload.ToCreneau)
}

func TestCompleteDropPassesRoom(t *testing.T) {
	controller, dispatcher := newController(t)

	outcome, err := controller.CompleteDrop(context.Background(), "S1", "mardi", 2, "R2")
	require.NoError(t, err)

	assert.Equal(t, services.MutationConfirmed, outcome.Status)
	require.Len(t, dispatcher.commands, 1)
	assert.Equal(t, "R2", dispatcher.commands[0].Payload.ToSalle)
}

func TestCompleteDropValidatesCell(t *testing.T) {
	controller, dispatcher := newController(t)

	_, err := controller.CompleteDrop(context.Background(), "S1", "dimanche", 2, "R2")
	assert.Error(t, err)
	assert.Empty(t, dispatcher.commands)
}

func TestRemoveDelegates(t *testing.T) {
	controller, dispatcher := newController(t)

	outcome, err := controller.Remove(context.Background(), "S1")
	require.NoError(t, err)

	assert.Equal(t, services.MutationConfirmed, outcome.Status)
	require.Len(t, dispatcher.commands, 1)
	assert.Equal(t, domain.CommandDeleteSession, dispatcher.commands[0].Type)
}

func TestAxesAreCopied(t *testing.T) {
	controller, _ := newController(t)

	jours := controller.Jours()
	jours[0] = "mutated"
	assert.Equal(t, "lundi", controller.Jours()[0])

	creneaux := controller.Creneaux()
	creneaux[0] = 99
	assert.Equal(t, 1, controller.Creneaux()[0])
}
