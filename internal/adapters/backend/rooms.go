package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"edtclient/internal/domain"
)

// AvailableRooms asks the backend which physical rooms are free for
// the cell. No caching on purpose: availability changes under
// concurrent use, so each decision gets a fresh snapshot.
func (c *Client) AvailableRooms(ctx context.Context, jour string, creneau int, scope domain.Scope) (domain.RoomAvailability, error) {
	q := url.Values{}
	q.Set("jour", jour)
	q.Set("creneau", strconv.Itoa(creneau))
	q.Set("scope", string(scope))

	var payload struct {
		OK bool `json:"ok"`
		domain.RoomAvailability
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/rooms/available", q, nil, &payload); err != nil {
		return domain.RoomAvailability{}, err
	}
	if payload.AvailableRooms == nil {
		payload.AvailableRooms = []string{}
	}
	return payload.RoomAvailability, nil
}
