package backend

import (
	"context"
	"net/http"

	"edtclient/internal/domain"
)

// Dispatch sends a versioned mutation command. On success it returns
// the new authoritative version and session list; on rejection the
// error is a *domain.CommandError whose code the caller interprets
// (the dispatcher itself applies no policy).
func (c *Client) Dispatch(ctx context.Context, cmd domain.Command, scope domain.Scope) (*domain.CommandResult, error) {
	var result domain.CommandResult
	err := c.doJSON(ctx, http.MethodPost, "/api/timetable/commands", scopeQuery(scope), cmd, &result)
	if err != nil {
		return nil, err
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	return &result, nil
}
