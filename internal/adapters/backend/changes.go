package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"edtclient/internal/domain"
)

type requestsEnvelope struct {
	OK       bool                   `json:"ok"`
	Requests []domain.ChangeRequest `json:"requests"`
}

type requestEnvelope struct {
	OK      bool                 `json:"ok"`
	Request domain.ChangeRequest `json:"request"`
}

// ListMyChanges lists the calling teacher's change requests,
// optionally filtered by status.
func (c *Client) ListMyChanges(ctx context.Context, status domain.RequestStatus) ([]domain.ChangeRequest, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var env requestsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/teacher/changes", q, nil, &env); err != nil {
		return nil, err
	}
	if env.Requests == nil {
		env.Requests = []domain.ChangeRequest{}
	}
	return env.Requests, nil
}

// ProposeChange submits a change request. For INSERT the sessionID may
// be empty; for the other types it names the teacher's own session.
func (c *Client) ProposeChange(ctx context.Context, reqType domain.RequestType, sessionID string, newData domain.SessionFields) (*domain.ChangeRequest, error) {
	body := map[string]any{
		"type":    reqType,
		"newData": newData,
	}
	if sessionID != "" {
		body["sessionId"] = sessionID
	}
	var env requestEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/teacher/changes", nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Request, nil
}

// CancelChange withdraws one of the caller's PENDING requests.
func (c *Client) CancelChange(ctx context.Context, requestID string) error {
	path := fmt.Sprintf("/api/teacher/changes/%s", url.PathEscape(requestID))
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ListChanges lists change requests for the admin view. Empty status
// defaults to PENDING on the backend.
func (c *Client) ListChanges(ctx context.Context, status domain.RequestStatus, teacherID, sessionID string) ([]domain.ChangeRequest, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if teacherID != "" {
		q.Set("teacherId", teacherID)
	}
	if sessionID != "" {
		q.Set("sessionId", sessionID)
	}
	var env requestsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/changes", q, nil, &env); err != nil {
		return nil, err
	}
	if env.Requests == nil {
		env.Requests = []domain.ChangeRequest{}
	}
	return env.Requests, nil
}

// SimulateResult reports what approving a request would do.
type SimulateResult struct {
	Message           string `json:"message"`
	NewVersionWouldBe int    `json:"newVersionWouldBe"`
}

// SimulateChange dry-runs a PENDING request against the draft.
func (c *Client) SimulateChange(ctx context.Context, requestID string) (*SimulateResult, error) {
	path := fmt.Sprintf("/api/admin/changes/%s/simulate", url.PathEscape(requestID))
	var result SimulateResult
	if err := c.doJSON(ctx, http.MethodPost, path, nil, map[string]any{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ApproveResult is the post-approval draft state.
type ApproveResult struct {
	Message  string           `json:"message"`
	Version  int              `json:"version"`
	Sessions []domain.Session `json:"sessions"`
}

// ApproveChange applies a PENDING request to the draft timetable.
func (c *Client) ApproveChange(ctx context.Context, requestID, decidedBy string) (*ApproveResult, error) {
	path := fmt.Sprintf("/api/admin/changes/%s/approve", url.PathEscape(requestID))
	body := map[string]string{"decidedBy": decidedBy}
	var result ApproveResult
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectChange declines a PENDING request with a reason.
func (c *Client) RejectChange(ctx context.Context, requestID, decidedBy, reason string) (*domain.ChangeRequest, error) {
	path := fmt.Sprintf("/api/admin/changes/%s/reject", url.PathEscape(requestID))
	body := map[string]string{"decidedBy": decidedBy, "reason": reason}
	var env requestEnvelope
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Request, nil
}
