package backend

import (
	"context"
	"net/http"
	"net/url"

	"edtclient/internal/domain"
)

// FetchTimetable loads the authoritative timetable for a scope:
// /api/timetable for official, /api/next-timetable for the draft.
func (c *Client) FetchTimetable(ctx context.Context, scope domain.Scope) (*domain.TimetableSnapshot, error) {
	path := "/api/timetable"
	if scope == domain.ScopeDraft {
		path = "/api/next-timetable"
	}
	var snapshot domain.TimetableSnapshot
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &snapshot); err != nil {
		return nil, err
	}
	if snapshot.Sessions == nil {
		snapshot.Sessions = []domain.Session{}
	}
	return &snapshot, nil
}

// DraftInfo is the negotiation metadata of the draft timetable.
type DraftInfo struct {
	WeekStart string `json:"week_start"`
	Revision  int    `json:"revision"`
}

// VirtualTimetable is the admin overlay view: draft sessions, their
// ghost projection, and the pending requests behind it.
type VirtualTimetable struct {
	Version         int                    `json:"version"`
	Draft           DraftInfo              `json:"draft"`
	Sessions        []domain.Session       `json:"sessions"`
	Virtual         domain.VirtualView     `json:"virtual"`
	PendingRequests []domain.ChangeRequest `json:"pendingRequests"`
}

// FetchVirtualTimetable loads the admin draft view with pending
// change requests overlaid.
func (c *Client) FetchVirtualTimetable(ctx context.Context) (*VirtualTimetable, error) {
	var vt VirtualTimetable
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/timetable/virtual", nil, nil, &vt); err != nil {
		return nil, err
	}
	if vt.Sessions == nil {
		vt.Sessions = []domain.Session{}
	}
	if vt.PendingRequests == nil {
		vt.PendingRequests = []domain.ChangeRequest{}
	}
	return &vt, nil
}

// TeacherTimetable is a teacher's slice of the draft plus their own
// pending proposals.
type TeacherTimetable struct {
	Version         int                    `json:"version"`
	Draft           DraftInfo              `json:"draft"`
	Sessions        []domain.Session       `json:"sessions"`
	Virtual         domain.VirtualView     `json:"virtual"`
	PendingRequests []domain.ChangeRequest `json:"pendingRequests"`
}

// FetchTeacherTimetable loads the timetable restricted to one teacher.
// The backend ignores teacherID for formateur tokens and uses the
// token's own identity.
func (c *Client) FetchTeacherTimetable(ctx context.Context, teacherID string) (*TeacherTimetable, error) {
	q := url.Values{}
	if teacherID != "" {
		q.Set("teacherId", teacherID)
	}
	var tt TeacherTimetable
	if err := c.doJSON(ctx, http.MethodGet, "/api/teacher/timetable", q, nil, &tt); err != nil {
		return nil, err
	}
	if tt.Sessions == nil {
		tt.Sessions = []domain.Session{}
	}
	return &tt, nil
}

// GetConfig loads the grid axes and room inventory.
func (c *Client) GetConfig(ctx context.Context) (*domain.GridConfig, error) {
	var cfg domain.GridConfig
	if err := c.doJSON(ctx, http.MethodGet, "/api/config", nil, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetCatalog loads teachers, groups, modules, assignments, and
// fusions. A missing onlineFusions field means no fusions.
func (c *Client) GetCatalog(ctx context.Context) (*domain.Catalog, error) {
	var cat domain.Catalog
	if err := c.doJSON(ctx, http.MethodGet, "/api/catalog", nil, nil, &cat); err != nil {
		return nil, err
	}
	if cat.OnlineFusions == nil {
		cat.OnlineFusions = []domain.GroupFusion{}
	}
	return &cat, nil
}

// AddSessionResult is the response of the add-session endpoint.
type AddSessionResult struct {
	Version int            `json:"version"`
	Session domain.Session `json:"session"`
}

// AddSession creates a session in the chosen scope (admin only).
func (c *Client) AddSession(ctx context.Context, scope domain.Scope, s domain.Session) (*AddSessionResult, error) {
	body := map[string]any{
		"formateur": s.Formateur,
		"groupe":    s.Groupe,
		"module":    s.Module,
		"jour":      s.Jour,
		"creneau":   s.Creneau,
		"salle":     s.Salle,
	}
	var result AddSessionResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/timetable/sessions", scopeQuery(scope), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PublishResult reports a completed publish: the backup taken, what
// went live, and the next negotiation cycle.
type PublishResult struct {
	Message string `json:"message"`
	Backup  struct {
		Path      string `json:"path"`
		WeekStart string `json:"week_start"`
	} `json:"backup"`
	Published struct {
		Version  int `json:"version"`
		Sessions int `json:"sessions"`
	} `json:"published"`
	Next struct {
		WeekStart string `json:"week_start"`
		Revision  int    `json:"revision"`
	} `json:"next"`
}

// Publish commits the draft timetable as the new official one for the
// week starting weekStart (YYYY-MM-DD).
func (c *Client) Publish(ctx context.Context, weekStart string) (*PublishResult, error) {
	body := map[string]string{}
	if weekStart != "" {
		body["week_start"] = weekStart
	}
	var result PublishResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/publish", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateOptions are passed through to the backend generator; the
// client implements no solving itself.
type GenerateOptions struct {
	Strategy   string `json:"strategy,omitempty"`
	MaxSeconds int    `json:"maxSeconds,omitempty"`
	Seed       int    `json:"seed,omitempty"`
	Apply      bool   `json:"apply"`
}

// GenerateResult is the generator's pass-through response.
type GenerateResult struct {
	Message  string           `json:"message"`
	Warnings []string         `json:"warnings"`
	Version  int              `json:"version,omitempty"`
	Sessions []domain.Session `json:"sessions"`
}

// RunGeneration triggers backend timetable generation.
func (c *Client) RunGeneration(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	var result GenerateResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate/run", nil, opts, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
