package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Report kinds accepted by DownloadReport.
const (
	ReportFormateur = "formateur"
	ReportGroupe    = "groupe"
	ReportSalle     = "salle"
)

// DownloadReport streams the PDF timetable for one teacher, group, or
// room into w and returns the byte count.
func (c *Client) DownloadReport(ctx context.Context, kind, id string, w io.Writer) (int64, error) {
	if kind != ReportFormateur && kind != ReportGroupe && kind != ReportSalle {
		return 0, fmt.Errorf("unknown report kind %q", kind)
	}
	path := fmt.Sprintf("/api/reports/timetable/%s/%s", kind, url.PathEscape(id))
	return c.downloadBinary(ctx, path, w)
}

// DownloadAllReports streams the ZIP of every timetable PDF into w.
func (c *Client) DownloadAllReports(ctx context.Context, w io.Writer) (int64, error) {
	return c.downloadBinary(ctx, "/api/reports/timetable/all", w)
}

func (c *Client) downloadBinary(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, c.responseError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to stream report: %w", err)
	}
	return n, nil
}
