// Package api implements the HTTP client for the promotion backend.
//
// Every response carries a success boolean. Transport-level failures (network
// errors, non-2xx statuses, bad JSON) are normalized into the same
// {success:false, error} shape at this boundary so callers have a single
// failure path. Nothing here retries automatically: each failed call is
// terminal for the user action that triggered it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/splitflow/internal/model"
)

// Backend endpoint paths.
const (
	pathPlanning    = "/api/matcher/split_planning"
	pathApplySplit  = "/api/matcher/apply_split_id"
	pathAutoCreate  = "/api/automation/auto_create"
	pathAutoEndDate = "/api/automation/auto_end_date"
)

// DefaultTimeout bounds every backend call so a hung request can never leave
// the triggering control stuck forever.
const DefaultTimeout = 60 * time.Second

// Client talks to the promotion backend.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return nil, fmt.Errorf("backend base URL must be http(s): %s", trimmed)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}, nil
}

// Status is the success/error envelope shared by all backend responses.
type Status struct {
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// Failed returns true if the response did not report success.
func (s Status) Failed() bool {
	return !s.Success
}

// ErrorMessage returns the server's error text, with a fallback for
// responses that failed without one.
func (s Status) ErrorMessage() string {
	if s.Error != "" {
		return s.Error
	}
	return "backend reported failure without a message"
}

func (s *Status) fail(msg string) {
	s.Success = false
	s.Error = msg
}

type failable interface {
	fail(string)
}

// PlanRequest asks the backend to analyze one sheet tab.
type PlanRequest struct {
	Tab string `json:"tab"`
}

// PlanResponse is the planning endpoint's payload.
type PlanResponse struct {
	Status
	DateContext    string            `json:"date_context"`
	Summary        model.Summary     `json:"summary"`
	SplitsRequired []model.SplitItem `json:"splits_required"`
	NoConflict     []model.Deal      `json:"no_conflict"`
	CategoryList   []string          `json:"category_list,omitempty"`
	BrandList      []string          `json:"brand_list,omitempty"`
	BrandLinkedMap map[string]string `json:"brand_linked_map,omitempty"`
}

// ApplySplitIDRequest writes one approved identifier back to the sheet.
type ApplySplitIDRequest struct {
	NewMISID  string `json:"new_mis_id"`
	Tag       string `json:"tag"` // part2, gap or patch
	GoogleRow int    `json:"google_row"`
	Append    bool   `json:"append"`
}

// ApplyResponse is the apply endpoint's payload. NewValue is the confirmed
// cell value after the write.
type ApplyResponse struct {
	Status
	NewValue string `json:"new_value,omitempty"`
}

// AutoCreateRequest asks the automation layer to create a MIS entry.
type AutoCreateRequest struct {
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	SectionType string         `json:"section_type"`
	SheetData   map[string]any `json:"sheet_data,omitempty"`
	GoogleRow   int            `json:"google_row"`
	SplitIdx    int            `json:"split_idx"`
	StepIdx     int            `json:"step_idx"`
}

// AutoEndDateRequest asks the automation layer to shorten an existing entry.
type AutoEndDateRequest struct {
	MISID      string `json:"mis_id"`
	NewEndDate string `json:"new_end_date"`
	GoogleRow  int    `json:"google_row"`
	SplitIdx   int    `json:"split_idx"`
	StepIdx    int    `json:"step_idx"`
}

// AutomationResponse is the payload of both automation endpoints.
type AutomationResponse struct {
	Status
}

// Plan runs a planning request for the given tab.
func (c *Client) Plan(ctx context.Context, tab string) (*PlanResponse, error) {
	resp := &PlanResponse{}
	c.post(ctx, pathPlanning, PlanRequest{Tab: tab}, resp)
	return resp, nil
}

// ApplySplitID writes an approved identifier to the sheet cell for its row.
func (c *Client) ApplySplitID(ctx context.Context, req ApplySplitIDRequest) (*ApplyResponse, error) {
	resp := &ApplyResponse{}
	c.post(ctx, pathApplySplit, req, resp)
	return resp, nil
}

// AutoCreate triggers browser automation to create a MIS entry.
func (c *Client) AutoCreate(ctx context.Context, req AutoCreateRequest) (*AutomationResponse, error) {
	resp := &AutomationResponse{}
	c.post(ctx, pathAutoCreate, req, resp)
	return resp, nil
}

// AutoEndDate triggers browser automation to end-date a MIS entry.
func (c *Client) AutoEndDate(ctx context.Context, req AutoEndDateRequest) (*AutomationResponse, error) {
	resp := &AutomationResponse{}
	c.post(ctx, pathAutoEndDate, req, resp)
	return resp, nil
}

// post issues a JSON POST and decodes into out. All failures are folded into
// out's status envelope rather than returned, so callers see one error shape.
func (c *Client) post(ctx context.Context, path string, body any, out failable) {
	payload, err := json.Marshal(body)
	if err != nil {
		out.fail(fmt.Sprintf("failed to encode request: %v", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		out.fail(fmt.Sprintf("failed to create request: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("backend request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed", "path", path, "error", err)
		out.fail(fmt.Sprintf("request failed: %v", err))
		return
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		out.fail(fmt.Sprintf("failed to read response: %v", err))
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.fail(fmt.Sprintf("backend returned %d: %s", resp.StatusCode, truncate(string(raw), 200)))
		return
	}

	if err := json.Unmarshal(raw, out); err != nil {
		out.fail(fmt.Sprintf("failed to decode response: %v", err))
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
