// Package api is the HTTP client for the budget planning service.
//
// Every method issues exactly one request and either returns the decoded
// response body or fails. Non-2xx responses become *Error carrying a
// fixed, operation-specific message; transport failures are returned
// wrapped as-is. The client never retries and imposes no timeout of its
// own: cancellation belongs to the caller's context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8080/api/v1"

	maxBodySize = 32 << 20 // 32 MB
	userAgent   = "github.com/theirongolddev/bplan/1.0"

	importField = "file"
)

// Client talks to the budget API rooted at a fixed base URL.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a client for baseURL. An empty baseURL selects
// DefaultBaseURL; a trailing slash is dropped.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ─── Budgets ────────────────────────────────────────────────────

// ListBudgets returns all budgets.
func (c *Client) ListBudgets(ctx context.Context) ([]Budget, error) {
	var out []Budget
	err := c.do(ctx, request{op: "ListBudgets", method: http.MethodGet, path: "/budgets", failMsg: msgListBudgets}, &out)
	return out, err
}

// GetBudget returns one budget.
func (c *Client) GetBudget(ctx context.Context, id string) (*Budget, error) {
	var out Budget
	err := c.do(ctx, request{op: "GetBudget", method: http.MethodGet, path: budgetPath(id), failMsg: msgGetBudget}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBudget creates a budget and returns the server's copy. On
// failure the server's own error text is preferred when it sends one.
func (c *Client) CreateBudget(ctx context.Context, b Budget) (*Budget, error) {
	req, err := jsonRequest("CreateBudget", http.MethodPost, "/budgets", msgCreateBudget, b)
	if err != nil {
		return nil, err
	}
	req.serverMessage = true

	var out Budget
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBudget replaces the budget with the given id.
func (c *Client) UpdateBudget(ctx context.Context, id string, b Budget) (*Budget, error) {
	req, err := jsonRequest("UpdateBudget", http.MethodPut, budgetPath(id), msgUpdateBudget, b)
	if err != nil {
		return nil, err
	}

	var out Budget
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBudget deletes the budget with the given id.
func (c *Client) DeleteBudget(ctx context.Context, id string) (*DeleteResult, error) {
	var out DeleteResult
	err := c.do(ctx, request{op: "DeleteBudget", method: http.MethodDelete, path: budgetPath(id), failMsg: msgDeleteBudget}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Budget lines ───────────────────────────────────────────────

// ListBudgetLines returns the lines of a budget.
func (c *Client) ListBudgetLines(ctx context.Context, budgetID string) ([]BudgetLine, error) {
	var out []BudgetLine
	err := c.do(ctx, request{op: "ListBudgetLines", method: http.MethodGet, path: budgetPath(budgetID) + "/lines", failMsg: msgListLines}, &out)
	return out, err
}

// CreateBudgetLine creates a line; line.BudgetID selects the budget.
func (c *Client) CreateBudgetLine(ctx context.Context, line BudgetLine) (*BudgetLine, error) {
	req, err := jsonRequest("CreateBudgetLine", http.MethodPost, "/budget-lines", msgCreateLine, line)
	if err != nil {
		return nil, err
	}

	var out BudgetLine
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Actuals ────────────────────────────────────────────────────

// ListActuals returns the actuals recorded for a budget.
func (c *Client) ListActuals(ctx context.Context, budgetID string) ([]Actual, error) {
	var out []Actual
	err := c.do(ctx, request{op: "ListActuals", method: http.MethodGet, path: budgetPath(budgetID) + "/actuals", failMsg: msgListActuals}, &out)
	return out, err
}

// ImportActuals uploads a CSV of actuals as a multipart form under the
// "file" field. A nil file still sends the form, with an empty part.
func (c *Client) ImportActuals(ctx context.Context, budgetID, filename string, file io.Reader) (*ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(importField, filename)
	if err != nil {
		return nil, fmt.Errorf("api: building import form: %w", err)
	}
	if file != nil {
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("api: reading import file: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api: building import form: %w", err)
	}

	var out ImportResult
	err = c.do(ctx, request{
		op:          "ImportActuals",
		method:      http.MethodPost,
		path:        budgetPath(budgetID) + "/import/actuals",
		failMsg:     msgImportActuals,
		contentType: mw.FormDataContentType(),
		body:        buf.Bytes(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportActualsFile opens path and uploads it through ImportActuals.
func (c *Client) ImportActualsFile(ctx context.Context, budgetID, path string) (*ImportResult, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the local user
	if err != nil {
		return nil, fmt.Errorf("api: opening import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return c.ImportActuals(ctx, budgetID, filepath.Base(path), f)
}

// ─── Reports ────────────────────────────────────────────────────

// PlanActualReport returns the plan/actual comparison for a budget.
func (c *Client) PlanActualReport(ctx context.Context, budgetID string) ([]PlanActualRow, error) {
	var out []PlanActualRow
	err := c.do(ctx, request{op: "PlanActualReport", method: http.MethodGet, path: budgetPath(budgetID) + "/reports/plan-actual", failMsg: msgPlanActual}, &out)
	return out, err
}

// CategorySummary returns per-category totals for a budget.
func (c *Client) CategorySummary(ctx context.Context, budgetID string) ([]CategorySummaryRow, error) {
	var out []CategorySummaryRow
	err := c.do(ctx, request{op: "CategorySummary", method: http.MethodGet, path: budgetPath(budgetID) + "/reports/category-summary", failMsg: msgCategorySummary}, &out)
	return out, err
}

// ─── Transport ──────────────────────────────────────────────────

type request struct {
	op          string
	method      string
	path        string
	failMsg     string
	contentType string
	body        []byte

	// serverMessage makes a non-2xx response surface the server's
	// "error" or "message" field instead of failMsg when present.
	serverMessage bool
}

func jsonRequest(op, method, path, failMsg string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("api: encoding %s payload: %w", op, err)
	}
	return request{
		op:          op,
		method:      method,
		path:        path,
		failMsg:     failMsg,
		contentType: "application/json",
		body:        body,
	}, nil
}

func budgetPath(id string) string {
	return "/budgets/" + url.PathEscape(id)
}

// do performs r and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, r request, out any) error {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("api: creating request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "op", r.op, "method", r.method, "path", r.path, "err", err)
		return fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("api request",
		"op", r.op,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := r.failMsg
		if r.serverMessage {
			if m := serverErrorMessage(resp.Body); m != "" {
				msg = m
			}
		}
		return &Error{Op: r.op, Status: resp.StatusCode, Message: msg}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api: reading response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: parsing %s response: %w", r.op, err)
	}
	return nil
}

// serverErrorMessage extracts the server's error text from a JSON error
// body. Unreadable or non-JSON bodies yield "".
func serverErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxBodySize))
	if err != nil {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
