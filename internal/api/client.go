package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/pkg/httpapi"
)

// Client provides typed access to the tracker API.
type Client struct {
	baseURL    string
	user       string
	httpClient *http.Client
}

var _ Service = (*Client)(nil)

// NewClient creates a tracker client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithUser sets the identity sent on every request. The tracker resolves
// "mine" and the review queue against it.
func (c *Client) WithUser(user string) *Client {
	c.user = user
	return c
}

// WithTimeout overrides the default 30s request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.httpClient.Timeout = d
	}
	return c
}

// request helpers

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set("X-User", c.user)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		if apiErr, ok := httpapi.ParseError(raw); ok {
			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("%s %s: %s: %w", method, path, apiErr.Message, ErrNotFound)
			}
			return fmt.Errorf("%s %s: %w", method, path, apiErr)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, string(raw))
	}

	if result == nil {
		return nil
	}
	if err := httpapi.Decode(resp.Body, result); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

// listQuery translates the shared filter fields.
func listQuery(f task.Filters) url.Values {
	q := url.Values{}
	if f.PeriodID != 0 {
		q.Set("period_id", strconv.FormatInt(f.PeriodID, 10))
	}
	if f.Department != "" {
		q.Set("department", f.Department)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// ListTasks returns tasks matching the filters.
func (c *Client) ListTasks(ctx context.Context, f task.Filters) ([]task.Task, error) {
	q := listQuery(f)
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Mine {
		q.Set("mine", "1")
	}
	var out []task.Task
	if err := c.get(ctx, "/api/tasks", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReviewQueue returns the current user's review queue.
func (c *Client) ListReviewQueue(ctx context.Context, f task.Filters) ([]task.Task, error) {
	var out []task.Task
	if err := c.get(ctx, "/api/reviews", listQuery(f), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTaskStatus transitions a single task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, s task.Status) (task.Task, error) {
	var out task.Task
	body := map[string]string{"status": string(s)}
	if err := c.put(ctx, "/api/tasks/"+strconv.FormatInt(id, 10)+"/status", body, &out); err != nil {
		return task.Task{}, err
	}
	return out, nil
}

// BulkUpdateStatus applies one status to many tasks.
func (c *Client) BulkUpdateStatus(ctx context.Context, ids []int64, s task.Status) (int, error) {
	body := map[string]any{"task_ids": ids, "status": string(s)}
	var out struct {
		Updated int `json:"updated"`
	}
	if err := c.post(ctx, "/api/tasks/bulk-status", body, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// CreateTask adds a task.
func (c *Client) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	var out task.Task
	if err := c.post(ctx, "/api/tasks", d, &out); err != nil {
		return task.Task{}, err
	}
	return out, nil
}

// ListPeriods returns the known close periods.
func (c *Client) ListPeriods(ctx context.Context) ([]task.Period, error) {
	var out []task.Period
	if err := c.get(ctx, "/api/periods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
