package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/netx"
)

// HTTPClient talks to the persistence API over REST/JSON.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*HTTPClient)

// WithToken sends token as a bearer credential on every call.
func WithToken(token string) Option {
	return func(c *HTTPClient) { c.token = strings.TrimSpace(token) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient = &http.Client{Timeout: d} }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) { c.now = now }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) CheckToken() error {
	return checkTokenExpiry(c.token, c.now())
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, in, out any) error {
	if err := c.CheckToken(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %w: %w", op, common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if !netx.IsSuccess(resp.StatusCode) {
		return newAPIError(op, resp.StatusCode, netx.ReadErrorBody(resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, t *models.Task) (*SaveResult, error) {
	payload := *t
	payload.ID = ""

	var res SaveResult
	if err := c.do(ctx, "create task", http.MethodPost, "/task/create", &payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, t *models.Task) (*SaveResult, error) {
	payload := *t
	payload.ID = id

	var res SaveResult
	if err := c.do(ctx, "update task", http.MethodPut, "/task/update/"+url.PathEscape(id), &payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var res struct {
		Task *models.Task `json:"task"`
	}
	if err := c.do(ctx, "get task", http.MethodGet, "/task/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	if res.Task == nil {
		return nil, fmt.Errorf("get task: %w", common.ErrNotFound)
	}
	return res.Task, nil
}

func (c *HTTPClient) ChangeSubTaskStatus(ctx context.Context, taskID, subTaskID string, status bool) (string, error) {
	in := struct {
		Status bool `json:"status"`
	}{status}

	var res struct {
		Message string `json:"message"`
	}
	path := "/task/change-status/" + url.PathEscape(taskID) + "/" + url.PathEscape(subTaskID)
	if err := c.do(ctx, "change sub-task status", http.MethodPut, path, in, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *HTTPClient) PostActivity(ctx context.Context, taskID string, typ models.ActivityType, body string) (*ActivityResult, error) {
	in := struct {
		Type     models.ActivityType `json:"type"`
		Activity string              `json:"activity"`
	}{typ, body}

	var res ActivityResult
	if err := c.do(ctx, "post activity", http.MethodPost, "/task/activity/"+url.PathEscape(taskID), in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/health", nil, nil)
}
