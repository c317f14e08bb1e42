package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/boardsync/internal/core/action"
)

const defaultTimeout = 10 * time.Second

// HTTPClient talks JSON over HTTP to the task backend.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// HTTPOptions configures the HTTP client.
type HTTPOptions struct {
	// Token is sent as a bearer token when non-empty.
	Token string
	// Timeout bounds each request. Zero means defaultTimeout.
	Timeout time.Duration
}

// NewHTTPClient creates a client against the given base URL.
func NewHTTPClient(baseURL string, opts HTTPOptions, log zerolog.Logger) *HTTPClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   opts.Token,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "backend-client").Logger(),
	}
}

var _ Client = (*HTTPClient)(nil)

// StatusError is returned for non-2xx responses, carrying the HTTP status
// and any message the backend included.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Message)
}

// Is allows errors.Is(err, ErrNotFound) checks on 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

func (c *HTTPClient) ListGlobalItems(ctx context.Context) ([]action.Raw, error) {
	var items []action.Raw
	if err := c.do(ctx, http.MethodGet, "/api/action-items", nil, &items); err != nil {
		return nil, fmt.Errorf("list global items: %w", err)
	}
	return items, nil
}

func (c *HTTPClient) ListProjectItems(ctx context.Context, projectID string, opts ListOptions) ([]action.Raw, error) {
	path := "/api/projects/" + url.PathEscape(projectID) + "/action-items"
	if opts.Owner != "" {
		path += "?owner=" + url.QueryEscape(opts.Owner)
	}

	var items []action.Raw
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, fmt.Errorf("list project items: %w", err)
	}
	return items, nil
}

func (c *HTTPClient) ListAllItems(ctx context.Context) ([]action.Raw, error) {
	var items []action.Raw
	if err := c.do(ctx, http.MethodGet, "/api/action-items/all", nil, &items); err != nil {
		return nil, fmt.Errorf("list all items: %w", err)
	}
	return items, nil
}

func (c *HTTPClient) CreateGlobalItem(ctx context.Context, payload ItemPayload) (action.Raw, error) {
	var item action.Raw
	if err := c.do(ctx, http.MethodPost, "/api/action-items", payload, &item); err != nil {
		return action.Raw{}, fmt.Errorf("create global item: %w", err)
	}
	return item, nil
}

func (c *HTTPClient) CreateProjectItem(ctx context.Context, projectID string, payload ItemPayload) (action.Raw, error) {
	path := "/api/projects/" + url.PathEscape(projectID) + "/action-items"

	var item action.Raw
	if err := c.do(ctx, http.MethodPost, path, payload, &item); err != nil {
		return action.Raw{}, fmt.Errorf("create project item: %w", err)
	}
	return item, nil
}

func (c *HTTPClient) CreateMeetingItem(ctx context.Context, transcriptionID string, payload ItemPayload) (action.Raw, error) {
	path := "/api/meetings/" + url.PathEscape(transcriptionID) + "/action-items"

	var item action.Raw
	if err := c.do(ctx, http.MethodPost, path, payload, &item); err != nil {
		return action.Raw{}, fmt.Errorf("create meeting item: %w", err)
	}
	return item, nil
}

func (c *HTTPClient) UpdateItem(ctx context.Context, id string, payload ItemPayload) (action.Raw, error) {
	var item action.Raw
	if err := c.do(ctx, http.MethodPatch, "/api/action-items/"+url.PathEscape(id), payload, &item); err != nil {
		return action.Raw{}, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

func (c *HTTPClient) UpdateGlobalItem(ctx context.Context, id string, payload ItemPayload) (action.Raw, error) {
	var item action.Raw
	if err := c.do(ctx, http.MethodPut, "/api/action-items/"+url.PathEscape(id), payload, &item); err != nil {
		return action.Raw{}, fmt.Errorf("update global item: %w", err)
	}
	return item, nil
}

func (c *HTTPClient) DeleteItem(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/action-items/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (c *HTTPClient) LinkItemToProject(ctx context.Context, projectID, itemID string) error {
	path := "/api/projects/" + url.PathEscape(projectID) + "/action-items/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("link item to project: %w", err)
	}
	return nil
}

func (c *HTTPClient) UnlinkItemFromProject(ctx context.Context, projectID, itemID string) error {
	path := "/api/projects/" + url.PathEscape(projectID) + "/action-items/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("unlink item from project: %w", err)
	}
	return nil
}

// do issues a single JSON request. A nil body sends no payload; a nil dest
// discards the response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Str("path", path).Msg("close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// readErrorMessage extracts a {"message": ...} body if present. Best-effort.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Message
}
