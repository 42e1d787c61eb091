package followupboss

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nebula-hq/nebula-lead-relay/pkg/httpclient"
)

const (
	// DefaultBaseURL is the production Follow Up Boss API root.
	DefaultBaseURL = "https://api.followupboss.com/v1"

	// DefaultSystem identifies this integration to Follow Up Boss. It is sent
	// as the X-System header on every request and as the event "system" field.
	DefaultSystem = "Nebula"

	// DefaultTimeout bounds each request when no custom timeout is configured.
	DefaultTimeout = 30 * time.Second

	// EnvAPIKey is the environment variable NewFromEnv reads the key from.
	EnvAPIKey = "FOLLOWUPBOSS_API_KEY"

	searchLimit = 10
)

// Client issues authenticated requests against the Follow Up Boss REST API.
// Every call is independent and synchronous; the zero shared state beyond the
// immutable credential makes a single Client safe for concurrent use.
type Client struct {
	http    *resty.Client
	apiKey  string
	baseURL string
	system  string
	timeout time.Duration
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. to point at a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(strings.TrimSpace(u), "/") }
}

// WithSystem overrides the X-System integration name.
func WithSystem(system string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(system); s != "" {
			c.system = s
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient injects a pre-configured resty client. Auth and identifying
// headers are still applied by New.
func WithHTTPClient(hc *resty.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a Client for the given API key. An empty key is a configuration
// error and is rejected here, before any network call can be attempted.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		system:  DefaultSystem,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = httpclient.New(c.timeout)
	}
	c.http.
		SetBaseURL(c.baseURL).
		SetBasicAuth(c.apiKey, "").
		SetHeader("Content-Type", "application/json").
		SetHeader("X-System", c.system).
		SetHeader("X-System-Key", c.apiKey)

	return c, nil
}

// NewFromEnv builds a Client from the FOLLOWUPBOSS_API_KEY environment variable.
func NewFromEnv(opts ...Option) (*Client, error) {
	key := os.Getenv(EnvAPIKey)
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%s not set: %w", EnvAPIKey, ErrMissingAPIKey)
	}
	return New(key, opts...)
}

// CreateLead submits a lead through the events endpoint. The events endpoint
// both creates/updates the contact and fires lead routing, action plans, and
// agent notifications on the Follow Up Boss side.
func (c *Client) CreateLead(ctx context.Context, lead Lead) (map[string]any, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, resty.MethodPost, "/events", nil, lead.eventPayload(c.system))
}

// SearchPeople looks up existing contacts by name, email, or phone.
func (c *Client) SearchPeople(ctx context.Context, query string) (map[string]any, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(searchLimit))
	return c.do(ctx, resty.MethodGet, "/people", q, nil)
}

// GetUsers lists the users/agents in the account.
func (c *Client) GetUsers(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, resty.MethodGet, "/users", nil, nil)
}

// AddNote attaches a note to an existing contact. A person ID unknown to the
// remote system surfaces as an *APIError, typically 404.
func (c *Client) AddNote(ctx context.Context, note Note) (map[string]any, error) {
	if err := note.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, resty.MethodPost, "/notes", nil, note.payload())
}

// CreateTask creates a follow-up task linked to a contact.
func (c *Client) CreateTask(ctx context.Context, task Task) (map[string]any, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, resty.MethodPost, "/tasks", nil, task.payload())
}

// do is the single request primitive shared by every operation: attach the
// query and body, execute, map non-2xx to *APIError, and decode the JSON
// document without reshaping it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (map[string]any, error) {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("followupboss %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       bodySnippet(resp.Body()),
		}
	}

	raw := resp.Body()
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("followupboss %s %s: decode response: %w", method, path, err)
	}
	return out, nil
}
