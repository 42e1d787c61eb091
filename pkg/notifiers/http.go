package notifiers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nebula-hq/nebula-lead-relay/internal/logger"
	"github.com/nebula-hq/nebula-lead-relay/pkg/httpclient"
)

// httpNotifier posts events to a webhook URL.
type httpNotifier struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
}

func newHTTPNotifier(_ context.Context, cfg NotifierConfig, _ logger.Logger) (Notifier, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("notifier %q missing http configuration", cfg.ID)
	}

	return &httpNotifier{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.New(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
	}, nil
}

func (h *httpNotifier) ID() string   { return h.id }
func (h *httpNotifier) Type() string { return TypeHTTP }

func (h *httpNotifier) Notify(ctx context.Context, evt Event) error {
	req := h.client.R().
		SetContext(ctx).
		SetBody(evt)

	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}
	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http notify: %w", err)
	}
	if resp.IsError() {
		body := strings.TrimSpace(string(resp.Body()))
		if len(body) > 512 {
			body = body[:512]
		}
		return fmt.Errorf("http notify status %d: %s", resp.StatusCode(), body)
	}
	return nil
}
