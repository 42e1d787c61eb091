// Package httpclient centralizes resty client construction so every outbound
// HTTP surface (CRM client, webhook notifier) shares the same defaults.
package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "nebula-lead-relay"
)

// New returns a resty client with the given per-request timeout.
// A non-positive timeout falls back to the package default.
func New(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", userAgent)
	return c
}
