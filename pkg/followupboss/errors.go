package followupboss

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey indicates the client was constructed without a credential.
var ErrMissingAPIKey = errors.New("followupboss: api key is empty")

const maxBodySnippet = 512

// APIError is a non-2xx response from Follow Up Boss. Status codes are not
// interpreted locally; the caller decides what 401 vs 422 means for it.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("followupboss: %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("followupboss: %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// bodySnippet trims a response body to a loggable size.
func bodySnippet(body []byte) string {
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
	}
	return strings.TrimSpace(string(body))
}
