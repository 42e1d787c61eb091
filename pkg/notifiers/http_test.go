package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nebula-hq/nebula-lead-relay/pkg/followupboss"
)

func TestHTTPNotifierSuccess(t *testing.T) {
	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Fatalf("missing header, got %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := newHTTPNotifier(context.Background(), NotifierConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPNotifierConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPNotifier: %v", err)
	}

	evt := NewEvent("Zillow", 123, followupboss.Lead{FirstName: "Jane", LastName: "Doe"})
	if err := n.Notify(context.Background(), evt); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if received.PersonID != 123 || received.IntakeSource != "Zillow" {
		t.Fatalf("server received %+v", received)
	}
}

func TestHTTPNotifierErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	n, err := newHTTPNotifier(context.Background(), NotifierConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPNotifierConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			TimeoutSeconds: 1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPNotifier: %v", err)
	}

	if err := n.Notify(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}
