package followupboss

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, srv
}

func TestAuthAndIdentifyingHeaders(t *testing.T) {
	var gotAuth, gotSystem, gotSystemKey string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSystem = r.Header.Get("X-System")
		gotSystemKey = r.Header.Get("X-System-Key")
		w.Write([]byte(`{}`))
	})

	if _, err := client.GetUsers(context.Background()); err != nil {
		t.Fatalf("GetUsers: %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("test-key:"))
	if gotAuth != want {
		t.Fatalf("Authorization = %q, want %q", gotAuth, want)
	}
	if gotSystem != DefaultSystem {
		t.Fatalf("X-System = %q, want %q", gotSystem, DefaultSystem)
	}
	if gotSystemKey != "test-key" {
		t.Fatalf("X-System-Key = %q", gotSystemKey)
	}
}

func TestCreateLeadPayloadAndResponse(t *testing.T) {
	var payload map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/events" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.Write([]byte(`{"person": {"id": 123}}`))
	})

	resp, err := client.CreateLead(context.Background(), Lead{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Source:    "Zillow",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	id, ok := PersonID(resp)
	if !ok || id != 123 {
		t.Fatalf("PersonID = %d, %v; want 123, true", id, ok)
	}

	if payload["source"] != "Zillow" {
		t.Fatalf("source = %v", payload["source"])
	}
	if payload["system"] != DefaultSystem {
		t.Fatalf("system = %v", payload["system"])
	}
	if payload["type"] != DefaultLeadType {
		t.Fatalf("type = %v (default expected)", payload["type"])
	}

	person, ok := payload["person"].(map[string]any)
	if !ok {
		t.Fatalf("person missing: %v", payload)
	}
	if person["firstName"] != "Jane" || person["lastName"] != "Doe" {
		t.Fatalf("person = %v", person)
	}
	emails, ok := person["emails"].([]any)
	if !ok || len(emails) != 1 {
		t.Fatalf("emails = %v", person["emails"])
	}
	if emails[0].(map[string]any)["value"] != "jane@example.com" {
		t.Fatalf("email value = %v", emails[0])
	}
	if _, present := person["phones"]; present {
		t.Fatalf("phones should be omitted when no phone supplied")
	}

	// Optional fields not supplied must be absent from the wire payload.
	for _, key := range []string{"priceMin", "priceMax", "assigned"} {
		if _, present := payload[key]; present {
			t.Fatalf("%s should be omitted, payload = %v", key, payload)
		}
	}

	tags, ok := payload["tags"].([]any)
	if !ok || len(tags) != 1 || tags[0] != "AI Created" {
		t.Fatalf("tags = %v", payload["tags"])
	}
}

func TestCreateLeadOptionalFields(t *testing.T) {
	var payload map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.Write([]byte(`{}`))
	})

	_, err := client.CreateLead(context.Background(), Lead{
		FirstName:  "John",
		LastName:   "Smith",
		Phone:      "305-555-1234",
		Message:    "Looking for a 3 bedroom home",
		PriceMax:   400000,
		Tags:       []string{"Referral", "AI Created"},
		AssignedTo: "agent@example.com",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	if payload["priceMax"] != float64(400000) {
		t.Fatalf("priceMax = %v", payload["priceMax"])
	}
	if _, present := payload["priceMin"]; present {
		t.Fatalf("priceMin should be omitted when zero")
	}
	if payload["assigned"] != "agent@example.com" {
		t.Fatalf("assigned = %v", payload["assigned"])
	}
	tags, _ := payload["tags"].([]any)
	if len(tags) != 2 || tags[0] != "AI Created" || tags[1] != "Referral" {
		t.Fatalf("tags should dedupe the system tag, got %v", tags)
	}
}

func TestCreateLeadValidationSkipsNetwork(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	})

	_, err := client.CreateLead(context.Background(), Lead{FirstName: "Jane"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if calls != 0 {
		t.Fatalf("no request should be made for an invalid lead, got %d", calls)
	}
}

func TestSearchPeopleQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/people" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "jane@example.com" {
			t.Fatalf("q = %q", q.Get("q"))
		}
		if q.Get("limit") != "10" {
			t.Fatalf("limit = %q", q.Get("limit"))
		}
		w.Write([]byte(`{"people": []}`))
	})

	resp, err := client.SearchPeople(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("SearchPeople: %v", err)
	}
	if _, ok := resp["people"]; !ok {
		t.Fatalf("response should be returned unchanged, got %v", resp)
	}
}

func TestAddNoteNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errorMessage": "Person not found"}`, http.StatusNotFound)
	})

	_, err := client.AddNote(context.Background(), Note{PersonID: 123, Body: "Called client"})
	if err == nil {
		t.Fatalf("expected error on 404")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d", apiErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("error message should include the status code: %v", err)
	}
	if !strings.Contains(err.Error(), "Person not found") {
		t.Fatalf("error message should include the response body: %v", err)
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	var payload map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.Write([]byte(`{"id": 7}`))
	})

	_, err := client.CreateTask(context.Background(), Task{PersonID: 123, Name: "Follow up"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if payload["personId"] != float64(123) {
		t.Fatalf("personId = %v", payload["personId"])
	}
	if payload["type"] != DefaultTaskType {
		t.Fatalf("type = %v", payload["type"])
	}
	if _, present := payload["dueDate"]; present {
		t.Fatalf("dueDate should be omitted when empty")
	}
}

func TestMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.GetUsers(context.Background())
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("New(\"\") = %v, want ErrMissingAPIKey", err)
	}
	if _, err := New("   "); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("New(blank) = %v, want ErrMissingAPIKey", err)
	}

	t.Setenv(EnvAPIKey, "")
	if _, err := NewFromEnv(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("NewFromEnv = %v, want ErrMissingAPIKey", err)
	}
}
