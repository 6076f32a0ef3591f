package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkaryakin/inflow/internal/model"
)

func newTestDocumentClient(t *testing.T, handler http.Handler) (*DocumentClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewDocumentClient(model.DocumentsConfig{
		BaseURL:    srv.URL,
		Token:      "secret",
		APIVersion: "2022-06-28",
		Timeout:    5 * time.Second,
		StatusTTL:  time.Minute,
	}, nil)
	return client, srv
}

const searchPayload = `{
  "results": [
    {
      "id": "db-movies",
      "url": "https://docs.example/db-movies",
      "title": [{"text": {"content": "Movies"}}],
      "parent": {"type": "page_id", "page_id": "page-1"},
      "properties": {
        "Name": {"type": "title", "title": {}},
        "Genre": {"type": "select", "select": {"options": [{"name": "Drama"}, {"name": "Sci-Fi"}]}},
        "Watched": {"type": "checkbox", "checkbox": {}},
        "Added": {"type": "created_time", "created_time": {}},
        "Score": {"type": "formula", "formula": {}},
        "Embedding": {"type": "verification", "verification": {}}
      }
    },
    {
      "id": "db-log",
      "url": "https://docs.example/db-log",
      "title": [{"text": {"content": "Activity Log"}}],
      "parent": {"type": "page_id", "page_id": "page-2"},
      "properties": {
        "Action": {"type": "title", "title": {}}
      }
    }
  ]
}`

func TestDocumentClient_ListDestinations(t *testing.T) {
	client, _ := newTestDocumentClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != "2022-06-28" {
			t.Errorf("Expected versioned header, got %q", got)
		}
		w.Write([]byte(searchPayload))
	}))

	dests, err := client.ListDestinations(context.Background(), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(dests) != 2 {
		t.Fatalf("Expected 2 destinations, got %d", len(dests))
	}

	movies := dests[0]
	if movies.Title != "Movies" || movies.ID != "db-movies" {
		t.Errorf("Unexpected destination: %+v", movies)
	}

	byName := map[string]model.FieldSchema{}
	for _, f := range movies.Fields {
		byName[f.Name] = f
	}

	if byName["Name"].Type != model.FieldTitle {
		t.Errorf("Expected title type, got %s", byName["Name"].Type)
	}
	if byName["Genre"].Type != model.FieldSingleSelect {
		t.Errorf("Expected single-select, got %s", byName["Genre"].Type)
	}
	if len(byName["Genre"].Options) != 2 || byName["Genre"].Options[0] != "Drama" {
		t.Errorf("Expected ordered options, got %v", byName["Genre"].Options)
	}
	if byName["Watched"].Type != model.FieldBoolean {
		t.Errorf("Expected boolean, got %s", byName["Watched"].Type)
	}
	// Auto-computed kinds pass through by name
	if byName["Added"].Type != model.FieldCreatedTime {
		t.Errorf("Expected created_time passthrough, got %s", byName["Added"].Type)
	}
	if byName["Score"].Type != model.FieldFormula {
		t.Errorf("Expected formula passthrough, got %s", byName["Score"].Type)
	}
	// Unrecognized types default to text at the boundary
	if byName["Embedding"].Type != model.FieldText {
		t.Errorf("Expected unknown type to become text, got %s", byName["Embedding"].Type)
	}
}

func TestDocumentClient_ListDestinations_ScopeFilter(t *testing.T) {
	client, _ := newTestDocumentClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPayload))
	}))

	dests, err := client.ListDestinations(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(dests) != 1 || dests[0].ID != "db-movies" {
		t.Fatalf("Expected only db-movies in scope, got %+v", dests)
	}
}

func TestDocumentClient_CreateRecord(t *testing.T) {
	client, _ := newTestDocumentClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pages" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var body struct {
			Parent     map[string]string          `json:"parent"`
			Properties map[string]model.FieldValue `json:"properties"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode request: %v", err)
		}
		if body.Parent["database_id"] != "db-movies" {
			t.Errorf("Expected parent db-movies, got %v", body.Parent)
		}
		if _, ok := body.Properties["Name"]; !ok {
			t.Error("Expected Name property in payload")
		}
		w.Write([]byte(`{"id": "rec-1", "url": "https://docs.example/rec-1"}`))
	}))

	props := map[string]model.FieldValue{
		"Name": {"title": []any{map[string]any{"text": map[string]any{"content": "Inception"}}}},
	}
	info, err := client.CreateRecord(context.Background(), "db-movies", props)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if info.RecordID != "rec-1" || info.URL != "https://docs.example/rec-1" {
		t.Errorf("Unexpected record info: %+v", info)
	}
}

func TestDocumentClient_CreateRecord_ErrorSurfaced(t *testing.T) {
	client, _ := newTestDocumentClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "validation failed"}`))
	}))

	_, err := client.CreateRecord(context.Background(), "db-movies", nil)
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}
}

func TestDocumentClient_StatusCached(t *testing.T) {
	calls := 0
	client, _ := newTestDocumentClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"name": "Workspace Bot"}`))
	}))

	first := client.Status(context.Background())
	second := client.Status(context.Background())

	if !first.Connected || first.Detail != "Workspace Bot" {
		t.Errorf("Unexpected status: %+v", first)
	}
	if !second.Connected {
		t.Errorf("Unexpected cached status: %+v", second)
	}
	if calls != 1 {
		t.Errorf("Expected 1 probe call, got %d", calls)
	}
}

func TestDocumentClient_StatusNoToken(t *testing.T) {
	client := NewDocumentClient(model.DocumentsConfig{BaseURL: "http://unused"}, nil)
	status := client.Status(context.Background())
	if status.Connected {
		t.Error("Expected disconnected status without token")
	}
}
