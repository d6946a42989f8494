package notion

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jomei/notionapi"
)

// cannedTransport serves recorded Notion API responses keyed by method+path.
type cannedTransport struct {
	responses map[string]string
	status    map[string]int
}

func (t *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.Path
	body, ok := t.responses[key]
	if !ok {
		body = `{"object":"error","status":404,"code":"object_not_found","message":"not found"}`
		return response(404, body), nil
	}
	status := http.StatusOK
	if s, ok := t.status[key]; ok {
		status = s
	}
	return response(status, body), nil
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

const dbJSON = `{
	"object": "database",
	"id": "%ID%",
	"title": [{"type": "text", "plain_text": "%TITLE%", "text": {"content": "%TITLE%"}}]
}`

const queryJSON = `{
	"object": "list",
	"results": [{
		"object": "page",
		"id": "page-1",
		"properties": {
			"Name": {"id": "title", "type": "title", "title": [{"type": "text", "plain_text": "Enviar informe", "text": {"content": "Enviar informe"}}]},
			"Status": {"id": "st", "type": "status", "status": {"id": "s1", "name": "In Progress"}}
		}
	}],
	"has_more": false
}`

func db(id, title string) string {
	return strings.NewReplacer("%ID%", id, "%TITLE%", title).Replace(dbJSON)
}

func newTestFetcher(t *testing.T, transport *cannedTransport) *Fetcher {
	t.Helper()
	return NewFetcher("secret-token", notionapi.WithHTTPClient(&http.Client{Transport: transport}))
}

func TestPendingTasksFanOut(t *testing.T) {
	f := newTestFetcher(t, &cannedTransport{
		responses: map[string]string{
			"GET /v1/databases/db-a":        db("db-a", "Proyectos"),
			"POST /v1/databases/db-a/query": queryJSON,
			"GET /v1/databases/db-b":        db("db-b", "Personal"),
			"POST /v1/databases/db-b/query": queryJSON,
		},
	})

	groups, warnings := f.PendingTasks(context.Background(), []string{"db-a", "db-b"})

	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].ID != "db-a" || groups[1].ID != "db-b" {
		t.Errorf("group order = [%s %s], want input order [db-a db-b]", groups[0].ID, groups[1].ID)
	}
	if groups[0].Title != "Proyectos" {
		t.Errorf("groups[0].Title = %q, want Proyectos", groups[0].Title)
	}
	if len(groups[0].Tasks) != 1 {
		t.Fatalf("groups[0] has %d tasks, want 1", len(groups[0].Tasks))
	}
}

// One failing database must not abort its siblings: the batch keeps all
// groups in input order and the failed one degrades to an empty task list.
func TestPendingTasksFailureIsolation(t *testing.T) {
	errorBody := `{"object":"error","status":500,"code":"internal_server_error","message":"boom"}`
	f := newTestFetcher(t, &cannedTransport{
		responses: map[string]string{
			"GET /v1/databases/db-a":        db("db-a", "Proyectos"),
			"POST /v1/databases/db-a/query": queryJSON,
			"GET /v1/databases/db-b":        errorBody,
			"POST /v1/databases/db-b/query": errorBody,
			"GET /v1/databases/db-c":        db("db-c", "Equipo"),
			"POST /v1/databases/db-c/query": queryJSON,
		},
		status: map[string]int{
			"GET /v1/databases/db-b":        500,
			"POST /v1/databases/db-b/query": 500,
		},
	})

	groups, warnings := f.PendingTasks(context.Background(), []string{"db-a", "db-b", "db-c"})

	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if groups[1].ID != "db-b" {
		t.Errorf("groups[1].ID = %q, want db-b (input order preserved)", groups[1].ID)
	}
	if len(groups[1].Tasks) != 0 {
		t.Errorf("degraded group has %d tasks, want 0", len(groups[1].Tasks))
	}
	if groups[1].Title != "Base de Datos desconocida" {
		t.Errorf("degraded group title = %q, want placeholder", groups[1].Title)
	}
	if len(groups[0].Tasks) != 1 || len(groups[2].Tasks) != 1 {
		t.Errorf("sibling groups degraded too: %d, %d tasks", len(groups[0].Tasks), len(groups[2].Tasks))
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one", warnings)
	}
}

func TestPendingTasksTitleFallback(t *testing.T) {
	// Metadata lookup fails but the query succeeds: tasks still come back
	// under the placeholder title.
	f := newTestFetcher(t, &cannedTransport{
		responses: map[string]string{
			"POST /v1/databases/db-a/query": queryJSON,
		},
	})

	groups, warnings := f.PendingTasks(context.Background(), []string{"db-a"})

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Title != "Base de Datos desconocida" {
		t.Errorf("Title = %q, want placeholder", groups[0].Title)
	}
	if len(groups[0].Tasks) != 1 {
		t.Errorf("got %d tasks, want 1 despite failed title lookup", len(groups[0].Tasks))
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, metadata failure alone should not warn", warnings)
	}
}

func TestPendingTasksDisabledWithoutToken(t *testing.T) {
	f := NewFetcher("")

	groups, warnings := f.PendingTasks(context.Background(), []string{"db-a"})
	if len(groups) != 0 || warnings != nil {
		t.Errorf("disabled fetcher returned groups=%v warnings=%v, want none", groups, warnings)
	}
}
