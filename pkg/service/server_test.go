package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tj/assert"

	"github.com/erpforge/orchestrator-go/pkg/stores"
	"github.com/erpforge/orchestrator-go/pkg/types"
)

func newTestServer() *Server {
	return NewServer(stores.NewInMemoryCollection(TaskCollection), "memory", ":0")
}

func doJSON(t *testing.T, srv *Server, method, target string, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := srv.App().Test(req)
	assert.NoError(t, err)

	data, err := io.ReadAll(res.Body)
	assert.NoError(t, err)
	res.Body.Close()

	return res, data
}

func TestServer_Root(t *testing.T) {
	srv := newTestServer()

	res, body := doJSON(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "ERP Orchestrator API running")
}

func TestServer_Diagnostics(t *testing.T) {
	srv := newTestServer()

	res, body := doJSON(t, srv, http.MethodGet, "/test", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var report map[string]any
	assert.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "running", report["backend"])
	assert.Equal(t, "connected", report["storage"])
	assert.Equal(t, "memory", report["storage_driver"])
	assert.Equal(t, []any{"task"}, report["collections"])
}

func TestServer_Schema(t *testing.T) {
	srv := newTestServer()

	res, body := doJSON(t, srv, http.MethodGet, "/schema", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var schema struct {
		Collections []struct {
			Name   string         `json:"name"`
			Fields map[string]any `json:"fields"`
		} `json:"collections"`
	}
	assert.NoError(t, json.Unmarshal(body, &schema))
	assert.Len(t, schema.Collections, 1)
	assert.Equal(t, "task", schema.Collections[0].Name)
	assert.NotEmpty(t, schema.Collections[0].Fields["properties"])
}

func TestServer_TaskLifecycle(t *testing.T) {
	srv := newTestServer()

	// Create with defaults.
	res, body := doJSON(t, srv, http.MethodPost, "/api/tasks", `{"name":"Q4 report"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var created types.Task
	assert.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, types.TaskStatusQueued, created.Status)
	assert.Len(t, created.Steps, 4)
	assert.Equal(t, []string{"Task created"}, created.Logs)

	// Read it back.
	res, body = doJSON(t, srv, http.MethodGet, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var fetched types.Task
	assert.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created, fetched)

	// Partial update with a log append.
	res, body = doJSON(t, srv, http.MethodPatch, "/api/tasks/"+created.ID,
		`{"status":"running","progress":25,"append_log":"step 1 done"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var updated types.Task
	assert.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, types.TaskStatusRunning, updated.Status)
	assert.Equal(t, 25, updated.Progress)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, []string{"Task created", "step 1 done"}, updated.Logs)

	// List includes it.
	res, body = doJSON(t, srv, http.MethodGet, "/api/tasks?limit=10", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var tasks []types.Task
	assert.NoError(t, json.Unmarshal(body, &tasks))
	assert.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestServer_TaskErrors(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{
			name:       "create without name",
			method:     http.MethodPost,
			target:     "/api/tasks",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "create with malformed body",
			method:     http.MethodPost,
			target:     "/api/tasks",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "get with malformed id",
			method:     http.MethodGet,
			target:     "/api/tasks/not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "get missing task",
			method:     http.MethodGet,
			target:     "/api/tasks/0198f3f0-0000-7000-8000-000000000000",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "update missing task",
			method:     http.MethodPatch,
			target:     "/api/tasks/0198f3f0-0000-7000-8000-000000000000",
			body:       `{"status":"running"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "update with out-of-range progress",
			method:     http.MethodPatch,
			target:     "/api/tasks/0198f3f0-0000-7000-8000-000000000000",
			body:       `{"progress":101}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "list with bad limit",
			method:     http.MethodGet,
			target:     "/api/tasks?limit=abc",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := doJSON(t, srv, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, res.StatusCode)

			var apiErr map[string]any
			assert.NoError(t, json.Unmarshal(body, &apiErr))
			assert.NotEmpty(t, apiErr["message"])
		})
	}
}

func TestServer_Chat(t *testing.T) {
	srv := newTestServer()

	// Empty history is valid input.
	res, body := doJSON(t, srv, http.MethodPost, "/api/chat", `{"history":[]}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response types.ChatResponse
	assert.NoError(t, json.Unmarshal(body, &response))
	assert.False(t, response.ReadyForTask)
	assert.Equal(t, types.ChatRoleAssistant, response.Message.Role)
	assert.Len(t, response.Message.QuickActions, 3)

	res, body = doJSON(t, srv, http.MethodPost, "/api/chat",
		`{"history":[{"role":"user","content":"ok I'm ready"}]}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NoError(t, json.Unmarshal(body, &response))
	assert.True(t, response.ReadyForTask)
}

func TestServer_Healthcheck(t *testing.T) {
	srv := newTestServer()

	res, _ := doJSON(t, srv, http.MethodGet, "/livez", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = doJSON(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
