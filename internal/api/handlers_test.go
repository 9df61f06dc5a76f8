package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"drivemeta/internal/api"
	"drivemeta/internal/app"
	"drivemeta/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newDriveStub serves a minimal files.list surface: one root folder holding
// two files.
func newDriveStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		var files []map[string]any
		if strings.Contains(q, "'root' in parents") {
			files = []map[string]any{
				{"id": "f1", "name": "a.txt", "mimeType": "text/plain", "size": "10"},
				{"id": "f2", "name": "b.txt", "mimeType": "text/plain", "size": "20"},
			}
		} else {
			// Authentication probe and flat listings.
			files = []map[string]any{
				{"id": "f1", "name": "a.txt", "mimeType": "text/plain", "size": "10"},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"files": files})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	base := t.TempDir()

	tokenPath := filepath.Join(base, "token")
	if err := os.WriteFile(tokenPath, []byte("test-token\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig(base)
	cfg.Drive.Endpoint = newDriveStub(t).URL
	cfg.Drive.TokenPath = tokenPath
	cfg.Store.Type = "memory"
	cfg.Sink.Type = "memory"
	cfg.Extract.Formats = []string{"json"}

	a, err := app.NewApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })

	return api.NewEngine(a)
}

func doRequest(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAPI_Health(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(engine, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAPI_ProgressIdle(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(engine, http.MethodGet, "/api/progress", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "idle" {
		t.Errorf("status = %v, want idle", body["status"])
	}
}

func TestAPI_ControlConflicts(t *testing.T) {
	engine := newTestEngine(t)

	for _, path := range []string{"/api/pause", "/api/resume", "/api/stop"} {
		w := doRequest(engine, http.MethodPost, path, "")
		if w.Code != http.StatusConflict {
			t.Errorf("POST %s on idle: status = %d, want 409", path, w.Code)
		}
	}

	w := doRequest(engine, http.MethodGet, "/api/results", "")
	if w.Code != http.StatusConflict {
		t.Errorf("GET /api/results on idle: status = %d, want 409", w.Code)
	}
}

func TestAPI_ExtractBadBody(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(engine, http.MethodPost, "/api/extract", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAPI_RunsEmpty(t *testing.T) {
	engine := newTestEngine(t)
	w := doRequest(engine, http.MethodGet, "/api/runs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Count != 0 {
		t.Errorf("count = %d, want 0", body.Count)
	}
}

func TestAPI_ExtractFlow(t *testing.T) {
	engine := newTestEngine(t)

	w := doRequest(engine, http.MethodPost, "/api/extract", `{"folder": "root"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("POST /api/extract: status = %d, body = %s", w.Code, w.Body.String())
	}

	var started struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if started.JobID == "" {
		t.Fatal("no job_id in response")
	}

	// Poll until the job reaches a terminal state.
	deadline := time.Now().Add(5 * time.Second)
	var status string
	for time.Now().Before(deadline) {
		w = doRequest(engine, http.MethodGet, "/api/progress", "")
		var progress struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &progress); err != nil {
			t.Fatalf("decoding progress: %v", err)
		}
		status = progress.Status
		if status == "completed" || status == "error" || status == "stopped" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status != "completed" {
		t.Fatalf("job ended in %q, want completed (body: %s)", status, w.Body.String())
	}

	w = doRequest(engine, http.MethodGet, "/api/results", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/results: status = %d", w.Code)
	}
	var results struct {
		FileCount   int    `json:"file_count"`
		Fingerprint string `json:"forensic_hash_sha256"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decoding results: %v", err)
	}
	if results.FileCount != 2 {
		t.Errorf("file_count = %d, want 2", results.FileCount)
	}
	if len(results.Fingerprint) != 64 {
		t.Errorf("fingerprint = %q, want 64 hex chars", results.Fingerprint)
	}

	w = doRequest(engine, http.MethodGet, "/api/runs", "")
	var runs struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decoding runs: %v", err)
	}
	if runs.Count != 1 {
		t.Errorf("runs count = %d, want 1", runs.Count)
	}
}
