package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/config"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/api/handler"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/api/middleware"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/service"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

func setupTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.Server.CORS.AllowOrigins = []string{"http://localhost:5173"}
	h := handler.NewHandler(&service.Service{})
	return Setup(cfg, h, nil, zap.NewNop())
}

func TestHealth(t *testing.T) {
	r := setupTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestAPIRequiresActor(t *testing.T) {
	r := setupTestRouter()
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/jobs/j1/slots"},
		{http.MethodPost, "/api/v1/jobs/j1/slots/generate"},
		{http.MethodPut, "/api/v1/slots/s1/adjust"},
		{http.MethodPost, "/api/v1/drafting/generate"},
		{http.MethodPut, "/api/v1/jobs/j1/programme"},
		{http.MethodGet, "/api/v1/holidays"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestRoutesRegistered(t *testing.T) {
	cfg := &config.Config{}
	r := Setup(cfg, handler.NewHandler(&service.Service{}), nil, zap.NewNop())

	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}

	want := []string{
		"POST /api/v1/jobs/:id/slots/generate",
		"GET /api/v1/jobs/:id/slots",
		"GET /api/v1/jobs/:id/slots/export",
		"GET /api/v1/jobs/:id/level-coverage",
		"GET /api/v1/jobs/:id/drafting",
		"GET /api/v1/jobs/:id/programme",
		"PUT /api/v1/jobs/:id/programme",
		"PUT /api/v1/jobs/:id/programme/reorder",
		"POST /api/v1/jobs/:id/programme/:entryId/split",
		"DELETE /api/v1/jobs/:id/programme/:entryId",
		"PUT /api/v1/slots/:id/adjust",
		"POST /api/v1/slots/:id/book",
		"POST /api/v1/slots/:id/complete",
		"DELETE /api/v1/slots/:id",
		"GET /api/v1/slots/:id/adjustments",
		"POST /api/v1/drafting/generate",
		"PUT /api/v1/drafting/:id/assign",
		"GET /api/v1/holidays",
		"POST /api/v1/holidays",
		"POST /api/v1/holidays/import",
		"DELETE /api/v1/holidays/:id",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route not registered: %s", route)
		}
	}
}

func TestBodyLimitPerRoute(t *testing.T) {
	r := setupTestRouter()
	tests := []struct {
		path     string
		size     int64
		wantCode int
		details  string
	}{
		{"/api/v1/jobs/j1/programme", programmeBodyLimit + 1, codeProgrammeTooLarge, "请求体上限 1MB"},
		{"/api/v1/holidays/import", icsUploadLimit + 1, codeICSTooLarge, "请求体上限 5MB"},
	}
	for _, tt := range tests {
		method := http.MethodPut
		if tt.path == "/api/v1/holidays/import" {
			method = http.MethodPost
		}
		req := httptest.NewRequest(method, tt.path, strings.NewReader("{}"))
		req.ContentLength = tt.size
		req.Header.Set(middleware.ActorHeader, "planner-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("%s: expected 413, got %d", tt.path, w.Code)
			continue
		}
		var resp response.Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Code != tt.wantCode || resp.Details != tt.details {
			t.Errorf("%s: unexpected payload %+v", tt.path, resp)
		}
	}
}
