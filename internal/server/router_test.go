package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vscode-status-server/internal/hub"
	"vscode-status-server/internal/service"
	"vscode-status-server/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := hub.New()
	svc := service.New(store.NewMemoryStore(), h, 10*time.Minute)
	return NewRouter(Deps{
		Service: svc,
		Hub:     h,
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if decode(t, w)["message"] != "OK" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestFullUserLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register-user", "tok", map[string]any{"userId": "alice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if decode(t, w)["message"] != "User registered successfully" {
		t.Fatalf("register: unexpected body: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/update-status", "tok", map[string]any{
		"userId": "alice", "language": "python", "fileName": "main.py",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/get-status?userId=alice", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	status, ok := body["status"].(map[string]any)
	if !ok {
		t.Fatalf("get: missing status object: %s", w.Body.String())
	}
	if status["language"] != "python" || status["fileName"] != "main.py" {
		t.Fatalf("get: unexpected status: %v", status)
	}
	if body["last_updated"] == nil {
		t.Fatalf("get: expected last_updated: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/check-if-user-exists?userId=alice", "", nil)
	if w.Code != http.StatusOK || decode(t, w)["exists"] != true {
		t.Fatalf("exists: unexpected response %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, "/delete-user", "tok", map[string]any{"userId": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/get-status?userId=alice", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register-user", "tok", map[string]any{"userId": "bob"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/register-user", "other", map[string]any{"userId": "bob"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if decode(t, w)["error"] != "User already exists" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRegisterWithoutToken(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register-user", "", map[string]any{"userId": "bob"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateWrongToken(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register-user", "tok", map[string]any{"userId": "bob"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/update-status", "wrong", map[string]any{
		"userId": "bob", "language": "go",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	if decode(t, w)["error"] != "Authentication failed: Invalid user ID or token" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestUpdateUnregisteredUser(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/update-status", "tok", map[string]any{
		"userId": "ghost", "language": "go",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
	if decode(t, w)["error"] != "User not found: Please register first before updating status" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetStatusRequiresUserID(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/get-status", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if decode(t, w)["error"] != "`userId` URL parameter is required" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestExistsUnknownUser(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/check-if-user-exists?userId=nobody", "", nil)
	if w.Code != http.StatusNotFound || decode(t, w)["exists"] != false {
		t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
	}
}

func TestGetStatusMinimalShapeBeforeFirstUpdate(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register-user", "tok", map[string]any{"userId": "carol"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/get-status?userId=carol", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["user_id"] != "carol" {
		t.Fatalf("expected user_id, got %s", w.Body.String())
	}
	if _, present := body["last_updated"]; present {
		t.Fatalf("expected no last_updated before first update: %s", w.Body.String())
	}
	if status, ok := body["status"].(map[string]any); !ok || len(status) != 0 {
		t.Fatalf("expected empty status object: %s", w.Body.String())
	}
}

func TestLanguageIconEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/language-icon?language=go", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	iconURL, _ := decode(t, w)["icon_url"].(string)
	if iconURL == "" {
		t.Fatalf("expected icon_url: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/language-icon", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without parameters, got %d", w.Code)
	}
}

func TestRateLimitedProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := hub.New()
	svc := service.New(store.NewMemoryStore(), h, 10*time.Minute)
	r := NewRouter(Deps{
		Service:      svc,
		Hub:          h,
		RateLimiting: true,
	})

	w := doJSON(t, r, http.MethodGet, "/trigger-rate-limit", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on first probe, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/trigger-rate-limit", "", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second probe, got %d: %s", w.Code, w.Body.String())
	}
}
