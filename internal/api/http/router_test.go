package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/api/http/handlers"
	"github.com/spec-kit/haf/internal/auth"
	"github.com/spec-kit/haf/internal/config"
	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/observability"
	"github.com/spec-kit/haf/internal/repository"
	"github.com/spec-kit/haf/internal/service"
	"github.com/spec-kit/haf/internal/settings"
	"github.com/spec-kit/haf/internal/ticketlog"
	"github.com/spec-kit/haf/internal/worker"
)

const (
	operatorEmail    = "ops@example.com"
	operatorPassword = "secret-pass"
	portalPassword   = "ms-password"
)

type fakeWorker struct {
	templates repository.TemplateRepository
	busy      bool
	submitted []domain.CallRecord
}

func (f *fakeWorker) Submit(ctx context.Context, call domain.CallRecord) (string, error) {
	tmpl, err := f.templates.Get(ctx, call.CallType)
	var found *domain.Template
	if err == nil {
		found = &tmpl
	}
	if err := domain.ValidateCall(call, found); err != nil {
		return "", err
	}
	if f.busy {
		return "", service.ErrBusy
	}
	f.submitted = append(f.submitted, call)
	return "run-1", nil
}

func (f *fakeWorker) Status() worker.Status {
	if f.busy {
		return worker.Status{RunID: "run-0", State: worker.StateRunning}
	}
	return worker.Status{State: worker.StateIdle}
}

type noEntries struct{}

func (noEntries) LastEntry(ctx context.Context) (domain.LogEntry, error) {
	return domain.LogEntry{}, ticketlog.ErrNoPriorEntry
}

type testServer struct {
	app    *fiber.App
	worker *fakeWorker
	store  *settings.Store
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	dir := t.TempDir()

	store := settings.NewStore(filepath.Join(dir, "config.ini"))
	if err := store.UpdateCredentials(operatorEmail, portalPassword); err != nil {
		t.Fatalf("UpdateCredentials() failed: %v", err)
	}
	dictPath := filepath.Join(dir, "dictionary.json")
	dict := `{"mfa": {"Title": "MFA", "Body": "reset", "Process-Type": "open", "Type": "mfa", "Needs_Hostname": false, "Needs_Variable": false}}`
	if err := os.WriteFile(dictPath, []byte(dict), 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	templates := repository.NewTemplateRepository(dictPath)

	authService := service.NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}, store)
	if err := authService.SetPassword(context.Background(), operatorPassword); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	fw := &fakeWorker{templates: templates}

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("haf", "test", store, templates, nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Templates:      handlers.NewTemplatesHandler(templates),
		Calls:          handlers.NewCallsHandler(fw, nil),
		Logs:           handlers.NewLogsHandler(noEntries{}, nil),
		Settings:       handlers.NewSettingsHandler(store),
		Metrics:        handlers.NewMetricsHandler(observability.NewMetrics()),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store),
	})
	return testServer{app: app, worker: fw, store: store}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s returned non-JSON body %q", method, path, raw)
		}
	}
	return resp.StatusCode, out
}

func (s testServer) login(t *testing.T) string {
	t.Helper()
	status, body := s.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{"email": operatorEmail, "password": operatorPassword})
	if status != nethttp.StatusOK {
		t.Fatalf("login returned %d: %v", status, body)
	}
	return body["data"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	if status, _ := s.do(t, nethttp.MethodGet, "/health/live", "", nil); status != nethttp.StatusOK {
		t.Errorf("live returned %d", status)
	}
	status, body := s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	if status != nethttp.StatusOK {
		t.Fatalf("ready returned %d: %v", status, body)
	}
	deps := body["dependencies"].(map[string]any)
	if _, ok := deps["postgres"]; ok {
		t.Error("unconfigured postgres should not be checked")
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{"email": operatorEmail, "password": "wrong"})
	if status != nethttp.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Errorf("expected 401 UNAUTHORIZED, got %d %v", status, body)
	}
	status, _ = s.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{"email": ""})
	if status != nethttp.StatusBadRequest {
		t.Errorf("expected 400 for missing fields, got %d", status)
	}
	if token := s.login(t); token == "" {
		t.Error("expected a token")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/templates", "/calls/current", "/logs/last", "/settings", "/metrics"} {
		status, body := s.do(t, nethttp.MethodGet, path, "", nil)
		if status != nethttp.StatusUnauthorized {
			t.Errorf("GET %s without token returned %d: %v", path, status, body)
		}
	}
	status, _ := s.do(t, nethttp.MethodGet, "/templates", "not-a-jwt", nil)
	if status != nethttp.StatusUnauthorized {
		t.Errorf("expected 401 for a malformed token, got %d", status)
	}
}

func TestTemplates(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	status, body := s.do(t, nethttp.MethodGet, "/templates", token, nil)
	if status != nethttp.StatusOK {
		t.Fatalf("list returned %d: %v", status, body)
	}
	if items := body["data"].([]any); len(items) != 1 {
		t.Errorf("expected 1 template, got %v", items)
	}

	status, body = s.do(t, nethttp.MethodGet, "/templates/missing", token, nil)
	if status != nethttp.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Errorf("expected 404 NOT_FOUND, got %d %v", status, body)
	}

	status, body = s.do(t, nethttp.MethodPut, "/templates/bad", token, map[string]any{"title": "t", "body": "b", "process_type": "close", "flow": "ticket"})
	if status != nethttp.StatusBadRequest {
		t.Errorf("expected 400 for close template without answers, got %d %v", status, body)
	}
	status, body = s.do(t, nethttp.MethodPut, "/templates/net", token, map[string]any{"title": "t", "body": "b", "process_type": "escalate", "flow": "ticket", "team": "NET"})
	if status != nethttp.StatusOK {
		t.Errorf("upsert returned %d: %v", status, body)
	}
	if status, _ := s.do(t, nethttp.MethodPost, "/templates/sort", token, nil); status != nethttp.StatusNoContent {
		t.Errorf("sort returned %d", status)
	}
}

func TestSubmitCall(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	call := map[string]any{"user_id": "U123456789", "contact": "11987654321", "call_type": "mfa"}

	status, body := s.do(t, nethttp.MethodPost, "/calls", token, call)
	if status != nethttp.StatusAccepted {
		t.Fatalf("expected 202, got %d %v", status, body)
	}
	if got := body["data"].(map[string]any)["run_id"]; got != "run-1" {
		t.Errorf("unexpected run id %v", got)
	}

	s.worker.busy = true
	status, body = s.do(t, nethttp.MethodPost, "/calls", token, call)
	if status != nethttp.StatusConflict || errorCode(body) != "CONFLICT" {
		t.Errorf("expected 409 CONFLICT while busy, got %d %v", status, body)
	}

	status, body = s.do(t, nethttp.MethodGet, "/calls/current", token, nil)
	if status != nethttp.StatusOK || body["data"].(map[string]any)["state"] != "running" {
		t.Errorf("unexpected status %d %v", status, body)
	}
}

func TestSubmitInvalidCall(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	status, body := s.do(t, nethttp.MethodPost, "/calls", token, map[string]any{"user_id": "short", "contact": "12", "call_type": "mfa"})
	if status != nethttp.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Fatalf("expected 400 VALIDATION_FAILED, got %d %v", status, body)
	}
	details := body["error"].(map[string]any)["details"].(map[string]any)
	if _, ok := details["user_id"]; !ok {
		t.Errorf("expected user_id detail, got %v", details)
	}
	if len(s.worker.submitted) != 0 {
		t.Error("invalid call reached the worker")
	}
}

func TestLastLogWithoutEntries(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, nethttp.MethodGet, "/logs/last", s.login(t), nil)
	if status != nethttp.StatusNotFound || errorCode(body) != "ERROR_03" {
		t.Errorf("expected 404 ERROR_03, got %d %v", status, body)
	}
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	status, body := s.do(t, nethttp.MethodGet, "/settings", token, nil)
	if status != nethttp.StatusOK {
		t.Fatalf("settings returned %d", status)
	}
	raw, _ := json.Marshal(body)
	if strings.Contains(string(raw), portalPassword) || strings.Contains(string(raw), "$2a$") {
		t.Error("settings response leaked a password")
	}
	if body["data"].(map[string]any)["api_password_set"] != true {
		t.Errorf("expected api_password_set, got %v", body)
	}
	if body["data"].(map[string]any)["password_set"] != true {
		t.Errorf("expected password_set, got %v", body)
	}

	status, _ = s.do(t, nethttp.MethodPut, "/settings/language", token, map[string]string{"language": "fr-FR"})
	if status != nethttp.StatusBadRequest {
		t.Errorf("expected 400 for unknown language, got %d", status)
	}
	status, body = s.do(t, nethttp.MethodPut, "/settings/language", token, map[string]string{"language": "pt-BR"})
	if status != nethttp.StatusOK || body["data"].(map[string]any)["language"] != "pt-BR" {
		t.Errorf("unexpected language update %d %v", status, body)
	}
}

func TestTokenRejectedAfterOperatorChange(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	status, _ := s.do(t, nethttp.MethodPut, "/settings/credentials", token, map[string]string{"email": "new@example.com", "password": "other"})
	if status != nethttp.StatusOK {
		t.Fatalf("credentials update returned %d", status)
	}
	status, _ = s.do(t, nethttp.MethodGet, "/settings", token, nil)
	if status != nethttp.StatusUnauthorized {
		t.Errorf("expected old token to be rejected, got %d", status)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/health/live", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	req = httptest.NewRequest(nethttp.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected caller request id to be kept, got %q", got)
	}
}
