package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/api/http/handlers"
	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/observability"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/service"
	"github.com/spec-kit/itsm-service/internal/sla"
)

type stubPinger struct {
	enabled bool
	err     error
}

func (p stubPinger) Enabled() bool              { return p.enabled }
func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app     *fiber.App
	metrics *observability.Metrics
	admin   string
}

func newTestServer(t *testing.T, deps map[string]handlers.Pinger) *testServer {
	t.Helper()

	store := repository.NewMemoryStore()
	resolver, err := access.NewResolver()
	require.NoError(t, err)

	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
		AllowSelfRegistration: true,
	}
	svc := service.NewServices(authCfg, sla.DefaultThresholds(), &persistence.MemoryAlertSnapshotStore{}, service.Dependencies{
		Store:      store,
		Access:     resolver,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	require.NoError(t, svc.Auth.EnsureBootstrapAdmin(context.Background(), "admin@example.com", "secret123"))

	metrics := observability.NewMetrics()
	app := NewServer(ServerConfig{
		Name:         "itsm-test",
		Version:      "test",
		Middleware:   MiddlewareConfig{Metrics: metrics, RequestTimeout: 5 * time.Second},
		Dependencies: deps,
		Users:        store.Repos().Users,
	}, svc)

	ts := &testServer{app: app, metrics: metrics}
	ts.admin = ts.login(t, "admin@example.com", "secret123")
	return ts
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	status, raw, _ := s.raw(t, method, path, token, body)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (s *testServer) raw(t *testing.T, method, path, token string, body any) (int, []byte, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw, resp.Header.Get("Content-Type")
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.do(t, "POST", "/api/auth/login", "", map[string]any{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, status, body)
	return data(body)["access_token"].(string)
}

func (s *testServer) create(t *testing.T, path, token string, payload map[string]any) string {
	t.Helper()
	status, body := s.do(t, "POST", path, token, payload)
	require.Equal(t, fiber.StatusCreated, status, body)
	return data(body)["id"].(string)
}

func data(body map[string]any) map[string]any {
	d, _ := body["data"].(map[string]any)
	return d
}

func items(body map[string]any) []any {
	d, _ := body["data"].([]any)
	return d
}

// seed creates two companies with a one-hour contract on acme, an open acme ticket
// and a client login bound to acme.
type seeded struct {
	acme, globex, acmeTicket, globexTicket, client string
}

func (s *testServer) seed(t *testing.T) seeded {
	t.Helper()
	var out seeded
	out.acme = s.create(t, "/api/companies", s.admin, map[string]any{"name": "Acme"})
	out.globex = s.create(t, "/api/companies", s.admin, map[string]any{"name": "Globex"})
	helpdesk := s.create(t, "/api/services", s.admin, map[string]any{"company_id": out.acme, "name": "Helpdesk"})
	s.create(t, "/api/contracts", s.admin, map[string]any{
		"company_id": out.acme,
		"service_id": helpdesk,
		"start_date": "2020-01-01",
		"sla_hours":  1,
	})
	out.acmeTicket = s.create(t, "/api/tickets", s.admin, map[string]any{
		"company_id": out.acme,
		"service_id": helpdesk,
		"title":      "Printer jammed",
		"category":   "incident",
	})
	out.globexTicket = s.create(t, "/api/tickets", s.admin, map[string]any{
		"company_id": out.globex,
		"title":      "VPN down",
	})
	s.create(t, "/api/users", s.admin, map[string]any{
		"name":       "Ann",
		"email":      "ann@acme.test",
		"password":   "secret123",
		"role":       "client",
		"company_id": out.acme,
	})
	out.client = s.login(t, "ann@acme.test", "secret123")
	return out
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, map[string]handlers.Pinger{
		"postgres": stubPinger{},
		"redis":    stubPinger{enabled: true},
	})

	status, body := s.do(t, "GET", "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])
	assert.Equal(t, "ok", deps["redis"])

	status, body = s.do(t, "GET", "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "requests")
}

func TestReadyFailsWhenEnabledDependencyIsDown(t *testing.T) {
	s := newTestServer(t, map[string]handlers.Pinger{
		"redis": stubPinger{enabled: true, err: errors.New("connection refused")},
	})

	status, body := s.do(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", body["code"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, "GET", "/api/tickets", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
	assert.Equal(t, "not authenticated", body["detail"])

	status, _ = s.do(t, "GET", "/api/tickets", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, "GET", "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.NotEmpty(t, body["detail"])
}

func TestRegisterAndMe(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, "POST", "/api/auth/register", "", map[string]any{
		"name": "Zed", "email": "Zed@Example.com", "password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	token := data(body)["access_token"].(string)
	assert.Equal(t, "bearer", data(body)["token_type"])

	status, body = s.do(t, "GET", "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "client", data(body)["role"])
	assert.Equal(t, "zed@example.com", data(body)["email"])
	assert.Nil(t, data(body)["company_id"])
	assert.NotContains(t, data(body), "password_hash")

	status, body = s.do(t, "POST", "/api/auth/register", "", map[string]any{
		"name": "Zed", "email": "zed@example.com", "password": "secret123",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])
}

func TestValidationErrorsListFields(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, "POST", "/api/contracts", s.admin, map[string]any{
		"company_id": "c1",
		"start_date": "01/02/2024",
		"sla_hours":  0,
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "is required", details["service_id"])
	assert.Contains(t, details, "sla_hours")
	assert.Contains(t, details, "start_date")
}

func TestClientSeesOnlyOwnCompany(t *testing.T) {
	s := newTestServer(t, nil)
	seed := s.seed(t)

	status, body := s.do(t, "GET", "/api/tickets", seed.client, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, items(body), 1)
	assert.Equal(t, seed.acmeTicket, items(body)[0].(map[string]any)["id"])
	assert.EqualValues(t, 1, body["count"])

	status, body = s.do(t, "GET", "/api/tickets?company_id="+seed.globex, seed.client, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, items(body), 1)
	assert.Equal(t, seed.acmeTicket, items(body)[0].(map[string]any)["id"])

	status, body = s.do(t, "GET", "/api/companies", seed.client, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, items(body), 1)
	assert.Equal(t, "Acme", items(body)[0].(map[string]any)["name"])

	status, body = s.do(t, "GET", "/api/tickets/"+seed.globexTicket, seed.client, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, body = s.do(t, "GET", "/api/tickets", s.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, items(body), 2)
}

func TestTicketStatusEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	seed := s.seed(t)
	path := "/api/tickets/" + seed.acmeTicket + "/status"

	status, body := s.do(t, "POST", path, seed.client, map[string]any{"status": "closed"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	for _, payload := range []map[string]any{{"status": ""}, {}} {
		status, body = s.do(t, "POST", path, seed.client, payload)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", body["code"])
	}

	status, body = s.do(t, "POST", path, s.admin, map[string]any{"status": "archived"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])

	status, body = s.do(t, "POST", path, s.admin, map[string]any{"status": ""})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])

	status, body = s.do(t, "POST", path, s.admin, map[string]any{"status": "resolved"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "resolved", data(body)["status"])
	assert.NotNil(t, data(body)["resolved_at"])

	status, body = s.do(t, "GET", "/api/tickets/"+seed.acmeTicket+"/history", s.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, items(body), 1)
	entry := items(body)[0].(map[string]any)
	assert.Equal(t, "status_change", entry["change_type"])
	assert.Equal(t, "open", entry["old_value"].(map[string]any)["status"])
	assert.Equal(t, "resolved", entry["new_value"].(map[string]any)["status"])
}

func TestNotesEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	seed := s.seed(t)
	path := "/api/tickets/" + seed.acmeTicket + "/notes"

	status, body := s.do(t, "POST", path, seed.client, map[string]any{"note": "Still broken"})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = s.do(t, "POST", path, seed.client, map[string]any{"note": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, "GET", path, s.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, items(body), 1)
	assert.Equal(t, "Still broken", items(body)[0].(map[string]any)["note"])
}

func TestSLAAlertsAreScopedAndCounted(t *testing.T) {
	s := newTestServer(t, nil)
	seed := s.seed(t)

	status, body := s.do(t, "GET", "/api/alerts/sla", s.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
	alert := items(body)[0].(map[string]any)
	assert.Equal(t, seed.acmeTicket, alert["ticket_id"])
	assert.Equal(t, "warning", alert["status"])

	status, body = s.do(t, "GET", "/api/alerts/sla/latest", seed.client, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, body = s.do(t, "POST", "/api/auth/register", "", map[string]any{
		"name": "Olly", "email": "olly@example.com", "password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, status)
	orphan := data(body)["access_token"].(string)

	status, body = s.do(t, "GET", "/api/alerts/sla", orphan, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["count"])
}

func TestReportsRenderRequestedFormat(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	status, raw, contentType := s.raw(t, "GET", "/api/reports/tickets?format=html", s.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(contentType, "text/html"))
	assert.Contains(t, string(raw), "<table>")
	assert.Contains(t, string(raw), "Printer jammed")

	status, raw, contentType = s.raw(t, "GET", "/api/reports/assets", s.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(contentType, "text/markdown"))
	assert.Contains(t, string(raw), "**Total assets:** 0")

	status, body := s.do(t, "GET", "/api/reports/tickets?format=pdf", s.admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	status, _ = s.do(t, "GET", "/api/reports/tickets?from=yesterday", s.admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSystemConfigAdminOnlyWrite(t *testing.T) {
	s := newTestServer(t, nil)
	seed := s.seed(t)

	status, body := s.do(t, "GET", "/api/system/config", seed.client, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ITSM System", data(body)["company_name"])

	status, _ = s.do(t, "PUT", "/api/system/config", seed.client, map[string]any{"company_name": "Mine"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = s.do(t, "PUT", "/api/system/config", s.admin, map[string]any{"company_name": "Helpdesk Co"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "Helpdesk Co", data(body)["company_name"])
}

func TestDashboardStats(t *testing.T) {
	s := newTestServer(t, nil)
	seed := s.seed(t)

	status, body := s.do(t, "GET", "/api/dashboard/stats", s.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := data(body)
	assert.EqualValues(t, 2, stats["tickets"].(map[string]any)["total"])
	assert.EqualValues(t, 2, stats["companies"])

	status, body = s.do(t, "GET", "/api/dashboard/stats", seed.client, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, data(body)["tickets"].(map[string]any)["total"])
}

func TestMetricsCountErrors(t *testing.T) {
	s := newTestServer(t, nil)

	s.do(t, "GET", "/api/tickets", "", nil)
	snap := s.metrics.Snapshot()
	assert.NotEmpty(t, snap.Errors)
}
