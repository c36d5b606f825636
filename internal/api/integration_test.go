//go:build integration

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/forkintheroad/fitr-admin/internal/admin"
	"github.com/forkintheroad/fitr-admin/internal/config"
	"github.com/forkintheroad/fitr-admin/internal/database"
	"github.com/forkintheroad/fitr-admin/internal/metrics"
)

const (
	testDBName    = "fitr_test"
	testJWTSecret = "integration-secret"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	ctx := context.Background()

	// Start PostgreSQL container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       testDBName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Printf("Failed to start container: %v\n", err)
		return 1
	}

	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}()

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432")

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/%s?sslmode=disable", host, port.Port(), testDBName)

	// Run migrations
	sqlDB, err := database.OpenSQL(ctx, connStr)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	migrator, err := database.NewMigrator(sqlDB, testDBName, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		fmt.Printf("Failed to create migrator: %v\n", err)
		return 1
	}
	if err := migrator.Up(); err != nil {
		fmt.Printf("Failed to run migrations: %v\n", err)
		return 1
	}
	_ = migrator.Close()

	// Connect to database
	testDB, err = database.NewPool(ctx, database.DefaultPoolConfig(connStr))
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		return 1
	}
	defer testDB.Close()

	return m.Run()
}

func newIntegrationRouter(t *testing.T) *Router {
	t.Helper()

	cfg := &config.Config{
		Environment:       "test",
		JWTSecret:         testJWTSecret,
		JWTIssuer:         "fitr-admin",
		JWTTTL:            time.Hour,
		AlertStore:        "postgres",
		SettingsStore:     "postgres",
		AlertCooldown:     time.Minute,
		AnalyticsCacheTTL: time.Minute,
	}

	router := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), &Dependencies{
		Config:         cfg,
		DB:             testDB,
		Metrics:        metrics.New(),
		Version:        "integration",
		DisableWorkers: true,
	})
	router.Setup()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = router.Shutdown(ctx)
	})

	return router
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := admin.NewJWTService(testJWTSecret, "fitr-admin", time.Hour).
		GenerateToken("user_integration", "ops@example.com", admin.RoleAdmin)
	require.NoError(t, err)
	return token
}

func call(t *testing.T, router *Router, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := router.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var payload map[string]interface{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp.StatusCode, payload
}

func TestIntegration_HealthEndpoints(t *testing.T) {
	router := newIntegrationRouter(t)

	status, payload := call(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "integration", payload["version"])

	status, payload = call(t, router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", payload["status"])

	status, _ = call(t, router, http.MethodGet, "/nonexistent", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIntegration_AlertLifecycle(t *testing.T) {
	router := newIntegrationRouter(t)
	token := adminToken(t)

	status, _ := call(t, router, http.MethodGet, "/api/admin/alerts", "", "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, payload := call(t, router, http.MethodPost, "/api/admin/alerts", token,
		`{"alertData":{"type":"cost_threshold_exceeded","severity":"high","title":"T","message":"M","metadata":{"cost":12.5}},"sendEmail":false}`)
	require.Equal(t, http.StatusOK, status, payload)
	created := payload["alert"].(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, false, created["acknowledged"])

	status, payload = call(t, router, http.MethodPut, "/api/admin/alerts", token,
		fmt.Sprintf(`{"alertId":%q,"action":"acknowledge","userId":"admin"}`, id))
	require.Equal(t, http.StatusOK, status, payload)

	status, payload = call(t, router, http.MethodPut, "/api/admin/alerts", token,
		fmt.Sprintf(`{"alertId":%q,"action":"resolve","userId":"admin"}`, id))
	require.Equal(t, http.StatusOK, status, payload)
	updated := payload["alert"].(map[string]interface{})
	assert.Equal(t, true, updated["acknowledged"])
	assert.Equal(t, true, updated["resolved"])
	assert.Equal(t, "admin", updated["resolvedBy"])

	status, payload = call(t, router, http.MethodGet, "/api/admin/alerts?type=cost_threshold_exceeded&resolved=true", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, payload["alerts"], 1)

	status, _ = call(t, router, http.MethodDelete, "/api/admin/alerts?id="+id, token, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, router, http.MethodDelete, "/api/admin/alerts?id="+id, token, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIntegration_SettingsPersist(t *testing.T) {
	router := newIntegrationRouter(t)
	token := adminToken(t)

	status, payload := call(t, router, http.MethodPut, "/api/admin/settings", token,
		`{"settings":{"alertThresholds":{"systemAlerts":{"cpuThreshold":150}}}}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "System alert thresholds must be between 0 and 100", payload["error"])

	status, _ = call(t, router, http.MethodPut, "/api/admin/settings", token,
		`{"settings":{"alertThresholds":{"systemAlerts":{"cpuThreshold":70}}}}`)
	require.Equal(t, http.StatusOK, status)

	// a fresh router reads the stored row
	status, payload = call(t, newIntegrationRouter(t), http.MethodGet, "/api/admin/settings", token, "")
	require.Equal(t, http.StatusOK, status)
	thresholds := payload["settings"].(map[string]interface{})["alertThresholds"].(map[string]interface{})
	system := thresholds["systemAlerts"].(map[string]interface{})
	assert.Equal(t, float64(70), system["cpuThreshold"])
	assert.Equal(t, float64(85), system["memoryThreshold"])

	status, _ = call(t, router, http.MethodPost, "/api/admin/settings", token, `{"confirmReset":true}`)
	require.Equal(t, http.StatusOK, status)
}

func TestIntegration_UsageAnalytics(t *testing.T) {
	ctx := context.Background()
	_, err := testDB.Exec(ctx, `
		INSERT INTO users (id) VALUES ('u_1'), ('u_2'), ('u_3'), ('u_4');
		INSERT INTO decisions (type, user_id) VALUES ('personal', 'u_1'), ('group', 'u_2'), ('personal', 'u_1');
		INSERT INTO collections (owner_id) VALUES ('u_1');
		INSERT INTO api_usage_events (provider, call_count, cost) VALUES ('google_places', 10, 0.17);
	`)
	require.NoError(t, err)

	router := newIntegrationRouter(t)

	status, payload := call(t, router, http.MethodGet, "/api/admin/analytics/usage?period=7d", "", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to fetch usage analytics", payload["error"])

	status, payload = call(t, router, http.MethodGet, "/api/admin/analytics/usage?period=bogus", adminToken(t), "")
	require.Equal(t, http.StatusOK, status, payload)

	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "7d", data["period"])

	features := data["featureUsage"].(map[string]interface{})
	assert.Equal(t, float64(2), features["restaurantSearches"])
	assert.Equal(t, float64(1), features["groupDecisions"])
	assert.Equal(t, float64(1), features["collectionsCreated"])

	behavior := data["userBehavior"].(map[string]interface{})
	assert.Equal(t, float64(4), behavior["totalUsers"])
	assert.Equal(t, float64(2), behavior["activeUsers"])
	assert.Equal(t, float64(50), behavior["engagementRate"])

	apiUsage := data["apiUsage"].(map[string]interface{})
	places := apiUsage["googlePlaces"].(map[string]interface{})
	assert.Equal(t, float64(10), places["calls"])
}

func TestIntegration_MetricsEndpoint(t *testing.T) {
	router := newIntegrationRouter(t)

	status, _ := call(t, router, http.MethodGet, "/api/admin/alerts", adminToken(t), "")
	require.Equal(t, http.StatusOK, status)

	resp, err := router.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fitr_http_requests_total")
}
