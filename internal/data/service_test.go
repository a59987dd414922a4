package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fiu-sentinel/console/internal/auth"
	"github.com/fiu-sentinel/console/internal/config"
	"github.com/fiu-sentinel/console/internal/fixtures"
	"github.com/fiu-sentinel/console/internal/metrics"
	"github.com/fiu-sentinel/console/internal/models"
	"github.com/fiu-sentinel/console/internal/session"
	"github.com/fiu-sentinel/console/internal/upstream"
)

// unreachableURL points at a port nothing listens on so upstream calls fail
// fast with a connection error.
const unreachableURL = "http://127.0.0.1:1"

func testConfig(upstreamURL string) *config.Config {
	return &config.Config{
		Environment: "test",
		Upstream: config.UpstreamConfig{
			SentinelBaseURL: upstreamURL,
			RulesBaseURL:    upstreamURL,
			UploadPath:      "/api/v1/ews/consents/upload",
			Timeout:         2,
			CacheTTL:        30,
		},
		Demo: config.DemoConfig{
			Enabled:       true,
			JWTSecret:     "test-secret",
			TokenDuration: 60,
			Issuer:        "test",
		},
		Fixtures: config.FixturesConfig{Seed: 42, SimulateLatency: false},
	}
}

func newTestService(t *testing.T, cfg *config.Config) (*Service, *session.Manager) {
	t.Helper()

	logger := zap.NewNop()
	sessions := session.NewManager(session.NewMemoryStore(), logger)
	library := fixtures.NewLibrary()
	gen := fixtures.NewGenerator(library, cfg.Fixtures.Seed)
	client := upstream.NewClient(cfg.Upstream, sessions, logger)
	demoAuth := auth.NewService(cfg.Demo)
	collector := metrics.NewCollector(prometheus.NewRegistry())

	return NewService(cfg, client, library, gen, sessions, demoAuth, collector, logger), sessions
}

func login(t *testing.T, sessions *session.Manager) {
	t.Helper()
	require.NoError(t, sessions.Login(context.Background(), "tok",
		models.AuthUser{UserID: "op", Username: "op"}))
}

func TestUnauthenticatedReadsServeFixtures(t *testing.T) {
	// Any upstream call would fail; unauthenticated reads must not make one.
	svc, _ := newTestService(t, testConfig(unreachableURL))
	ctx := context.Background()

	tenants, err := svc.ListTenants(ctx)
	require.NoError(t, err)
	assert.Len(t, tenants, 6)

	processes, err := svc.ListProcesses(ctx)
	require.NoError(t, err)
	assert.Len(t, processes, 5)

	runs, err := svc.ListProcessRuns(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, runs, 4)
}

func TestAuthenticatedReadFallsBackOnFailure(t *testing.T) {
	svc, sessions := newTestService(t, testConfig(unreachableURL))
	login(t, sessions)

	tenants, err := svc.ListTenants(context.Background())
	require.NoError(t, err)
	assert.Len(t, tenants, 6)
}

func TestUpstreamRequiredPropagatesReadFailure(t *testing.T) {
	cfg := testConfig(unreachableURL)
	cfg.Upstream.Required = true
	svc, sessions := newTestService(t, cfg)
	login(t, sessions)

	_, err := svc.ListTenants(context.Background())

	var upstreamErr *UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
}

func TestAuthenticatedReadUsesUpstream(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"live-1","tenantId":"live","status":"active","description":"d","createdAt":"2024-01-01","processCount":2,"country":"USA"}]`))
	}))
	defer srv.Close()

	svc, sessions := newTestService(t, testConfig(srv.URL))
	login(t, sessions)
	ctx := context.Background()

	tenants, err := svc.ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "live-1", tenants[0].ID)

	// Second read is served from cache.
	_, err = svc.ListTenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWritesRequireAuthentication(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unauthenticated write must not reach upstream")
	}))
	defer srv.Close()

	svc, _ := newTestService(t, testConfig(srv.URL))
	ctx := context.Background()

	_, err := svc.CreateTenant(ctx, models.FiuRequest{TenantID: "x", Password: "p", FiuID: "f"})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	err = svc.DeleteTenant(ctx, "1")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = svc.UploadProcess(ctx, validUpload(), strings.NewReader("a,b\n"))
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestWriteFailureHasNoFixtureFallback(t *testing.T) {
	svc, sessions := newTestService(t, testConfig(unreachableURL))
	login(t, sessions)

	_, err := svc.CreateTenant(context.Background(),
		models.FiuRequest{TenantID: "x", Password: "p", FiuID: "f"})

	var upstreamErr *UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
}

func TestGetRunDetailFromFixtures(t *testing.T) {
	svc, _ := newTestService(t, testConfig(unreachableURL))
	ctx := context.Background()

	detail, err := svc.GetRunDetail(ctx, "r3")
	require.NoError(t, err)
	assert.Equal(t, "r3", detail.ID)
	assert.Equal(t, models.RunStatusFailed, detail.Status)
	require.NotEmpty(t, detail.Logs)
	assert.Equal(t, "Process encountered errors", detail.Logs[len(detail.Logs)-1])

	_, err = svc.GetRunDetail(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTriggerDetailFromFixtures(t *testing.T) {
	svc, _ := newTestService(t, testConfig(unreachableURL))
	ctx := context.Background()

	detail, err := svc.GetTriggerDetail(ctx, "t1", "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, "Large Cash Transaction", detail.Name)
	assert.NotEmpty(t, detail.RuleDefinition)

	_, err = svc.GetTriggerDetail(ctx, "missing", "u1", "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTenantAndProcessByID(t *testing.T) {
	svc, _ := newTestService(t, testConfig(unreachableURL))
	ctx := context.Background()

	tenant, err := svc.GetTenant(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "European Investment Bank", tenant.Name)

	process, err := svc.GetProcess(ctx, "p4")
	require.NoError(t, err)
	assert.Equal(t, "Sanctions Screening", process.Name)

	_, err = svc.GetTenant(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetProcess(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoginAgainstUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"issued"}`))
	}))
	defer srv.Close()

	svc, sessions := newTestService(t, testConfig(srv.URL))

	user, err := svc.Login(context.Background(), models.LoginRequest{UserID: "op-7", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "op-7", user.UserID)
	assert.True(t, sessions.IsAuthenticated())
	assert.Equal(t, "issued", sessions.Token())
}

func TestLoginRejectedUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc, sessions := newTestService(t, testConfig(srv.URL))

	_, err := svc.Login(context.Background(), models.LoginRequest{UserID: "op", Password: "bad"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.False(t, sessions.IsAuthenticated())
}

func TestLoginDemoFallbackWhenUnreachable(t *testing.T) {
	svc, sessions := newTestService(t, testConfig(unreachableURL))

	user, err := svc.Login(context.Background(), models.LoginRequest{UserID: "demo-op", Password: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "demo-op", user.UserID)
	assert.True(t, sessions.IsAuthenticated())
	assert.NotEmpty(t, sessions.Token())
}

func TestLoginDemoDisabledPropagatesFailure(t *testing.T) {
	cfg := testConfig(unreachableURL)
	cfg.Demo.Enabled = false
	svc, sessions := newTestService(t, cfg)

	_, err := svc.Login(context.Background(), models.LoginRequest{UserID: "op", Password: "pw"})

	var upstreamErr *UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
	assert.False(t, sessions.IsAuthenticated())
}

func TestLogout(t *testing.T) {
	svc, sessions := newTestService(t, testConfig(unreachableURL))
	login(t, sessions)

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, sessions.IsAuthenticated())
}

func validUpload() models.ProcessUpload {
	return models.ProcessUpload{
		TenantID:    "1",
		StartsOn:    "2024-02-01",
		EndsOn:      "2024-08-01",
		Schedule:    "0 0 0 * * ?",
		ProductName: "EWS",
		GroupName:   "Screening",
		FileName:    "accounts.csv",
		FileSize:    64,
	}
}

func TestUploadValidation(t *testing.T) {
	svc, sessions := newTestService(t, testConfig(unreachableURL))
	login(t, sessions)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.ProcessUpload)
	}{
		{"missing tenant", func(u *models.ProcessUpload) { u.TenantID = "" }},
		{"missing window", func(u *models.ProcessUpload) { u.EndsOn = "" }},
		{"missing product", func(u *models.ProcessUpload) { u.ProductName = "" }},
		{"non-csv file", func(u *models.ProcessUpload) { u.FileName = "accounts.xlsx" }},
		{"five-field schedule", func(u *models.ProcessUpload) { u.Schedule = "0 0 * * *" }},
		{"garbage schedule", func(u *models.ProcessUpload) { u.Schedule = "whenever" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := validUpload()
			tt.mutate(&up)
			_, err := svc.UploadProcess(ctx, up, strings.NewReader("a,b\n"))
			assert.ErrorIs(t, err, ErrInvalidUpload)
		})
	}
}

func TestUploadDemoFallbackWhenUnreachable(t *testing.T) {
	svc, sessions := newTestService(t, testConfig(unreachableURL))
	login(t, sessions)

	process, err := svc.UploadProcess(context.Background(), validUpload(), strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "EWS - Screening", process.Name)
	assert.Equal(t, "1", process.TenantID)
	assert.Equal(t, models.ProcessStatusRunning, process.Status)
}

func TestUploadRejectionPropagatesInDemoMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	svc, sessions := newTestService(t, testConfig(srv.URL))
	login(t, sessions)

	_, err := svc.UploadProcess(context.Background(), validUpload(), strings.NewReader("a,b\n"))

	var upstreamErr *UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
}

func TestUploadAcceptsQuartzStyleSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc, sessions := newTestService(t, testConfig(srv.URL))
	login(t, sessions)

	process, err := svc.UploadProcess(context.Background(), validUpload(), strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "EWS - Screening", process.Name)
}
