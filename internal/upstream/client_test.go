package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fiu-sentinel/console/internal/config"
	"github.com/fiu-sentinel/console/internal/models"
	"github.com/fiu-sentinel/console/internal/session"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *session.Manager) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewManager(session.NewMemoryStore(), zap.NewNop())
	cfg := config.UpstreamConfig{
		SentinelBaseURL: srv.URL,
		Timeout:         5,
	}
	return NewClient(cfg, sessions, zap.NewNop()), sessions
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	client, sessions := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))

	ctx := context.Background()
	require.NoError(t, sessions.Login(ctx, "tok-123", models.AuthUser{UserID: "op", Username: "op"}))

	_, err := client.ListTenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoBearerWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))

	_, err := client.ListTenants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedResponseInvalidatesSession(t *testing.T) {
	client, sessions := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	ctx := context.Background()
	require.NoError(t, sessions.Login(ctx, "expired", models.AuthUser{UserID: "op", Username: "op"}))
	require.True(t, sessions.IsAuthenticated())

	_, err := client.ListTenants(ctx)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.False(t, sessions.IsAuthenticated())
}

func TestLoginReturnsToken(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"issued-token"}`))
	}))

	token, err := client.Login(context.Background(), models.LoginRequest{UserID: "op", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
}

func TestLoginWithoutTokenFails(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))

	_, err := client.Login(context.Background(), models.LoginRequest{UserID: "op", Password: "pw"})
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestListTenantsAcceptsEnvelope(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tenants":[{"id":"t-1","tenantId":"acme","status":"active","createdAt":"2023-06-01","processCount":4,"country":"USA","description":"Acme Corp"}]}`))
	}))

	tenants, err := client.ListTenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "t-1", tenants[0].ID)
	assert.Equal(t, "acme", tenants[0].Name)
	assert.Equal(t, models.TenantStatusActive, tenants[0].Status)
	assert.Equal(t, "USA", tenants[0].Country)
}

func TestListTenantsSynthesizesMissingFields(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"tenantId":"first","fiuId":"FIU-001"},{"tenantId":"second","fiuId":"FIU-002"}]`))
	}))

	tenants, err := client.ListTenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 2)

	first := tenants[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "first", first.Name)
	assert.Equal(t, "Tenant for FIU-001", first.Description)
	assert.Equal(t, models.TenantStatusActive, first.Status)
	assert.Equal(t, "2023-01-15", first.CreatedAt)
	assert.Equal(t, "India", first.Country)
	assert.GreaterOrEqual(t, first.ProcessCount, 1)
	assert.LessOrEqual(t, first.ProcessCount, 5)

	second := tenants[1]
	assert.Equal(t, "2", second.ID)
	assert.Equal(t, models.TenantStatusInactive, second.Status)
}

func TestCreateTenantShapesResponse(t *testing.T) {
	client, sessions := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"tenant-9"}`))
	}))

	ctx := context.Background()
	require.NoError(t, sessions.Login(ctx, "tok", models.AuthUser{UserID: "op", Username: "op"}))

	tenant, err := client.CreateTenant(ctx, models.FiuRequest{
		TenantID: "acme", Password: "secret", FiuID: "FIU-042",
	})
	require.NoError(t, err)
	assert.Equal(t, "tenant-9", tenant.ID)
	assert.Equal(t, "acme", tenant.Name)
	assert.Equal(t, "Tenant for FIU-042", tenant.Description)
	assert.Equal(t, models.TenantStatusActive, tenant.Status)
}

func TestCreateTenantSynthesizesID(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	tenant, err := client.CreateTenant(context.Background(), models.FiuRequest{
		TenantID: "acme", Password: "secret", FiuID: "FIU-042",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tenant.ID)
	assert.Contains(t, tenant.ID, "tenant-")
}

func TestGetTriggerDetailQueryParams(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/triggers/t1", r.URL.Path)
		assert.Equal(t, "u2", r.URL.Query().Get("userId"))
		assert.Equal(t, "r1", r.URL.Query().Get("sessionId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"t1","name":"Large Cash Transaction"}`))
	}))

	detail, err := client.GetTriggerDetail(context.Background(), "t1", "u2", "r1")
	require.NoError(t, err)
	assert.Equal(t, "t1", detail.ID)
}

func TestUploadProcessSynthesizesProcess(t *testing.T) {
	client, sessions := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "1", r.FormValue("tenantId"))
		assert.Equal(t, "0 0 0 * * ?", r.FormValue("freq"))
		_, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, "accounts.csv", header.Filename)
		}
		w.WriteHeader(http.StatusOK)
	}))

	ctx := context.Background()
	require.NoError(t, sessions.Login(ctx, "tok", models.AuthUser{UserID: "op", Username: "op"}))

	process, err := client.UploadProcess(ctx, models.ProcessUpload{
		TenantID:    "1",
		StartsOn:    "2024-02-01",
		EndsOn:      "2024-08-01",
		Schedule:    "0 0 0 * * ?",
		ProductName: "EWS",
		GroupName:   "Screening",
		FileName:    "accounts.csv",
	}, strings.NewReader("account_id,name\n1,acme\n"))
	require.NoError(t, err)

	assert.NotEmpty(t, process.ID)
	assert.Equal(t, "EWS - Screening", process.Name)
	assert.Equal(t, "1", process.TenantID)
	assert.Equal(t, models.ProcessStatusRunning, process.Status)
	assert.Equal(t, "Screening", process.Category)
}
