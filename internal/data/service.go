// Package data is the typed façade over the Sentinel platform. Reads try the
// upstream services when the operator is authenticated and otherwise (or on
// any upstream failure) serve the fixture data set; writes always require
// authentication and always reach the authoritative store or fail.
package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fiu-sentinel/console/internal/auth"
	"github.com/fiu-sentinel/console/internal/config"
	"github.com/fiu-sentinel/console/internal/fixtures"
	"github.com/fiu-sentinel/console/internal/metrics"
	"github.com/fiu-sentinel/console/internal/models"
	"github.com/fiu-sentinel/console/internal/session"
	"github.com/fiu-sentinel/console/internal/upstream"
)

// Operation names used for metrics and logging.
const (
	opLogin           = "login"
	opListTenants     = "list_tenants"
	opCreateTenant    = "create_tenant"
	opDeleteTenant    = "delete_tenant"
	opListProcesses   = "list_processes"
	opTenantProcesses = "list_tenant_processes"
	opListRuns        = "list_process_runs"
	opRunDetail       = "get_run_detail"
	opTriggerDetail   = "get_trigger_detail"
	opUploadProcess   = "upload_process"
)

// Simulated fixture latencies, weighted per endpoint the way real calls
// behave, so loading states stay realistic in demo mode.
const (
	latencyTenants       = 800 * time.Millisecond
	latencyProcesses     = 600 * time.Millisecond
	latencyRuns          = 500 * time.Millisecond
	latencyRunDetail     = 400 * time.Millisecond
	latencyTriggerDetail = 600 * time.Millisecond
	latencyByID          = 300 * time.Millisecond
	latencyUpload        = 2 * time.Second
)

// Cache keys for upstream list reads.
const (
	cacheKeyTenants   = "tenants"
	cacheKeyProcesses = "processes"
)

// scheduleParser accepts the 6-field cron expressions the upload endpoint
// expects (seconds minutes hours day-of-month month day-of-week).
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Service is the data access layer.
type Service struct {
	upstream *upstream.Client
	library  *fixtures.Library
	gen      *fixtures.Generator
	sessions *session.Manager
	demoAuth *auth.Service
	metrics  *metrics.Collector
	logger   *zap.Logger

	upstreamRequired bool
	simulateLatency  bool
	demoEnabled      bool

	cache *gocache.Cache

	// seq guards against a stale upstream response overwriting a fresher
	// cached one when inputs change rapidly.
	seqMu sync.Mutex
	seq   map[string]uint64
}

// NewService wires the data access layer.
func NewService(
	cfg *config.Config,
	upstreamClient *upstream.Client,
	library *fixtures.Library,
	gen *fixtures.Generator,
	sessions *session.Manager,
	demoAuth *auth.Service,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Service {
	ttl := time.Duration(cfg.Upstream.CacheTTL) * time.Second
	return &Service{
		upstream:         upstreamClient,
		library:          library,
		gen:              gen,
		sessions:         sessions,
		demoAuth:         demoAuth,
		metrics:          collector,
		logger:           logger,
		upstreamRequired: cfg.Upstream.Required,
		simulateLatency:  cfg.Fixtures.SimulateLatency,
		demoEnabled:      cfg.Demo.Enabled,
		cache:            gocache.New(ttl, 2*ttl),
		seq:              make(map[string]uint64),
	}
}

// Login authenticates the operator against the upstream auth endpoint. A 2xx
// response without a token is an authentication failure. When the endpoint
// is unreachable and demo mode is on, a locally signed token is issued so
// any credentials work.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (models.AuthUser, error) {
	user := models.AuthUser{UserID: req.UserID, Username: req.UserID}

	token, err := s.upstream.Login(ctx, req)
	if err != nil {
		if errors.Is(err, upstream.ErrNoToken) {
			return models.AuthUser{}, ErrAuthenticationFailed
		}
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return models.AuthUser{}, ErrAuthenticationFailed
		}
		if !s.demoEnabled {
			return models.AuthUser{}, &UpstreamError{Op: opLogin, Err: err}
		}
		s.logger.Warn("auth endpoint unreachable, issuing demo token",
			zap.String("user_id", req.UserID), zap.Error(err))
		token, err = s.demoAuth.GenerateToken(user)
		if err != nil {
			return models.AuthUser{}, fmt.Errorf("failed to issue demo token: %w", err)
		}
	}

	if err := s.sessions.Login(ctx, token, user); err != nil {
		return models.AuthUser{}, err
	}
	s.metrics.RecordLogin()
	return user, nil
}

// Logout destroys the operator session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Logout(ctx); err != nil {
		return err
	}
	s.metrics.RecordLogout()
	return nil
}

// ListTenants returns the tenant collection.
func (s *Service) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	s.metrics.RecordRead(opListTenants)

	if s.sessions.IsAuthenticated() {
		if cached, ok := s.cache.Get(cacheKeyTenants); ok {
			return cached.([]models.Tenant), nil
		}
		tenants, err := s.fetchTenants(ctx)
		if err == nil {
			return tenants, nil
		}
		if s.upstreamRequired {
			return nil, &UpstreamError{Op: opListTenants, Err: err}
		}
		s.logger.Warn("upstream read failed, serving fixture data",
			zap.String("operation", opListTenants), zap.Error(err))
	}

	s.metrics.RecordFallback(opListTenants)
	if err := s.simulateDelay(ctx, latencyTenants); err != nil {
		return nil, err
	}
	return s.library.Tenants(), nil
}

func (s *Service) fetchTenants(ctx context.Context) ([]models.Tenant, error) {
	seq := s.nextSeq(cacheKeyTenants)
	start := time.Now()
	tenants, err := s.upstream.ListTenants(ctx)
	s.metrics.ObserveUpstreamDuration(opListTenants, time.Since(start))
	if err != nil {
		return nil, err
	}
	if s.isLatest(cacheKeyTenants, seq) {
		s.cache.Set(cacheKeyTenants, tenants, gocache.DefaultExpiration)
	} else {
		s.metrics.RecordStaleResponse(opListTenants)
	}
	return tenants, nil
}

// GetTenant resolves one tenant by id from the current data source.
func (s *Service) GetTenant(ctx context.Context, tenantID string) (models.Tenant, error) {
	if s.sessions.IsAuthenticated() {
		tenants, err := s.ListTenants(ctx)
		if err == nil {
			for _, t := range tenants {
				if t.ID == tenantID {
					return t, nil
				}
			}
			return models.Tenant{}, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
		}
		if s.upstreamRequired {
			return models.Tenant{}, err
		}
	}

	if err := s.simulateDelay(ctx, latencyByID); err != nil {
		return models.Tenant{}, err
	}
	tenant, ok := s.library.Tenant(tenantID)
	if !ok {
		return models.Tenant{}, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}
	return tenant, nil
}

// CreateTenant registers a new tenant. Requires authentication; failures
// propagate and leave the tenant collection untouched.
func (s *Service) CreateTenant(ctx context.Context, req models.FiuRequest) (models.Tenant, error) {
	s.metrics.RecordWrite(opCreateTenant)
	if !s.sessions.IsAuthenticated() {
		return models.Tenant{}, fmt.Errorf("create tenant: %w", ErrAuthenticationRequired)
	}

	tenant, err := s.upstream.CreateTenant(ctx, req)
	if err != nil {
		s.metrics.RecordWriteError(opCreateTenant)
		s.logger.Error("tenant creation failed", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return models.Tenant{}, &UpstreamError{Op: opCreateTenant, Err: err}
	}

	s.cache.Delete(cacheKeyTenants)
	s.logger.Info("tenant created", zap.String("tenant_id", tenant.ID))
	return tenant, nil
}

// DeleteTenant removes a tenant. Requires authentication.
func (s *Service) DeleteTenant(ctx context.Context, tenantID string) error {
	s.metrics.RecordWrite(opDeleteTenant)
	if !s.sessions.IsAuthenticated() {
		return fmt.Errorf("delete tenant: %w", ErrAuthenticationRequired)
	}

	if err := s.upstream.DeleteTenant(ctx, tenantID); err != nil {
		s.metrics.RecordWriteError(opDeleteTenant)
		s.logger.Error("tenant deletion failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return &UpstreamError{Op: opDeleteTenant, Err: err}
	}

	s.cache.Delete(cacheKeyTenants)
	s.logger.Info("tenant deleted", zap.String("tenant_id", tenantID))
	return nil
}

// ListProcesses returns the full process collection.
func (s *Service) ListProcesses(ctx context.Context) ([]models.Process, error) {
	s.metrics.RecordRead(opListProcesses)

	if s.sessions.IsAuthenticated() {
		if cached, ok := s.cache.Get(cacheKeyProcesses); ok {
			return cached.([]models.Process), nil
		}
		seq := s.nextSeq(cacheKeyProcesses)
		start := time.Now()
		processes, err := s.upstream.ListProcesses(ctx)
		s.metrics.ObserveUpstreamDuration(opListProcesses, time.Since(start))
		if err == nil {
			if s.isLatest(cacheKeyProcesses, seq) {
				s.cache.Set(cacheKeyProcesses, processes, gocache.DefaultExpiration)
			} else {
				s.metrics.RecordStaleResponse(opListProcesses)
			}
			return processes, nil
		}
		if s.upstreamRequired {
			return nil, &UpstreamError{Op: opListProcesses, Err: err}
		}
		s.logger.Warn("upstream read failed, serving fixture data",
			zap.String("operation", opListProcesses), zap.Error(err))
	}

	s.metrics.RecordFallback(opListProcesses)
	if err := s.simulateDelay(ctx, latencyProcesses); err != nil {
		return nil, err
	}
	return s.library.Processes(), nil
}

// ListTenantProcesses returns the processes owned by one tenant.
func (s *Service) ListTenantProcesses(ctx context.Context, tenantID string) ([]models.Process, error) {
	s.metrics.RecordRead(opTenantProcesses)

	if s.sessions.IsAuthenticated() {
		key := cacheKeyProcesses + ":" + tenantID
		if cached, ok := s.cache.Get(key); ok {
			return cached.([]models.Process), nil
		}
		seq := s.nextSeq(key)
		start := time.Now()
		processes, err := s.upstream.ListTenantProcesses(ctx, tenantID)
		s.metrics.ObserveUpstreamDuration(opTenantProcesses, time.Since(start))
		if err == nil {
			if s.isLatest(key, seq) {
				s.cache.Set(key, processes, gocache.DefaultExpiration)
			} else {
				s.metrics.RecordStaleResponse(opTenantProcesses)
			}
			return processes, nil
		}
		if s.upstreamRequired {
			return nil, &UpstreamError{Op: opTenantProcesses, Err: err}
		}
		s.logger.Warn("upstream read failed, serving fixture data",
			zap.String("operation", opTenantProcesses), zap.Error(err))
	}

	s.metrics.RecordFallback(opTenantProcesses)
	if err := s.simulateDelay(ctx, latencyProcesses); err != nil {
		return nil, err
	}
	return s.library.TenantProcesses(tenantID), nil
}

// GetProcess resolves one process by id from the current data source.
func (s *Service) GetProcess(ctx context.Context, processID string) (models.Process, error) {
	if s.sessions.IsAuthenticated() {
		processes, err := s.ListProcesses(ctx)
		if err == nil {
			for _, p := range processes {
				if p.ID == processID {
					return p, nil
				}
			}
			return models.Process{}, fmt.Errorf("process %s: %w", processID, ErrNotFound)
		}
		if s.upstreamRequired {
			return models.Process{}, err
		}
	}

	if err := s.simulateDelay(ctx, latencyByID); err != nil {
		return models.Process{}, err
	}
	process, ok := s.library.Process(processID)
	if !ok {
		return models.Process{}, fmt.Errorf("process %s: %w", processID, ErrNotFound)
	}
	return process, nil
}

// ListProcessRuns returns the run history for one process. Unknown process
// ids yield an empty history.
func (s *Service) ListProcessRuns(ctx context.Context, processID string) ([]models.ProcessRun, error) {
	s.metrics.RecordRead(opListRuns)

	if s.sessions.IsAuthenticated() {
		start := time.Now()
		runs, err := s.upstream.ListProcessRuns(ctx, processID)
		s.metrics.ObserveUpstreamDuration(opListRuns, time.Since(start))
		if err == nil {
			return runs, nil
		}
		if s.upstreamRequired {
			return nil, &UpstreamError{Op: opListRuns, Err: err}
		}
		s.logger.Warn("upstream read failed, serving fixture data",
			zap.String("operation", opListRuns), zap.Error(err))
	}

	s.metrics.RecordFallback(opListRuns)
	if err := s.simulateDelay(ctx, latencyRuns); err != nil {
		return nil, err
	}
	return s.library.ProcessRuns(processID), nil
}

// GetRunDetail lazily materializes one run's detail record.
func (s *Service) GetRunDetail(ctx context.Context, runID string) (models.ProcessRunDetail, error) {
	s.metrics.RecordRead(opRunDetail)

	if s.sessions.IsAuthenticated() {
		start := time.Now()
		detail, err := s.upstream.GetRunDetail(ctx, runID)
		s.metrics.ObserveUpstreamDuration(opRunDetail, time.Since(start))
		if err == nil {
			return detail, nil
		}
		if s.upstreamRequired {
			return models.ProcessRunDetail{}, &UpstreamError{Op: opRunDetail, Err: err}
		}
		s.logger.Warn("upstream read failed, serving fixture data",
			zap.String("operation", opRunDetail), zap.Error(err))
	}

	s.metrics.RecordFallback(opRunDetail)
	if err := s.simulateDelay(ctx, latencyRunDetail); err != nil {
		return models.ProcessRunDetail{}, err
	}
	run, ok := s.library.FindRun(runID)
	if !ok {
		return models.ProcessRunDetail{}, fmt.Errorf("process run %s: %w", runID, ErrNotFound)
	}
	return s.gen.RunDetail(run), nil
}

// GetTriggerDetail resolves one trigger's detail scoped to a user and run.
func (s *Service) GetTriggerDetail(ctx context.Context, triggerID, userID, sessionID string) (models.TriggerDetail, error) {
	s.metrics.RecordRead(opTriggerDetail)

	if s.sessions.IsAuthenticated() {
		start := time.Now()
		detail, err := s.upstream.GetTriggerDetail(ctx, triggerID, userID, sessionID)
		s.metrics.ObserveUpstreamDuration(opTriggerDetail, time.Since(start))
		if err == nil {
			return detail, nil
		}
		if s.upstreamRequired {
			return models.TriggerDetail{}, &UpstreamError{Op: opTriggerDetail, Err: err}
		}
		s.logger.Warn("upstream read failed, serving fixture data",
			zap.String("operation", opTriggerDetail), zap.Error(err))
	}

	s.metrics.RecordFallback(opTriggerDetail)
	if err := s.simulateDelay(ctx, latencyTriggerDetail); err != nil {
		return models.TriggerDetail{}, err
	}
	trigger, ok := s.library.Trigger(triggerID)
	if !ok {
		return models.TriggerDetail{}, fmt.Errorf("trigger %s: %w", triggerID, ErrNotFound)
	}
	return s.gen.TriggerDetail(trigger), nil
}

// UploadProcess validates and submits a new process registration. Requires
// authentication; failures propagate.
func (s *Service) UploadProcess(ctx context.Context, up models.ProcessUpload, file io.Reader) (models.Process, error) {
	s.metrics.RecordWrite(opUploadProcess)
	if !s.sessions.IsAuthenticated() {
		return models.Process{}, fmt.Errorf("upload process: %w", ErrAuthenticationRequired)
	}

	if err := validateUpload(up); err != nil {
		s.metrics.RecordWriteError(opUploadProcess)
		return models.Process{}, err
	}

	process, err := s.upstream.UploadProcess(ctx, up, file)
	if err != nil {
		// A rejected upload always propagates. An unreachable upload endpoint
		// in demo mode instead simulates processing and registers locally.
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) || !s.demoEnabled || s.upstreamRequired {
			s.metrics.RecordWriteError(opUploadProcess)
			s.logger.Error("process upload failed",
				zap.String("tenant_id", up.TenantID),
				zap.String("product", up.ProductName),
				zap.Error(err))
			return models.Process{}, &UpstreamError{Op: opUploadProcess, Err: err}
		}

		s.logger.Warn("upload endpoint unreachable, simulating processing",
			zap.String("tenant_id", up.TenantID), zap.Error(err))
		if derr := s.simulateDelay(ctx, latencyUpload); derr != nil {
			return models.Process{}, derr
		}
		process = demoProcess(up)
	}

	s.cache.Delete(cacheKeyProcesses)
	s.cache.Delete(cacheKeyProcesses + ":" + up.TenantID)
	s.logger.Info("process uploaded", zap.String("process_id", process.ID))
	return process, nil
}

// demoProcess shapes the registration the backend would have produced,
// naming the process "{productName} - {groupName}".
func demoProcess(up models.ProcessUpload) models.Process {
	return models.Process{
		ID:          "process-" + uuid.New().String(),
		TenantID:    up.TenantID,
		Name:        fmt.Sprintf("%s - %s", up.ProductName, up.GroupName),
		Description: fmt.Sprintf("Process for %s in %s group", up.ProductName, up.GroupName),
		StartDate:   up.StartsOn,
		EndDate:     up.EndsOn,
		LastRunDate: time.Now().UTC().Format(time.RFC3339),
		Status:      models.ProcessStatusRunning,
		RunCount:    0,
		Category:    up.GroupName,
	}
}

func validateUpload(up models.ProcessUpload) error {
	if up.TenantID == "" {
		return fmt.Errorf("%w: tenant id is required", ErrInvalidUpload)
	}
	if up.StartsOn == "" || up.EndsOn == "" {
		return fmt.Errorf("%w: validity window is required", ErrInvalidUpload)
	}
	if up.ProductName == "" || up.GroupName == "" {
		return fmt.Errorf("%w: product and group names are required", ErrInvalidUpload)
	}
	if up.FileName == "" || !strings.HasSuffix(strings.ToLower(up.FileName), ".csv") {
		return fmt.Errorf("%w: a CSV data file is required", ErrInvalidUpload)
	}
	if _, err := scheduleParser.Parse(up.Schedule); err != nil {
		return fmt.Errorf("%w: invalid schedule expression %q: %v", ErrInvalidUpload, up.Schedule, err)
	}
	return nil
}

// simulateDelay pauses the caller for the endpoint-weighted fixture latency.
func (s *Service) simulateDelay(ctx context.Context, d time.Duration) error {
	if !s.simulateLatency {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) nextSeq(key string) uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.seq[key]++
	return s.seq[key]
}

func (s *Service) isLatest(key string, seq uint64) bool {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return s.seq[key] == seq
}
