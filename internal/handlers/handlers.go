package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fiu-sentinel/console/internal/data"
	"github.com/fiu-sentinel/console/internal/filter"
	"github.com/fiu-sentinel/console/internal/models"
	"github.com/fiu-sentinel/console/internal/session"
)

// maxUploadSize bounds process data files at 10 MiB.
const maxUploadSize = 10 << 20

// Handler handles HTTP requests for the management console API
type Handler struct {
	service  *data.Service
	sessions *session.Manager
	logger   *zap.Logger
	version  string
}

// NewHandler creates a new HTTP handler
func NewHandler(service *data.Service, sessions *session.Manager, logger *zap.Logger, version string) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		logger:   logger,
		version:  version,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		// Session routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
			auth.GET("/session", h.GetSession)
			auth.PUT("/session/selection", h.SetSelection)
			auth.PUT("/session/preferences", h.SetPreferences)
		}

		// Tenant routes
		tenants := api.Group("/tenants")
		{
			tenants.GET("", h.GetTenants)
			tenants.POST("", h.CreateTenant)
			tenants.GET("/stats", h.GetTenantStats)
			tenants.GET("/:tenantId", h.GetTenant)
			tenants.DELETE("/:tenantId", h.DeleteTenant)
			tenants.GET("/:tenantId/processes", h.GetTenantProcesses)
		}

		// Process routes
		processes := api.Group("/processes")
		{
			processes.GET("", h.GetProcesses)
			processes.GET("/stats", h.GetProcessStats)
			processes.POST("/upload", h.UploadProcess)
			processes.GET("/:processId", h.GetProcess)
			processes.GET("/:processId/runs", h.GetProcessRuns)
			processes.GET("/:processId/:sessionId/:userId", h.GetUserRunTriggers)
			processes.GET("/:processId/:sessionId/:userId/:triggerId", h.GetUserRunTrigger)
		}

		// Drill-down routes
		api.GET("/runs/:runId", h.GetRunDetail)
		api.GET("/triggers/:triggerId", h.GetTriggerDetail)

		// System routes
		api.GET("/version", h.GetVersion)
	}

	router.GET("/health", h.HealthCheck)
}

// Session Handlers

// Login authenticates the operator and establishes a session
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and password required"})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the current session
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetSession reports the current session state
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": h.sessions.IsAuthenticated(),
		"user":          h.sessions.AuthUser(),
		"selection":     h.sessions.CurrentSelection(),
		"preferences":   h.sessions.UIPreferences(),
	})
}

// SetSelection records the tenant and process the operator is viewing
func (h *Handler) SetSelection(c *gin.Context) {
	var sel session.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.sessions.SetSelection(sel)
	c.JSON(http.StatusOK, gin.H{"selection": h.sessions.CurrentSelection()})
}

// SetPreferences updates UI preferences such as the theme
func (h *Handler) SetPreferences(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Theme required"})
		return
	}

	h.sessions.SetTheme(req.Theme)
	c.JSON(http.StatusOK, gin.H{"preferences": h.sessions.UIPreferences()})
}

// Tenant Handlers

// GetTenants retrieves tenants, optionally narrowed by a search term
func (h *Handler) GetTenants(c *gin.Context) {
	tenants, err := h.service.ListTenants(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	tenants = filter.Tenants(tenants, c.Query("search"))
	c.JSON(http.StatusOK, gin.H{"tenants": tenants, "count": len(tenants)})
}

// GetTenant retrieves a specific tenant
func (h *Handler) GetTenant(c *gin.Context) {
	tenant, err := h.service.GetTenant(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}

// CreateTenant registers a new tenant
func (h *Handler) CreateTenant(c *gin.Context) {
	var req models.FiuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tenant ID, password and FIU ID required"})
		return
	}

	tenant, err := h.service.CreateTenant(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tenant": tenant})
}

// DeleteTenant removes a tenant
func (h *Handler) DeleteTenant(c *gin.Context) {
	if err := h.service.DeleteTenant(c.Request.Context(), c.Param("tenantId")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tenant deleted"})
}

// GetTenantStats summarizes tenant counts by status
func (h *Handler) GetTenantStats(c *gin.Context) {
	tenants, err := h.service.ListTenants(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": filter.TenantStats(tenants)})
}

// GetTenantProcesses retrieves the processes owned by one tenant
func (h *Handler) GetTenantProcesses(c *gin.Context) {
	processes, err := h.service.ListTenantProcesses(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	processes = filter.Processes(processes, filter.ProcessQuery{
		Term:   c.Query("search"),
		Status: c.Query("status"),
	})
	c.JSON(http.StatusOK, gin.H{"processes": processes, "count": len(processes)})
}

// Process Handlers

// GetProcesses retrieves processes, optionally narrowed by term, status and
// owning tenant
func (h *Handler) GetProcesses(c *gin.Context) {
	processes, err := h.service.ListProcesses(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	processes = filter.Processes(processes, filter.ProcessQuery{
		Term:     c.Query("search"),
		Status:   c.Query("status"),
		TenantID: c.Query("tenantId"),
	})
	c.JSON(http.StatusOK, gin.H{"processes": processes, "count": len(processes)})
}

// GetProcess retrieves a specific process
func (h *Handler) GetProcess(c *gin.Context) {
	process, err := h.service.GetProcess(c.Request.Context(), c.Param("processId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"process": process})
}

// GetProcessStats summarizes process counts by status, honoring the same
// narrowing parameters as the process list
func (h *Handler) GetProcessStats(c *gin.Context) {
	processes, err := h.service.ListProcesses(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	processes = filter.Processes(processes, filter.ProcessQuery{
		Term:     c.Query("search"),
		TenantID: c.Query("tenantId"),
	})
	c.JSON(http.StatusOK, gin.H{"stats": filter.ProcessStats(processes)})
}

// GetProcessRuns retrieves the run history for one process
func (h *Handler) GetProcessRuns(c *gin.Context) {
	runs, err := h.service.ListProcessRuns(c.Request.Context(), c.Param("processId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// UploadProcess registers a new process from a multipart form
func (h *Handler) UploadProcess(c *gin.Context) {
	up := models.ProcessUpload{
		TenantID:    c.PostForm("tenantId"),
		StartsOn:    c.PostForm("startsOn"),
		EndsOn:      c.PostForm("endsOn"),
		Schedule:    c.PostForm("freq"),
		ProductName: c.PostForm("productName"),
		GroupName:   c.PostForm("groupName"),
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data file required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data file too large"})
		return
	}
	up.FileName = fileHeader.Filename
	up.FileSize = fileHeader.Size

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read data file"})
		return
	}
	defer file.Close()

	process, err := h.service.UploadProcess(c.Request.Context(), up, file)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"process": process})
}

// Drill-down Handlers

// GetUserRunTriggers retrieves one user's trigger summaries within a run.
// The full deep-link path resolves from its own identifiers; no state from a
// parent page is assumed.
func (h *Handler) GetUserRunTriggers(c *gin.Context) {
	detail, err := h.service.GetRunDetail(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID := c.Param("userId")
	for _, summary := range detail.Users {
		if summary.User.ID == userID {
			c.JSON(http.StatusOK, gin.H{
				"processId": c.Param("processId"),
				"sessionId": detail.ID,
				"user":      summary,
			})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

// GetUserRunTrigger retrieves one trigger scoped by the full deep-link path.
func (h *Handler) GetUserRunTrigger(c *gin.Context) {
	detail, err := h.service.GetTriggerDetail(
		c.Request.Context(),
		c.Param("triggerId"),
		c.Param("userId"),
		c.Param("sessionId"),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trigger": detail})
}

// GetRunDetail retrieves the expanded record for one process run
func (h *Handler) GetRunDetail(c *gin.Context) {
	detail, err := h.service.GetRunDetail(c.Request.Context(), c.Param("runId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": detail})
}

// GetTriggerDetail retrieves one trigger scoped to a user and run
func (h *Handler) GetTriggerDetail(c *gin.Context) {
	detail, err := h.service.GetTriggerDetail(
		c.Request.Context(),
		c.Param("triggerId"),
		c.Query("userId"),
		c.Query("sessionId"),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trigger": detail})
}

// System Handlers

// HealthCheck reports service liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "sentinel-console",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetVersion reports the build version
func (h *Handler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

// respondError maps data layer errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	var upstreamErr *data.UpstreamError

	switch {
	case errors.Is(err, data.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, data.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, data.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, data.ErrInvalidUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service unavailable"})
	default:
		h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
