package models

// Tenant is an organizational client of the compliance platform. The process
// count is denormalized, backend-owned data and is never recomputed from the
// process collection on this side; treat it as eventually consistent.
type Tenant struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Status       TenantStatus `json:"status"`
	CreatedAt    string       `json:"createdAt"`
	ProcessCount int          `json:"processCount"`
	Country      string       `json:"country"`
}

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
)

// FiuRequest is the payload accepted by the tenant creation endpoint.
type FiuRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	Password string `json:"password" binding:"required"`
	FiuID    string `json:"fiuId" binding:"required"`
}

// Process is a configured, recurring compliance-screening job scoped to a
// tenant.
type Process struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenantId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	LastRunDate string        `json:"lastRunDate"`
	Status      ProcessStatus `json:"status"`
	RunCount    int           `json:"runCount"`
	Category    string        `json:"category"`
}

type ProcessStatus string

const (
	ProcessStatusRunning   ProcessStatus = "running"
	ProcessStatusCompleted ProcessStatus = "completed"
	ProcessStatusFailed    ProcessStatus = "failed"
	ProcessStatusPaused    ProcessStatus = "paused"
)

// ProcessRun is one execution instance of a process. Runs are produced by the
// backend and are read-only here.
type ProcessRun struct {
	ID               string    `json:"id"`
	ProcessID        string    `json:"processId"`
	RunDate          string    `json:"runDate"`
	Status           RunStatus `json:"status"`
	Duration         int       `json:"duration"` // minutes
	UsersInvolved    int       `json:"usersInvolved"`
	RecordsProcessed int       `json:"recordsProcessed"`
	TotalTriggerHits int       `json:"totalTriggerHits"`
}

type RunStatus string

const (
	RunStatusSuccess    RunStatus = "success"
	RunStatusFailed     RunStatus = "failed"
	RunStatusInProgress RunStatus = "in-progress"
)

// ProcessRunDetail extends a run with the per-user trigger breakdown and the
// run's log lines. One detail record is materialized lazily per run id.
type ProcessRunDetail struct {
	ID               string               `json:"id"`
	ProcessID        string               `json:"processId"`
	RunDate          string               `json:"runDate"`
	Status           RunStatus            `json:"status"`
	Duration         int                  `json:"duration"`
	Users            []UserTriggerSummary `json:"users"`
	RecordsProcessed int                  `json:"recordsProcessed"`
	Logs             []string             `json:"logs"`
	TotalTriggerHits int                  `json:"totalTriggerHits"`
}

// User is a platform operator referenced by run details.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	LastActivity string `json:"lastActivity"`
}

// UserTriggerSummary pairs one user with the triggers that fired for them in
// a given run. It exists only inside a ProcessRunDetail.
type UserTriggerSummary struct {
	User            User             `json:"user"`
	TriggerHitCount int              `json:"triggerHitCount"`
	Triggers        []TriggerSummary `json:"triggers"`
}

// TriggerSummary is a compliance rule definition with its hit count.
type TriggerSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	HitCount    int      `json:"hitCount"`
	Description string   `json:"description"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// TriggerDetail adds the rule text and the flagged transactions behind a
// trigger hit.
type TriggerDetail struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	Severity       Severity      `json:"severity"`
	Description    string        `json:"description"`
	RuleDefinition string        `json:"ruleDefinition"`
	Transactions   []Transaction `json:"transactions"`
	CreatedAt      string        `json:"createdAt"`
	LastTriggered  string        `json:"lastTriggered"`
}

// Transaction is a single flagged monetary movement.
type Transaction struct {
	ID             string            `json:"id"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	FromAccount    string            `json:"fromAccount"`
	ToAccount      string            `json:"toAccount"`
	Timestamp      string            `json:"timestamp"`
	Description    string            `json:"description"`
	Status         TransactionStatus `json:"status"`
	RiskScore      int               `json:"riskScore"`
	FlaggedReasons []string          `json:"flaggedReasons"`
}

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// AuthUser is the authenticated operator identity persisted alongside the
// bearer token.
type AuthUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// LoginRequest carries operator credentials to the authentication endpoint.
type LoginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProcessUpload is the multipart payload for registering a new process. The
// schedule is a 6-field cron expression (seconds minutes hours day-of-month
// month day-of-week).
type ProcessUpload struct {
	TenantID    string
	StartsOn    string
	EndsOn      string
	Schedule    string
	ProductName string
	GroupName   string
	FileName    string
	FileSize    int64
}
