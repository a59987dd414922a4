// Package fixtures holds the deterministic substitute data set served when a
// live backend call is unavailable or the operator is unauthenticated.
package fixtures

import "github.com/fiu-sentinel/console/internal/models"

// Library is the fixed fixture data set. Accessors return fresh copies so a
// derived view can never mutate the source collections.
type Library struct {
	tenants      []models.Tenant
	processes    []models.Process
	runs         map[string][]models.ProcessRun
	users        []models.User
	triggers     []models.TriggerSummary
	transactions []models.Transaction
}

// NewLibrary builds the fixed demo data set.
func NewLibrary() *Library {
	return &Library{
		tenants: []models.Tenant{
			{ID: "1", Name: "Global Financial Services", Description: "International banking and financial services organization", Status: models.TenantStatusActive, CreatedAt: "2023-01-15", ProcessCount: 12, Country: "USA"},
			{ID: "2", Name: "European Investment Bank", Description: "Regional investment banking institution", Status: models.TenantStatusActive, CreatedAt: "2023-03-22", ProcessCount: 8, Country: "Germany"},
			{ID: "3", Name: "Asia Pacific Credit Union", Description: "Credit union serving Asia Pacific region", Status: models.TenantStatusInactive, CreatedAt: "2023-02-10", ProcessCount: 5, Country: "Singapore"},
			{ID: "4", Name: "Middle East Banking Corp", Description: "Corporate banking solutions for Middle East", Status: models.TenantStatusActive, CreatedAt: "2023-04-05", ProcessCount: 15, Country: "UAE"},
			{ID: "5", Name: "South American Financial", Description: "Regional financial services provider", Status: models.TenantStatusSuspended, CreatedAt: "2023-01-30", ProcessCount: 3, Country: "Brazil"},
			{ID: "6", Name: "Nordic Banking Solutions", Description: "Scandinavian financial technology company", Status: models.TenantStatusActive, CreatedAt: "2023-05-12", ProcessCount: 9, Country: "Sweden"},
		},
		processes: []models.Process{
			{ID: "p1", TenantID: "1", Name: "Anti-Money Laundering Check", Description: "Automated AML screening for all transactions", StartDate: "2023-01-20", EndDate: "2024-01-20", LastRunDate: "2024-01-15", Status: models.ProcessStatusRunning, RunCount: 1250, Category: "Compliance"},
			{ID: "p2", TenantID: "1", Name: "Transaction Monitoring", Description: "Real-time transaction pattern analysis", StartDate: "2023-02-01", EndDate: "2024-02-01", LastRunDate: "2024-01-14", Status: models.ProcessStatusRunning, RunCount: 2840, Category: "Monitoring"},
			{ID: "p3", TenantID: "1", Name: "Customer Due Diligence", Description: "Enhanced customer background verification", StartDate: "2023-01-25", EndDate: "2024-01-25", LastRunDate: "2024-01-13", Status: models.ProcessStatusCompleted, RunCount: 856, Category: "Verification"},
			{ID: "p4", TenantID: "2", Name: "Sanctions Screening", Description: "Automated sanctions list checking", StartDate: "2023-03-25", EndDate: "2024-03-25", LastRunDate: "2024-01-15", Status: models.ProcessStatusRunning, RunCount: 945, Category: "Compliance"},
			{ID: "p5", TenantID: "2", Name: "Risk Assessment", Description: "Comprehensive risk evaluation process", StartDate: "2023-04-01", EndDate: "2024-04-01", LastRunDate: "2024-01-12", Status: models.ProcessStatusPaused, RunCount: 234, Category: "Assessment"},
		},
		runs: map[string][]models.ProcessRun{
			"p1": {
				{ID: "r1", ProcessID: "p1", RunDate: "2024-01-15", Status: models.RunStatusSuccess, Duration: 45, UsersInvolved: 3, RecordsProcessed: 1250, TotalTriggerHits: 47},
				{ID: "r2", ProcessID: "p1", RunDate: "2024-01-14", Status: models.RunStatusSuccess, Duration: 42, UsersInvolved: 2, RecordsProcessed: 1180, TotalTriggerHits: 32},
				{ID: "r3", ProcessID: "p1", RunDate: "2024-01-13", Status: models.RunStatusFailed, Duration: 12, UsersInvolved: 1, RecordsProcessed: 450, TotalTriggerHits: 8},
				{ID: "r4", ProcessID: "p1", RunDate: "2024-01-12", Status: models.RunStatusSuccess, Duration: 48, UsersInvolved: 3, RecordsProcessed: 1320, TotalTriggerHits: 56},
			},
			"p2": {
				{ID: "r5", ProcessID: "p2", RunDate: "2024-01-14", Status: models.RunStatusSuccess, Duration: 180, UsersInvolved: 5, RecordsProcessed: 2840, TotalTriggerHits: 89},
				{ID: "r6", ProcessID: "p2", RunDate: "2024-01-13", Status: models.RunStatusSuccess, Duration: 175, UsersInvolved: 4, RecordsProcessed: 2650, TotalTriggerHits: 73},
				{ID: "r7", ProcessID: "p2", RunDate: "2024-01-12", Status: models.RunStatusInProgress, Duration: 90, UsersInvolved: 3, RecordsProcessed: 1400, TotalTriggerHits: 34},
			},
		},
		users: []models.User{
			{ID: "u1", Name: "Sarah Johnson", Email: "sarah.johnson@example.com", Role: "Compliance Analyst", Department: "Risk Management", LastActivity: "2024-01-15 14:30"},
			{ID: "u2", Name: "Michael Chen", Email: "michael.chen@example.com", Role: "Senior Analyst", Department: "Fraud Detection", LastActivity: "2024-01-15 12:15"},
			{ID: "u3", Name: "Emma Rodriguez", Email: "emma.rodriguez@example.com", Role: "AML Specialist", Department: "Compliance", LastActivity: "2024-01-15 16:45"},
			{ID: "u4", Name: "David Kim", Email: "david.kim@example.com", Role: "Risk Analyst", Department: "Risk Management", LastActivity: "2024-01-14 09:20"},
			{ID: "u5", Name: "Lisa Thompson", Email: "lisa.thompson@example.com", Role: "Compliance Manager", Department: "Compliance", LastActivity: "2024-01-14 17:30"},
		},
		triggers: []models.TriggerSummary{
			{ID: "t1", Name: "Large Cash Transaction", Type: "Amount Threshold", Severity: models.SeverityHigh, HitCount: 15, Description: "Transactions exceeding $10,000 in cash"},
			{ID: "t2", Name: "Rapid Fire Transactions", Type: "Velocity", Severity: models.SeverityMedium, HitCount: 8, Description: "Multiple transactions within short time frame"},
			{ID: "t3", Name: "Sanctions List Match", Type: "Watchlist", Severity: models.SeverityCritical, HitCount: 3, Description: "Customer matches sanctions database"},
			{ID: "t4", Name: "Unusual Geographic Pattern", Type: "Geographic", Severity: models.SeverityMedium, HitCount: 12, Description: "Transactions from high-risk countries"},
			{ID: "t5", Name: "Round Number Pattern", Type: "Pattern", Severity: models.SeverityLow, HitCount: 22, Description: "Frequent round number transactions"},
		},
		transactions: []models.Transaction{
			{ID: "tx1", Amount: 15000, Currency: "USD", FromAccount: "ACC-001-2024", ToAccount: "ACC-002-2024", Timestamp: "2024-01-15 10:30:00", Description: "Wire transfer to offshore account", Status: models.TransactionStatusCompleted, RiskScore: 85, FlaggedReasons: []string{"Large amount", "Offshore destination", "Cash intensive business"}},
			{ID: "tx2", Amount: 12500, Currency: "USD", FromAccount: "ACC-001-2024", ToAccount: "ACC-003-2024", Timestamp: "2024-01-15 11:45:00", Description: "Business payment", Status: models.TransactionStatusCompleted, RiskScore: 72, FlaggedReasons: []string{"Large amount", "Rapid succession"}},
			{ID: "tx3", Amount: 10000, Currency: "USD", FromAccount: "ACC-004-2024", ToAccount: "ACC-001-2024", Timestamp: "2024-01-15 14:20:00", Description: "Cash deposit", Status: models.TransactionStatusCompleted, RiskScore: 78, FlaggedReasons: []string{"Exact threshold amount", "Cash transaction"}},
		},
	}
}

// Tenants returns all fixture tenants.
func (l *Library) Tenants() []models.Tenant {
	return append([]models.Tenant(nil), l.tenants...)
}

// Tenant looks up one tenant by id.
func (l *Library) Tenant(id string) (models.Tenant, bool) {
	for _, t := range l.tenants {
		if t.ID == id {
			return t, true
		}
	}
	return models.Tenant{}, false
}

// Processes returns all fixture processes.
func (l *Library) Processes() []models.Process {
	return append([]models.Process(nil), l.processes...)
}

// Process looks up one process by id.
func (l *Library) Process(id string) (models.Process, bool) {
	for _, p := range l.processes {
		if p.ID == id {
			return p, true
		}
	}
	return models.Process{}, false
}

// TenantProcesses returns the processes owned by a tenant, preserving order.
func (l *Library) TenantProcesses(tenantID string) []models.Process {
	var out []models.Process
	for _, p := range l.processes {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out
}

// ProcessRuns returns the run history for a process. Unknown process ids
// yield an empty history, not an error.
func (l *Library) ProcessRuns(processID string) []models.ProcessRun {
	return append([]models.ProcessRun(nil), l.runs[processID]...)
}

// FindRun searches all run histories for a run id.
func (l *Library) FindRun(runID string) (models.ProcessRun, bool) {
	for _, runs := range l.runs {
		for _, run := range runs {
			if run.ID == runID {
				return run, true
			}
		}
	}
	return models.ProcessRun{}, false
}

// Users returns all fixture users.
func (l *Library) Users() []models.User {
	return append([]models.User(nil), l.users...)
}

// Triggers returns all fixture triggers.
func (l *Library) Triggers() []models.TriggerSummary {
	return append([]models.TriggerSummary(nil), l.triggers...)
}

// Trigger looks up one trigger by id.
func (l *Library) Trigger(id string) (models.TriggerSummary, bool) {
	for _, t := range l.triggers {
		if t.ID == id {
			return t, true
		}
	}
	return models.TriggerSummary{}, false
}

// Transactions returns all fixture transactions.
func (l *Library) Transactions() []models.Transaction {
	return append([]models.Transaction(nil), l.transactions...)
}
