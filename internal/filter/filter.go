// Package filter derives filtered views of tenant and process lists. All
// functions are pure: the source slice is never mutated and relative order
// is preserved.
package filter

import (
	"strings"

	"github.com/fiu-sentinel/console/internal/models"
)

// All is the sentinel categorical filter value meaning pass-through.
const All = "all"

// Tenants narrows a tenant list by a case-insensitive free-text term matched
// against name, description and country. An empty term returns the input
// unchanged.
func Tenants(in []models.Tenant, term string) []models.Tenant {
	if term == "" {
		return in
	}
	out := make([]models.Tenant, 0, len(in))
	for _, t := range in {
		if matchesTerm(term, t.Name, t.Description, t.Country) {
			out = append(out, t)
		}
	}
	return out
}

// ProcessQuery is the set of predicates applied to a process list. Zero
// values and the "all" sentinel are pass-through.
type ProcessQuery struct {
	Term     string
	Status   string
	TenantID string
}

// Processes narrows a process list by free-text term (name, description,
// category) and the categorical status and tenant filters. Predicates
// intersect.
func Processes(in []models.Process, q ProcessQuery) []models.Process {
	out := in
	if q.Term != "" {
		filtered := make([]models.Process, 0, len(out))
		for _, p := range out {
			if matchesTerm(q.Term, p.Name, p.Description, p.Category) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	if q.Status != "" && q.Status != All {
		filtered := make([]models.Process, 0, len(out))
		for _, p := range out {
			if string(p.Status) == q.Status {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	if q.TenantID != "" && q.TenantID != All {
		filtered := make([]models.Process, 0, len(out))
		for _, p := range out {
			if p.TenantID == q.TenantID {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	return out
}

// ProcessStats counts processes per lifecycle status for the dashboard
// summary.
func ProcessStats(in []models.Process) map[string]int {
	stats := map[string]int{
		"total":     len(in),
		"running":   0,
		"completed": 0,
		"failed":    0,
		"paused":    0,
	}
	for _, p := range in {
		stats[string(p.Status)]++
	}
	return stats
}

// TenantStats counts tenants per lifecycle status.
func TenantStats(in []models.Tenant) map[string]int {
	stats := map[string]int{
		"total":     len(in),
		"active":    0,
		"inactive":  0,
		"suspended": 0,
	}
	for _, t := range in {
		stats[string(t.Status)]++
	}
	return stats
}

func matchesTerm(term string, fields ...string) bool {
	needle := strings.ToLower(term)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
