package fixtures

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/fiu-sentinel/console/internal/models"
)

// ruleDefinition is the canned rule text attached to trigger details in demo
// mode; the rules service owns real definitions.
const ruleDefinition = `IF transaction.amount > 10000 AND transaction.type = 'CASH' THEN flag = TRUE`

// Generator materializes run details and trigger details from the fixture
// library by sampling. Sampling is intentionally varied between calls to
// produce believable demo data; a fixed non-zero seed makes the whole
// sequence reproducible for tests.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	library *Library
}

// NewGenerator creates a generator over the library. A seed of 0 seeds from
// the clock.
func NewGenerator(library *Library, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		library: library,
	}
}

// RunDetail expands one run into its detail record: UsersInvolved sampled
// users, each with 2-4 sampled triggers whose hit counts sum into the user's
// triggerHitCount, plus the run's log lines.
func (g *Generator) RunDetail(run models.ProcessRun) models.ProcessRunDetail {
	g.mu.Lock()
	defer g.mu.Unlock()

	users := g.library.Users()
	g.rng.Shuffle(len(users), func(i, j int) {
		users[i], users[j] = users[j], users[i]
	})
	count := run.UsersInvolved
	if count > len(users) {
		count = len(users)
	}

	summaries := make([]models.UserTriggerSummary, 0, count)
	for _, user := range users[:count] {
		triggers := g.library.Triggers()
		g.rng.Shuffle(len(triggers), func(i, j int) {
			triggers[i], triggers[j] = triggers[j], triggers[i]
		})
		picked := triggers[:g.rng.Intn(3)+2]

		hits := 0
		for _, t := range picked {
			hits += t.HitCount
		}
		summaries = append(summaries, models.UserTriggerSummary{
			User:            user,
			TriggerHitCount: hits,
			Triggers:        picked,
		})
	}

	return models.ProcessRunDetail{
		ID:               run.ID,
		ProcessID:        run.ProcessID,
		RunDate:          run.RunDate,
		Status:           run.Status,
		Duration:         run.Duration,
		Users:            summaries,
		RecordsProcessed: run.RecordsProcessed,
		TotalTriggerHits: run.TotalTriggerHits,
		Logs:             runLogs(run),
	}
}

// TriggerDetail expands one trigger into its detail record with up to
// hitCount sampled flagged transactions.
func (g *Generator) TriggerDetail(trigger models.TriggerSummary) models.TriggerDetail {
	g.mu.Lock()
	defer g.mu.Unlock()

	transactions := g.library.Transactions()
	g.rng.Shuffle(len(transactions), func(i, j int) {
		transactions[i], transactions[j] = transactions[j], transactions[i]
	})
	count := trigger.HitCount
	if count > len(transactions) {
		count = len(transactions)
	}

	return models.TriggerDetail{
		ID:             trigger.ID,
		Name:           trigger.Name,
		Type:           trigger.Type,
		Severity:       trigger.Severity,
		Description:    trigger.Description,
		RuleDefinition: ruleDefinition,
		Transactions:   transactions[:count],
		CreatedAt:      "2023-01-15",
		LastTriggered:  "2024-01-15 14:30:00",
	}
}

// runLogs builds the ordered log sequence for a run. The terminal line always
// reflects the outcome status.
func runLogs(run models.ProcessRun) []string {
	final := "Process completed successfully"
	if run.Status != models.RunStatusSuccess {
		final = "Process encountered errors"
	}
	return []string{
		"Process started successfully",
		"Data validation completed",
		"AML screening initiated",
		fmt.Sprintf("%d triggers detected", run.TotalTriggerHits),
		final,
	}
}
