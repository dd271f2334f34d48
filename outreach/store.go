package outreach

import (
	"context"
	"time"

	"github.com/warp/outreach-engine/generic"
)

// PlanRun is an archived plan together with the settings that produced it.
// It records what was planned, not what was delivered.
type PlanRun struct {
	ID         string          `json:"id"`
	Today      generic.Date    `json:"today"`
	Rules      RuleConfig      `json:"rules"`
	Locale     string          `json:"locale"`
	EntryCount int             `json:"entry_count"`
	Entries    []PlanEntry     `json:"entries"`
	Outbox     []OutboxMessage `json:"outbox"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewPlanRun wraps a plan for archiving.
func NewPlanRun(id string, plan *Plan, rules RuleConfig, locale string, createdAt time.Time) PlanRun {
	return PlanRun{
		ID:         id,
		Today:      plan.Today,
		Rules:      rules,
		Locale:     locale,
		EntryCount: len(plan.Entries),
		Entries:    plan.Entries,
		Outbox:     plan.Outbox,
		CreatedAt:  createdAt,
	}
}

// PlanStore archives plan runs.
type PlanStore interface {
	SavePlanRun(ctx context.Context, run PlanRun) error
	// GetPlanRun returns generic.ErrPlanRunNotFound for an unknown id.
	GetPlanRun(ctx context.Context, id string) (*PlanRun, error)
	// ListPlanRuns returns runs newest first, without entries or outbox.
	ListPlanRuns(ctx context.Context) ([]PlanRun, error)
}

// Store is a dataset source that also archives plans.
type Store interface {
	generic.Source
	PlanStore
	ReplaceDataset(ctx context.Context, ds generic.Dataset) error
}
