/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the planner's types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Dataset:
    TableDTO, DatasetRequest, DatasetSummaryDTO

  Plans:
    PlanRunDTO, PlanRunSummaryDTO (request body is factory.RunJSON)

  Scenarios:
    ScenarioDTO

VALIDATION:
  Validation is done by the planner and the store, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rules.go: RunJSON
*/
package api

import (
	"time"

	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/outreach"
)

// =============================================================================
// DATASET
// =============================================================================

// TableDTO is one record set: field names and rows of text in that order.
type TableDTO struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (t TableDTO) toTable(name string) *generic.Table {
	return generic.NewTable(name, t.Columns, t.Rows)
}

// DatasetRequest replaces the stored snapshot.
type DatasetRequest struct {
	Products TableDTO `json:"products"`
	Orders   TableDTO `json:"orders"`
	Items    TableDTO `json:"order_items"`
}

func (r DatasetRequest) toDataset() generic.Dataset {
	return generic.Dataset{
		Products: r.Products.toTable(generic.RecordSetProducts),
		Orders:   r.Orders.toTable(generic.RecordSetOrders),
		Items:    r.Items.toTable(generic.RecordSetItems),
	}
}

// DatasetSummaryDTO reports how many records are stored.
type DatasetSummaryDTO struct {
	Products   int `json:"products"`
	Orders     int `json:"orders"`
	OrderItems int `json:"order_items"`
}

// =============================================================================
// PLANS
// =============================================================================

// PlanRunDTO is a full archived plan.
type PlanRunDTO struct {
	ID        string                   `json:"id"`
	Today     string                   `json:"today"`
	Rules     outreach.RuleConfig      `json:"rules"`
	Locale    string                   `json:"locale"`
	Entries   []outreach.PlanEntry     `json:"entries"`
	Outbox    []outreach.OutboxMessage `json:"outbox"`
	CreatedAt time.Time                `json:"created_at"`
}

// PlanRunSummaryDTO is a plan run without its entries.
type PlanRunSummaryDTO struct {
	ID         string              `json:"id"`
	Today      string              `json:"today"`
	Rules      outreach.RuleConfig `json:"rules"`
	Locale     string              `json:"locale"`
	EntryCount int                 `json:"entry_count"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toPlanRunDTO(run *outreach.PlanRun) PlanRunDTO {
	entries := run.Entries
	if entries == nil {
		entries = []outreach.PlanEntry{}
	}
	outbox := run.Outbox
	if outbox == nil {
		outbox = []outreach.OutboxMessage{}
	}
	return PlanRunDTO{
		ID:        run.ID,
		Today:     run.Today.String(),
		Rules:     run.Rules,
		Locale:    run.Locale,
		Entries:   entries,
		Outbox:    outbox,
		CreatedAt: run.CreatedAt,
	}
}

func toPlanRunSummaryDTO(run outreach.PlanRun) PlanRunSummaryDTO {
	return PlanRunSummaryDTO{
		ID:         run.ID,
		Today:      run.Today.String(),
		Rules:      run.Rules,
		Locale:     run.Locale,
		EntryCount: run.EntryCount,
		CreatedAt:  run.CreatedAt,
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
