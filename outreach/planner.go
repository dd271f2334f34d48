package outreach

import (
	"github.com/warp/outreach-engine/generic"
)

// Planner runs the whole pipeline over one dataset snapshot.
type Planner struct {
	Rules    RuleConfig
	Renderer Renderer
}

// NewPlanner returns a planner with the given rules and renderer. A nil
// renderer selects the DefaultLocale templates.
func NewPlanner(rules RuleConfig, r Renderer) *Planner {
	if r == nil {
		r, _ = TemplatesFor(DefaultLocale)
	}
	return &Planner{Rules: rules, Renderer: r}
}

// Build validates, joins, evaluates and filters the dataset against today.
// It either returns a complete plan or an error; there is no partial result.
func (p *Planner) Build(ds generic.Dataset, today generic.Date) (*Plan, error) {
	if err := ValidateColumns(ds); err != nil {
		return nil, err
	}
	catalog, err := DecodeCatalog(ds.Products)
	if err != nil {
		return nil, err
	}
	orders, err := DecodeOrders(ds.Orders)
	if err != nil {
		return nil, err
	}
	purchases, err := Aggregate(catalog, orders, DecodeItems(ds.Items))
	if err != nil {
		return nil, err
	}

	engine := NewEngine(p.Rules, NewShelfLifeIndex(catalog.Products))
	entries := Due(engine.EvaluateAll(purchases), today)

	return &Plan{
		Today:   today,
		Entries: entries,
		Outbox:  BuildOutbox(entries, p.Renderer),
	}, nil
}
