/*
rules.go - Trigger rule engine

PURPOSE:
  Maps a last purchase to the date its follow-up becomes due and the kind
  of message to send. One rule per category; the engine only dispatches.

RULES:
  consumable: last_order_date + (shelf_life_days - lead_days) -> reorder_reminder
  durable:    last_order_date + durable_after_days           -> accessory_offer
  mid:        last_order_date + mid_after_days               -> campaign_followup

  Offsets are whole calendar days and may be negative, in which case the
  trigger date precedes the purchase (already overdue).

SHELF LIFE POLICY:
  A consumable without a usable shelf_life_days is planned as if it lasted
  DefaultShelfLifeDays (30). The lookup table is built once per run.

SEE ALSO:
  - types.go: Category
  - plan.go: Due filter applied to the engine's output
*/
package outreach

import (
	"fmt"

	"github.com/warp/outreach-engine/generic"
)

// DefaultShelfLifeDays is used for consumables whose shelf life is absent
// or not an integer.
const DefaultShelfLifeDays = 30

// RuleConfig holds the per-category offsets.
type RuleConfig struct {
	LeadDays         int `json:"lead_days" yaml:"lead_days"`
	DurableAfterDays int `json:"durable_after_days" yaml:"durable_after_days"`
	MidAfterDays     int `json:"mid_after_days" yaml:"mid_after_days"`
}

// DefaultRuleConfig returns lead 3, durable 7, mid 30.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{LeadDays: 3, DurableAfterDays: 7, MidAfterDays: 30}
}

// =============================================================================
// SHELF LIFE INDEX
// =============================================================================

// ShelfLifeIndex maps product id to a usable shelf life in days. Products
// without a usable value are absent.
type ShelfLifeIndex map[ProductID]int

// NewShelfLifeIndex scans the catalog once.
func NewShelfLifeIndex(products []Product) ShelfLifeIndex {
	idx := make(ShelfLifeIndex, len(products))
	for _, p := range products {
		if days, ok := p.ShelfLifeDays(); ok {
			idx[p.ID] = days
		}
	}
	return idx
}

// Days returns the shelf life of id, or DefaultShelfLifeDays.
func (idx ShelfLifeIndex) Days(id ProductID) int {
	if d, ok := idx[id]; ok {
		return d
	}
	return DefaultShelfLifeDays
}

// =============================================================================
// RULES - One per category
// =============================================================================

// TriggerRule computes the trigger for one category.
type TriggerRule interface {
	Trigger(lp LastPurchase) (generic.Date, MessageType)
}

// ConsumableRule reminds the customer to reorder before the product runs out.
type ConsumableRule struct {
	LeadDays  int
	ShelfLife ShelfLifeIndex
}

func (r ConsumableRule) Trigger(lp LastPurchase) (generic.Date, MessageType) {
	offset := r.ShelfLife.Days(lp.ProductID) - r.LeadDays
	return lp.LastOrderDate.AddDays(offset), MessageReorderReminder
}

// DurableRule offers accessories a fixed number of days after purchase.
type DurableRule struct {
	AfterDays int
}

func (r DurableRule) Trigger(lp LastPurchase) (generic.Date, MessageType) {
	return lp.LastOrderDate.AddDays(r.AfterDays), MessageAccessoryOffer
}

// MidRule sends a campaign follow-up a fixed number of days after purchase.
type MidRule struct {
	AfterDays int
}

func (r MidRule) Trigger(lp LastPurchase) (generic.Date, MessageType) {
	return lp.LastOrderDate.AddDays(r.AfterDays), MessageCampaignFollowup
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine dispatches each purchase to the rule of its category.
type Engine struct {
	consumable ConsumableRule
	durable    DurableRule
	mid        MidRule
}

func NewEngine(cfg RuleConfig, shelfLife ShelfLifeIndex) *Engine {
	return &Engine{
		consumable: ConsumableRule{LeadDays: cfg.LeadDays, ShelfLife: shelfLife},
		durable:    DurableRule{AfterDays: cfg.DurableAfterDays},
		mid:        MidRule{AfterDays: cfg.MidAfterDays},
	}
}

// RuleFor returns the rule for c. A category without a rule is a
// programming error.
func (e *Engine) RuleFor(c Category) TriggerRule {
	switch c {
	case CategoryConsumable:
		return e.consumable
	case CategoryDurable:
		return e.durable
	case CategoryMid:
		return e.mid
	}
	panic(fmt.Sprintf("outreach: no trigger rule for category %d", int(c)))
}

// Evaluate annotates one purchase.
func (e *Engine) Evaluate(lp LastPurchase) TriggerRecord {
	date, msg := e.RuleFor(lp.Category()).Trigger(lp)
	return TriggerRecord{LastPurchase: lp, TriggerDate: date, MessageType: msg}
}

// EvaluateAll annotates every purchase, preserving order.
func (e *Engine) EvaluateAll(purchases []LastPurchase) []TriggerRecord {
	out := make([]TriggerRecord, len(purchases))
	for i, lp := range purchases {
		out[i] = e.Evaluate(lp)
	}
	return out
}
