/*
Package outreach computes repeat-sales follow-up plans.

PURPOSE:
  Given a product catalog and order history, decide per customer/product
  pair when a follow-up message becomes due and which message to send,
  then keep only the messages due as of a reference date.

PIPELINE:
  Dataset -> Aggregate (last purchase per pair)
          -> Engine.Evaluate (trigger date + message type)
          -> Due (trigger <= today, sorted)
          -> Renderer (outbox text)

CATEGORIES:
  consumable: reorder before the shelf life runs out
  durable:    offer accessories some days after purchase
  anything else (including blank) is treated as mid: a campaign follow-up

SEE ALSO:
  - aggregate.go: Joins and last-purchase reduction
  - rules.go: Trigger rule engine
  - plan.go: Due filter and ordering
  - messages.go: Outbox templates
*/
package outreach

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/outreach-engine/generic"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type OrderID string

// =============================================================================
// CATEGORY - Closed set of behavioral buckets
// =============================================================================

// Category selects the trigger rule. The zero value is CategoryMid, the
// bucket for every product_type that is not consumable or durable.
type Category int

const (
	CategoryMid Category = iota
	CategoryConsumable
	CategoryDurable

	numCategories
)

// AllCategories lists every category in declaration order.
func AllCategories() []Category {
	out := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory classifies a raw product_type. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "consumable":
		return CategoryConsumable
	case "durable":
		return CategoryDurable
	default:
		return CategoryMid
	}
}

func (c Category) String() string {
	switch c {
	case CategoryMid:
		return "mid"
	case CategoryConsumable:
		return "consumable"
	case CategoryDurable:
		return "durable"
	default:
		return "unknown"
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

type MessageType string

const (
	MessageReorderReminder  MessageType = "reorder_reminder"
	MessageAccessoryOffer   MessageType = "accessory_offer"
	MessageCampaignFollowup MessageType = "campaign_followup"
)

// =============================================================================
// INPUT RECORDS
// =============================================================================

type Product struct {
	ID   ProductID
	Name string
	// Type is the product_type exactly as supplied; Category is derived from it.
	Type     string
	Category Category
	// ShelfLifeRaw is the shelf_life_days text, empty when absent.
	ShelfLifeRaw string
}

// ShelfLifeDays parses the shelf life. Integers and decimals with a zero
// fraction ("10.0") are accepted; anything else reports ok=false.
func (p Product) ShelfLifeDays() (days int, ok bool) {
	raw := strings.TrimSpace(p.ShelfLifeRaw)
	if raw == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}

type Order struct {
	ID           OrderID
	CustomerName string
	Date         generic.Date
}

type OrderItem struct {
	Row       int // 1-based data row, for error reporting
	OrderID   OrderID
	ProductID ProductID
	// Quantity is accepted but not used by planning; Valid is false when
	// the value is not numeric.
	Quantity decimal.NullDecimal
}

// =============================================================================
// DERIVED RECORDS
// =============================================================================

// LastPurchase is the most recent purchase of one product by one customer.
type LastPurchase struct {
	CustomerName  string
	ProductID     ProductID
	ProductName   string
	ProductType   string
	LastOrderDate generic.Date
}

func (lp LastPurchase) Category() Category { return ParseCategory(lp.ProductType) }

// TriggerRecord is a LastPurchase annotated by the rule engine.
type TriggerRecord struct {
	LastPurchase
	TriggerDate generic.Date
	MessageType MessageType
}

// PlanEntry is a trigger record that is due as of the plan's reference date.
type PlanEntry struct {
	CustomerName  string       `json:"customer_name"`
	ProductID     ProductID    `json:"product_id"`
	ProductName   string       `json:"product_name"`
	ProductType   string       `json:"product_type"`
	LastOrderDate generic.Date `json:"last_order_date"`
	TriggerDate   generic.Date `json:"trigger_date"`
	MessageType   MessageType  `json:"message_type"`
}

// OutboxMessage is the rendered text for one plan entry.
type OutboxMessage struct {
	CustomerName string      `json:"customer_name"`
	MessageType  MessageType `json:"message_type"`
	MessageText  string      `json:"message_text"`
}

// Plan is the complete result of one run.
type Plan struct {
	Today   generic.Date    `json:"today"`
	Entries []PlanEntry     `json:"entries"`
	Outbox  []OutboxMessage `json:"outbox"`
}
