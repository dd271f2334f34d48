/*
scenarios.go - Demo datasets for testing and demonstrations

PURPOSE:

	Provides pre-built datasets that replace the stored snapshot with
	realistic records. Each scenario exercises one part of the planner:
	category rules, shelf-life fallback, last-purchase reduction.

AVAILABLE SCENARIOS:

	starter-shop:         One product per category, two customers
	overdue-consumables:  Short and missing shelf lives, all reminders overdue
	repeat-buyers:        Same products bought repeatedly, latest order wins
	empty-shop:           Headers only; plans come back empty

HOW SCENARIOS WORK:
 1. Build the three record sets in memory
 2. Order dates are relative to the handler's clock so the demo always
    has something due
 3. Replace the stored snapshot (archived plan runs are kept)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "starter-shop"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create builder function: xxxDataset(today)
 3. Register it in scenarioBuilders

SEE ALSO:
  - handlers.go: ReplaceDataset (same store path)
  - outreach/rules.go: What each scenario is meant to trigger
*/
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/warp/outreach-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "starter-shop",
		Name:        "Starter Shop",
		Description: "One consumable, one durable and one uncategorised product across two customers",
		Category:    "mixed",
	},
	{
		ID:          "overdue-consumables",
		Name:        "Overdue Consumables",
		Description: "Consumables whose shelf life is shorter than the lead time or missing",
		Category:    "consumable",
	},
	{
		ID:          "repeat-buyers",
		Name:        "Repeat Buyers",
		Description: "Customers reordering the same products; only the latest order counts",
		Category:    "mixed",
	},
	{
		ID:          "empty-shop",
		Name:        "Empty Shop",
		Description: "Headers only, no records",
		Category:    "empty",
	},
}

var scenarioBuilders = map[string]func(today generic.Date) generic.Dataset{
	"starter-shop":        starterShopDataset,
	"overdue-consumables": overdueConsumablesDataset,
	"repeat-buyers":       repeatBuyersDataset,
	"empty-shop":          emptyShopDataset,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario replaces the stored snapshot with a predefined dataset.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	build, ok := scenarioBuilders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	ds := build(generic.DateOf(h.Now()))
	if err := h.Store.ReplaceDataset(r.Context(), ds); err != nil {
		writeError(w, statusFor(err), "failed to load scenario", err)
		return
	}
	h.setScenario(req.ScenarioID)

	h.Log.Info("scenario loaded", "scenario", req.ScenarioID, "order_items", ds.Items.Len())
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"scenario": req.ScenarioID,
	})
}

// =============================================================================
// DATASET BUILDERS
// =============================================================================

var (
	productColumns = []string{generic.ColProductID, generic.ColProductName, generic.ColProductType, generic.ColShelfLifeDays}
	orderColumns   = []string{generic.ColOrderID, generic.ColCustomerName, generic.ColOrderDate}
	itemColumns    = []string{generic.ColOrderID, generic.ColProductID, generic.ColQuantity}
)

func dataset(products, orders, items [][]string) generic.Dataset {
	return generic.Dataset{
		Products: generic.NewTable(generic.RecordSetProducts, productColumns, products),
		Orders:   generic.NewTable(generic.RecordSetOrders, orderColumns, orders),
		Items:    generic.NewTable(generic.RecordSetItems, itemColumns, items),
	}
}

func daysAgo(today generic.Date, n int) string {
	return today.AddDays(-n).String()
}

// starterShopDataset: the filter reminder and the kettle offer are due
// today; the mug follow-up is due in a week.
func starterShopDataset(today generic.Date) generic.Dataset {
	return dataset(
		[][]string{
			{"P1", "Coffee Filter", "consumable", "10"},
			{"P2", "Kettle", "durable", ""},
			{"P3", "Mug", "", ""},
		},
		[][]string{
			{"O1", "Ayşe", daysAgo(today, 7)},
			{"O2", "Mehmet", daysAgo(today, 7)},
			{"O3", "Mehmet", daysAgo(today, 23)},
		},
		[][]string{
			{"O1", "P1", "2"},
			{"O2", "P2", "1"},
			{"O3", "P3", "4"},
		},
	)
}

func overdueConsumablesDataset(today generic.Date) generic.Dataset {
	return dataset(
		[][]string{
			{"C1", "Yeast", "consumable", "2"},
			{"C2", "Descaler", "Consumable", ""},
			{"C3", "Toner", "consumable", "45.0"},
		},
		[][]string{
			{"O1", "Zeynep", daysAgo(today, 1)},
			{"O2", "Can", daysAgo(today, 30)},
			{"O3", "Can", daysAgo(today, 42)},
		},
		[][]string{
			{"O1", "C1", "1"},
			{"O2", "C2", "1"},
			{"O3", "C3", "1"},
		},
	)
}

func repeatBuyersDataset(today generic.Date) generic.Dataset {
	return dataset(
		[][]string{
			{"P1", "Tea", "consumable", "20"},
			{"P2", "Teapot", "durable", ""},
		},
		[][]string{
			{"O1", "Elif", daysAgo(today, 60)},
			{"O2", "Elif", daysAgo(today, 17)},
			{"O3", "Elif", daysAgo(today, 40)},
			{"O4", "Burak", daysAgo(today, 8)},
			{"O5", "Burak", daysAgo(today, 3)},
		},
		[][]string{
			{"O1", "P1", "1"},
			{"O2", "P1", "1"},
			{"O3", "P1", "2"},
			{"O4", "P2", "1"},
			{"O5", "P2", "1"},
		},
	)
}

func emptyShopDataset(generic.Date) generic.Dataset {
	return dataset(nil, nil, nil)
}
