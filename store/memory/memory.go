// Package memory provides an in-memory outreach.Store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/outreach"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	dataset generic.Dataset
	runs    map[string]outreach.PlanRun
}

var _ outreach.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		dataset: emptyDataset(),
		runs:    make(map[string]outreach.PlanRun),
	}
}

func emptyDataset() generic.Dataset {
	return generic.Dataset{
		Products: generic.NewTable(generic.RecordSetProducts,
			[]string{generic.ColProductID, generic.ColProductName, generic.ColProductType, generic.ColShelfLifeDays}, nil),
		Orders: generic.NewTable(generic.RecordSetOrders,
			[]string{generic.ColOrderID, generic.ColCustomerName, generic.ColOrderDate}, nil),
		Items: generic.NewTable(generic.RecordSetItems,
			[]string{generic.ColOrderID, generic.ColProductID, generic.ColQuantity}, nil),
	}
}

// ReplaceDataset validates columns and swaps in a copy of ds.
func (m *Memory) ReplaceDataset(_ context.Context, ds generic.Dataset) error {
	if err := outreach.ValidateColumns(ds); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dataset = generic.Dataset{
		Products: copyTable(ds.Products),
		Orders:   copyTable(ds.Orders),
		Items:    copyTable(ds.Items),
	}
	return nil
}

func (m *Memory) LoadDataset(_ context.Context) (generic.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return generic.Dataset{
		Products: copyTable(m.dataset.Products),
		Orders:   copyTable(m.dataset.Orders),
		Items:    copyTable(m.dataset.Items),
	}, nil
}

func copyTable(t *generic.Table) *generic.Table {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append([]string(nil), r...)
	}
	return generic.NewTable(t.Name, append([]string(nil), t.Columns...), rows)
}

func (m *Memory) SavePlanRun(_ context.Context, run outreach.PlanRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.Entries = append([]outreach.PlanEntry{}, run.Entries...)
	run.Outbox = append([]outreach.OutboxMessage{}, run.Outbox...)
	run.EntryCount = len(run.Entries)
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) GetPlanRun(_ context.Context, id string) (*outreach.PlanRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, generic.ErrPlanRunNotFound
	}
	run.Entries = append([]outreach.PlanEntry{}, run.Entries...)
	run.Outbox = append([]outreach.OutboxMessage{}, run.Outbox...)
	return &run, nil
}

// ListPlanRuns returns run headers newest first.
func (m *Memory) ListPlanRuns(_ context.Context) ([]outreach.PlanRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]outreach.PlanRun, 0, len(m.runs))
	for _, run := range m.runs {
		run.Entries = nil
		run.Outbox = nil
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
