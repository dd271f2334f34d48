package outreach

import (
	"sort"

	"github.com/warp/outreach-engine/generic"
)

// ResolveToday picks the reference date: a non-empty override parsed
// strictly (whitespace included), otherwise the clock's current day.
func ResolveToday(override string, clock generic.Clock) (generic.Date, error) {
	if override != "" {
		return generic.ParseDate("today", override)
	}
	return clock.Today(), nil
}

// Due keeps the records whose trigger date is on or before today and
// orders them by trigger date, customer name, product name.
func Due(records []TriggerRecord, today generic.Date) []PlanEntry {
	entries := make([]PlanEntry, 0, len(records))
	for _, r := range records {
		if !r.TriggerDate.BeforeOrEqual(today) {
			continue
		}
		entries = append(entries, PlanEntry{
			CustomerName:  r.CustomerName,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			ProductType:   r.ProductType,
			LastOrderDate: r.LastOrderDate,
			TriggerDate:   r.TriggerDate,
			MessageType:   r.MessageType,
		})
	}
	SortEntries(entries)
	return entries
}

// SortEntries sorts in place; ties keep their input order.
func SortEntries(entries []PlanEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if c := a.TriggerDate.Compare(b.TriggerDate); c != 0 {
			return c < 0
		}
		if a.CustomerName != b.CustomerName {
			return a.CustomerName < b.CustomerName
		}
		return a.ProductName < b.ProductName
	})
}
