package outreach_test

import (
	"strings"
	"time"

	"github.com/warp/outreach-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.Date {
	return generic.NewDate(year, month, day)
}

// table builds a record set from comma-separated lines; the first is the header.
func table(name, header string, rows ...string) *generic.Table {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, strings.Split(r, ","))
	}
	return generic.NewTable(name, strings.Split(header, ","), data)
}

func products(rows ...string) *generic.Table {
	return table(generic.RecordSetProducts, "product_id,product_name,product_type,shelf_life_days", rows...)
}

func orders(rows ...string) *generic.Table {
	return table(generic.RecordSetOrders, "order_id,customer_name,order_date", rows...)
}

func items(rows ...string) *generic.Table {
	return table(generic.RecordSetItems, "order_id,product_id,quantity", rows...)
}

// sampleDataset has one product per category and two customers.
func sampleDataset() generic.Dataset {
	return generic.Dataset{
		Products: products(
			"P1,Filter,consumable,10",
			"P2,Kettle,durable,",
			"P3,Mug,,",
		),
		Orders: orders(
			"O1,Ayşe,2024-01-01",
			"O2,Ayşe,2023-12-01",
			"O3,Mehmet,2024-01-01",
		),
		Items: items(
			"O1,P1,1",
			"O2,P1,2",
			"O3,P2,1",
			"O3,P3,1",
		),
	}
}
