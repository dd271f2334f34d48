/*
store.go - Input snapshot interface

PURPOSE:
  Defines the boundary between where order history lives (CSV files, a
  SQLite database, memory) and the planning engine. Every source hands
  back the same three raw record sets, so column validation and
  reference checks behave identically whatever the origin.

RECORD SETS:
  products:    product_id, product_name, product_type, [shelf_life_days]
  orders:      order_id, customer_name, order_date
  order_items: order_id, product_id, quantity

IMPLEMENTATIONS:
  - store/csvfile: Three CSV files read concurrently
  - store/sqlite:  Tables imported from a previous snapshot
  - store/memory:  In-memory, for tests and ephemeral servers

SEE ALSO:
  - table.go: Table and column validation
  - outreach/planner.go: Consumes a Dataset
*/
package generic

import "context"

// Record set names used in error messages and storage.
const (
	RecordSetProducts = "products"
	RecordSetOrders   = "orders"
	RecordSetItems    = "order_items"
)

// Field names forming the input contract.
const (
	ColProductID     = "product_id"
	ColProductName   = "product_name"
	ColProductType   = "product_type"
	ColShelfLifeDays = "shelf_life_days"
	ColOrderID       = "order_id"
	ColCustomerName  = "customer_name"
	ColOrderDate     = "order_date"
	ColQuantity      = "quantity"
)

// Dataset is one immutable snapshot of the three input record sets.
type Dataset struct {
	Products *Table
	Orders   *Table
	Items    *Table
}

// Source loads a dataset snapshot.
type Source interface {
	LoadDataset(ctx context.Context) (Dataset, error)
}
