package outreach

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/outreach-engine/generic"
)

// =============================================================================
// REQUIRED FIELDS
// =============================================================================

var (
	requiredProductColumns = []string{generic.ColProductID, generic.ColProductName, generic.ColProductType}
	requiredOrderColumns   = []string{generic.ColOrderID, generic.ColCustomerName, generic.ColOrderDate}
	requiredItemColumns    = []string{generic.ColOrderID, generic.ColProductID, generic.ColQuantity}
)

// ValidateColumns checks every record set for its required fields before
// anything is decoded. Sets are checked in the order products, orders, items.
func ValidateColumns(ds generic.Dataset) error {
	checks := []struct {
		name    string
		table   *generic.Table
		columns []string
	}{
		{generic.RecordSetProducts, ds.Products, requiredProductColumns},
		{generic.RecordSetOrders, ds.Orders, requiredOrderColumns},
		{generic.RecordSetItems, ds.Items, requiredItemColumns},
	}
	for _, c := range checks {
		if c.table == nil {
			missing := append([]string(nil), c.columns...)
			sort.Strings(missing)
			return &generic.MissingColumnError{RecordSet: c.name, Missing: missing}
		}
		if err := c.table.Require(c.columns...); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// DECODING
// =============================================================================

// Catalog is the decoded product record set keyed by product id.
type Catalog struct {
	Products []Product
	byID     map[ProductID]int
}

// Get returns the product with the given id.
func (c *Catalog) Get(id ProductID) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.Products[i], true
}

// DecodeCatalog decodes products, rejecting duplicate ids.
func DecodeCatalog(t *generic.Table) (*Catalog, error) {
	c := &Catalog{
		Products: make([]Product, 0, t.Len()),
		byID:     make(map[ProductID]int, t.Len()),
	}
	firstRow := make(map[ProductID]int, t.Len())
	for i := 0; i < t.Len(); i++ {
		id := ProductID(strings.TrimSpace(t.Value(i, generic.ColProductID)))
		if prev, dup := firstRow[id]; dup {
			return nil, &generic.DuplicateKeyError{
				RecordSet: t.Name, Column: generic.ColProductID, Key: string(id), Rows: []int{prev, i + 1},
			}
		}
		firstRow[id] = i + 1

		shelf, _ := t.Lookup(i, generic.ColShelfLifeDays)
		raw := t.Value(i, generic.ColProductType)
		c.byID[id] = len(c.Products)
		c.Products = append(c.Products, Product{
			ID:           id,
			Name:         t.Value(i, generic.ColProductName),
			Type:         raw,
			Category:     ParseCategory(raw),
			ShelfLifeRaw: shelf,
		})
	}
	return c, nil
}

// DecodeOrders decodes orders. Every order date is parsed strictly, whether
// or not any item references the order.
func DecodeOrders(t *generic.Table) (map[OrderID]Order, error) {
	orders := make(map[OrderID]Order, t.Len())
	firstRow := make(map[OrderID]int, t.Len())
	for i := 0; i < t.Len(); i++ {
		id := OrderID(strings.TrimSpace(t.Value(i, generic.ColOrderID)))
		if prev, dup := firstRow[id]; dup {
			return nil, &generic.DuplicateKeyError{
				RecordSet: t.Name, Column: generic.ColOrderID, Key: string(id), Rows: []int{prev, i + 1},
			}
		}
		firstRow[id] = i + 1

		field := fmt.Sprintf("%s row %d %s", t.Name, i+1, generic.ColOrderDate)
		date, err := generic.ParseDate(field, t.Value(i, generic.ColOrderDate))
		if err != nil {
			return nil, err
		}
		orders[id] = Order{
			ID:           id,
			CustomerName: t.Value(i, generic.ColCustomerName),
			Date:         date,
		}
	}
	return orders, nil
}

// DecodeItems decodes order items.
func DecodeItems(t *generic.Table) []OrderItem {
	items := make([]OrderItem, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		var qty decimal.NullDecimal
		if d, err := decimal.NewFromString(strings.TrimSpace(t.Value(i, generic.ColQuantity))); err == nil {
			qty = decimal.NullDecimal{Decimal: d, Valid: true}
		}
		items = append(items, OrderItem{
			Row:       i + 1,
			OrderID:   OrderID(strings.TrimSpace(t.Value(i, generic.ColOrderID))),
			ProductID: ProductID(strings.TrimSpace(t.Value(i, generic.ColProductID))),
			Quantity:  qty,
		})
	}
	return items
}

// =============================================================================
// AGGREGATION - Last purchase per customer x product
// =============================================================================

type purchaseKey struct {
	customer    string
	productID   ProductID
	productName string
	productType string
}

// Aggregate joins items to orders and products and keeps the latest order
// date per (customer, product id, product name, product type). Any item
// whose order or product does not resolve, or resolves to a blank customer
// or product name, aborts the whole aggregation.
//
// The result is sorted by customer then product id.
func Aggregate(catalog *Catalog, orders map[OrderID]Order, items []OrderItem) ([]LastPurchase, error) {
	latest := make(map[purchaseKey]generic.Date)
	for _, item := range items {
		order, ok := orders[item.OrderID]
		if !ok {
			return nil, &generic.DanglingReferenceError{
				RecordSet: generic.RecordSetItems, Row: item.Row,
				Target: generic.RecordSetOrders, Column: generic.ColOrderID, Key: string(item.OrderID),
			}
		}
		product, ok := catalog.Get(item.ProductID)
		if !ok {
			return nil, &generic.DanglingReferenceError{
				RecordSet: generic.RecordSetItems, Row: item.Row,
				Target: generic.RecordSetProducts, Column: generic.ColProductID, Key: string(item.ProductID),
			}
		}

		if strings.TrimSpace(order.CustomerName) == "" {
			return nil, &generic.DanglingReferenceError{
				RecordSet: generic.RecordSetItems, Row: item.Row,
				Target: generic.RecordSetOrders, Column: generic.ColCustomerName, Key: string(item.OrderID),
			}
		}
		if strings.TrimSpace(product.Name) == "" {
			return nil, &generic.DanglingReferenceError{
				RecordSet: generic.RecordSetItems, Row: item.Row,
				Target: generic.RecordSetProducts, Column: generic.ColProductName, Key: string(item.ProductID),
			}
		}

		k := purchaseKey{
			customer:    order.CustomerName,
			productID:   product.ID,
			productName: product.Name,
			productType: product.Type,
		}
		if prev, seen := latest[k]; seen {
			latest[k] = generic.MaxDate(prev, order.Date)
		} else {
			latest[k] = order.Date
		}
	}

	out := make([]LastPurchase, 0, len(latest))
	for k, d := range latest {
		out = append(out, LastPurchase{
			CustomerName:  k.customer,
			ProductID:     k.productID,
			ProductName:   k.productName,
			ProductType:   k.productType,
			LastOrderDate: d,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerName != out[j].CustomerName {
			return out[i].CustomerName < out[j].CustomerName
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}
