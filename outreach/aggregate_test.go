package outreach_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/outreach"
)

func aggregate(t *testing.T, ds generic.Dataset) ([]outreach.LastPurchase, error) {
	t.Helper()
	require.NoError(t, outreach.ValidateColumns(ds))
	catalog, err := outreach.DecodeCatalog(ds.Products)
	if err != nil {
		return nil, err
	}
	orders, err := outreach.DecodeOrders(ds.Orders)
	if err != nil {
		return nil, err
	}
	return outreach.Aggregate(catalog, orders, outreach.DecodeItems(ds.Items))
}

// =============================================================================
// COLUMN VALIDATION TESTS
// =============================================================================

func TestValidateColumns_NamesEveryMissingField(t *testing.T) {
	// GIVEN: Orders without customer_name and order_date
	// WHEN: Validating
	// THEN: MissingColumnError lists both, sorted

	ds := sampleDataset()
	ds.Orders = table(generic.RecordSetOrders, "order_id,date", "O1,2024-01-01")

	err := outreach.ValidateColumns(ds)

	var missing *generic.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, generic.RecordSetOrders, missing.RecordSet)
	assert.Equal(t, []string{"customer_name", "order_date"}, missing.Missing)
	assert.ErrorIs(t, err, generic.ErrMissingColumn)
}

func TestValidateColumns_ShelfLifeIsOptional(t *testing.T) {
	ds := sampleDataset()
	ds.Products = table(generic.RecordSetProducts, "product_id,product_name,product_type", "P1,Filter,consumable")

	assert.NoError(t, outreach.ValidateColumns(ds))
}

func TestValidateColumns_QuantityRequired(t *testing.T) {
	ds := sampleDataset()
	ds.Items = table(generic.RecordSetItems, "order_id,product_id", "O1,P1")

	err := outreach.ValidateColumns(ds)

	var missing *generic.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, generic.RecordSetItems, missing.RecordSet)
	assert.Equal(t, []string{"quantity"}, missing.Missing)
}

func TestValidateColumns_NilTable(t *testing.T) {
	ds := sampleDataset()
	ds.Products = nil

	assert.ErrorIs(t, outreach.ValidateColumns(ds), generic.ErrMissingColumn)
}

func TestValidateColumns_FieldOrderIrrelevant(t *testing.T) {
	ds := sampleDataset()
	ds.Items = table(generic.RecordSetItems, "quantity,product_id,order_id", "1,P1,O1")

	assert.NoError(t, outreach.ValidateColumns(ds))
	purchases, err := aggregate(t, ds)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, outreach.ProductID("P1"), purchases[0].ProductID)
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestAggregate_KeepsLatestOrderDate(t *testing.T) {
	// GIVEN: Ayşe bought P1 on 2023-12-01 and 2024-01-01 (listed newest first)
	// WHEN: Aggregating
	// THEN: One record with 2024-01-01

	purchases, err := aggregate(t, sampleDataset())
	require.NoError(t, err)

	require.Len(t, purchases, 3)
	assert.Equal(t, outreach.LastPurchase{
		CustomerName: "Ayşe", ProductID: "P1", ProductName: "Filter", ProductType: "consumable",
		LastOrderDate: date(2024, time.January, 1),
	}, purchases[0])
}

func TestAggregate_MaximumRegardlessOfRowOrder(t *testing.T) {
	ds := generic.Dataset{
		Products: products("P1,Filter,consumable,10"),
		Orders: orders(
			"O1,Ayşe,2024-03-05",
			"O2,Ayşe,2024-01-01",
			"O3,Ayşe,2024-05-20",
			"O4,Ayşe,2024-02-10",
		),
		Items: items("O2,P1,1", "O3,P1,1", "O1,P1,1", "O4,P1,1"),
	}

	purchases, err := aggregate(t, ds)
	require.NoError(t, err)

	require.Len(t, purchases, 1)
	assert.Equal(t, date(2024, time.May, 20), purchases[0].LastOrderDate)
}

func TestAggregate_SeparatesCustomersAndProducts(t *testing.T) {
	purchases, err := aggregate(t, sampleDataset())
	require.NoError(t, err)

	var keys []string
	for _, p := range purchases {
		keys = append(keys, p.CustomerName+"/"+string(p.ProductID))
	}
	assert.Equal(t, []string{"Ayşe/P1", "Mehmet/P2", "Mehmet/P3"}, keys)
}

func TestAggregate_UnknownOrderIsDangling(t *testing.T) {
	// GIVEN: An item referencing order O9 which doesn't exist
	// THEN: DanglingReferenceError naming orders/order_id/O9, no records

	ds := sampleDataset()
	ds.Items = items("O1,P1,1", "O9,P1,1")

	purchases, err := aggregate(t, ds)

	assert.Nil(t, purchases)
	var dangling *generic.DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, generic.RecordSetOrders, dangling.Target)
	assert.Equal(t, "order_id", dangling.Column)
	assert.Equal(t, "O9", dangling.Key)
	assert.Equal(t, 2, dangling.Row)
	assert.ErrorIs(t, err, generic.ErrDataIntegrity)
}

func TestAggregate_UnknownProductIsDangling(t *testing.T) {
	ds := sampleDataset()
	ds.Items = items("O1,P404,1")

	_, err := aggregate(t, ds)

	var dangling *generic.DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, generic.RecordSetProducts, dangling.Target)
	assert.Equal(t, "P404", dangling.Key)
}

func TestAggregate_BlankNamesAreUnresolved(t *testing.T) {
	// GIVEN: An order without a customer name, or a product without a name
	// WHEN: Aggregating
	// THEN: DanglingReferenceError naming the blank field, no records

	cases := map[string]struct {
		mutate func(*generic.Dataset)
		target string
		column string
		key    string
	}{
		"blank customer": {
			mutate: func(ds *generic.Dataset) { ds.Orders = orders("O1,,2024-01-01", "O2,Ayşe,2023-12-01", "O3,Mehmet,2024-01-01") },
			target: generic.RecordSetOrders, column: "customer_name", key: "O1",
		},
		"whitespace customer": {
			mutate: func(ds *generic.Dataset) { ds.Orders = orders("O1,Ayşe,2024-01-01", "O2,Ayşe,2023-12-01", "O3,  ,2024-01-01") },
			target: generic.RecordSetOrders, column: "customer_name", key: "O3",
		},
		"blank product name": {
			mutate: func(ds *generic.Dataset) { ds.Products = products("P1,Filter,consumable,10", "P2,,durable,", "P3,Mug,,") },
			target: generic.RecordSetProducts, column: "product_name", key: "P2",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ds := sampleDataset()
			tc.mutate(&ds)

			purchases, err := aggregate(t, ds)

			assert.Nil(t, purchases)
			var dangling *generic.DanglingReferenceError
			require.ErrorAs(t, err, &dangling)
			assert.Equal(t, tc.target, dangling.Target)
			assert.Equal(t, tc.column, dangling.Column)
			assert.Equal(t, tc.key, dangling.Key)
			assert.ErrorIs(t, err, generic.ErrDataIntegrity)
		})
	}
}

func TestDecodeCatalog_DuplicateProductID(t *testing.T) {
	_, err := outreach.DecodeCatalog(products("P1,Filter,consumable,10", "P1,Other,durable,"))

	var dup *generic.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "P1", dup.Key)
	assert.Equal(t, []int{1, 2}, dup.Rows)
	assert.ErrorIs(t, err, generic.ErrDataIntegrity)
}

func TestDecodeOrders_DuplicateOrderID(t *testing.T) {
	_, err := outreach.DecodeOrders(orders("O1,Ayşe,2024-01-01", "O1,Mehmet,2024-01-02"))

	assert.ErrorIs(t, err, generic.ErrDataIntegrity)
}

func TestDecodeOrders_StrictDates(t *testing.T) {
	for _, bad := range []string{"2024-1-1", "01/01/2024", "2024-01-01T00:00:00", "", "2024-02-30"} {
		_, err := outreach.DecodeOrders(orders("O1,Ayşe," + bad))

		var parseErr *generic.DateParseError
		require.ErrorAs(t, err, &parseErr, "value %q", bad)
		assert.Equal(t, bad, parseErr.Value)
		assert.Contains(t, parseErr.Field, "order_date")
	}
}

func TestDecodeItems_QuantityIsOptionalNumeric(t *testing.T) {
	decoded := outreach.DecodeItems(items("O1,P1,2", "O1,P2,two"))

	require.Len(t, decoded, 2)
	assert.True(t, decoded[0].Quantity.Valid)
	assert.Equal(t, "2", decoded[0].Quantity.Decimal.String())
	assert.False(t, decoded[1].Quantity.Valid)
}
