package generic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_LookupByHeader(t *testing.T) {
	// GIVEN: A table whose header has padding and a short second row
	// WHEN: Reading values by field name
	// THEN: Names are trimmed, short rows read as empty

	tbl := NewTable(RecordSetProducts,
		[]string{" product_id", "product_name ", "shelf_life_days"},
		[][]string{{"P1", "Filter", "10"}, {"P2"}},
	)

	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Has(ColProductID))
	assert.Equal(t, "Filter", tbl.Value(0, ColProductName))
	assert.Equal(t, "", tbl.Value(1, ColProductName))
	assert.Equal(t, "", tbl.Value(0, ColProductType))

	v, ok := tbl.Lookup(0, ColShelfLifeDays)
	assert.True(t, ok)
	assert.Equal(t, "10", v)

	_, ok = tbl.Lookup(0, ColProductType)
	assert.False(t, ok)
}

func TestTable_RequireListsAllMissing(t *testing.T) {
	tbl := NewTable(RecordSetItems, []string{"order_id"}, nil)

	err := tbl.Require(ColOrderID, ColQuantity, ColProductID)

	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{ColProductID, ColQuantity}, missing.Missing)
	assert.Equal(t, "order_items missing columns: product_id, quantity", err.Error())
	assert.True(t, IsDataError(err))
	assert.False(t, IsClientError(err))
}

func TestTable_RequireSatisfied(t *testing.T) {
	tbl := NewTable(RecordSetOrders, []string{ColCustomerName, ColOrderDate, ColOrderID, "channel"}, nil)
	assert.NoError(t, tbl.Require(ColOrderID, ColCustomerName, ColOrderDate))
}

func TestErrors_Classification(t *testing.T) {
	dangling := &DanglingReferenceError{RecordSet: RecordSetItems, Row: 3, Target: RecordSetOrders, Column: ColOrderID, Key: "O9"}
	assert.Equal(t, `order_items row 3: order_id "O9" not found in orders`, dangling.Error())
	assert.True(t, IsDataError(dangling))

	dup := &DuplicateKeyError{RecordSet: RecordSetProducts, Column: ColProductID, Key: "P1", Rows: []int{1, 4}}
	assert.ErrorIs(t, dup, ErrDataIntegrity)

	cfg := &ConfigError{Field: "locale", Reason: "unknown"}
	assert.True(t, IsClientError(cfg))
	assert.False(t, IsDataError(cfg))

	wrapped := errors.Join(errors.New("archive"), ErrPlanRunNotFound)
	assert.True(t, IsNotFound(wrapped))
}
