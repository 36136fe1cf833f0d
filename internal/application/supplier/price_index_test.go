package supplier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
)

const primaryPhone = "+919971129359"

func defaultIndex() *PriceIndex {
	return NewPriceIndex(DefaultSuppliers(), primaryPhone)
}

func TestCheapestPicksLowestPrice(t *testing.T) {
	q := defaultIndex().Cheapest("आटा", "kg")
	require.NotNil(t, q)
	assert.Equal(t, "Supplier B", q.SupplierName)
	assert.True(t, q.PricePerUnit.Equal(decimal.NewFromInt(28)))
}

func TestCheapestRequiresExactUnit(t *testing.T) {
	assert.Nil(t, defaultIndex().Cheapest("चावल", "litre"))
	assert.NotNil(t, defaultIndex().Cheapest("चावल", "kg"))
	// unit comparison is case-insensitive
	assert.NotNil(t, defaultIndex().Cheapest("चावल", "KG"))
}

func TestCheapestUnknownItem(t *testing.T) {
	assert.Nil(t, defaultIndex().Cheapest("साबुन", "kg"))
}

func TestCheapestTieBreakPrefersPrimarySupplier(t *testing.T) {
	price := decimal.NewFromInt(50)
	idx := NewPriceIndex([]entity.Supplier{
		{Name: "Other", Phone: "+911111111111", Items: []entity.SupplierItem{
			{ItemName: "चावल", Unit: "kg", PricePerUnit: price},
		}},
		{Name: "Primary", Phone: primaryPhone, Items: []entity.SupplierItem{
			{ItemName: "चावल", Unit: "kg", PricePerUnit: price},
		}},
	}, primaryPhone)

	q := idx.Cheapest("चावल", "kg")
	require.NotNil(t, q)
	assert.Equal(t, "Primary", q.SupplierName)
}

func TestFindSupplierFuzzyName(t *testing.T) {
	idx := defaultIndex()

	sup := idx.FindSupplier("supplier a")
	require.NotNil(t, sup)
	assert.Equal(t, "Supplier A", sup.Name)

	// minor noise still resolves
	sup = idx.FindSupplier("Suplier B")
	require.NotNil(t, sup)
	assert.Equal(t, "Supplier B", sup.Name)

	assert.Nil(t, idx.FindSupplier("Mehta Traders"))
}
