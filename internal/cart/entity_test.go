// AngelaMos | 2026
// entity_test.go

package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMergesAndKeepsSnapshot(t *testing.T) {
	c := &Cart{}
	c.Add("p1", "Concha", 1500, 2)
	c.Add("p1", "Concha", 9999, 1)
	c.Add("p2", "Flan", 3000, 1)
	c.Recompute()

	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, int64(1500), c.Items[0].UnitPrice)
	assert.Equal(t, int64(4500), c.Items[0].Subtotal)
	assert.Equal(t, int64(7500), c.Total)
}

func TestSetQuantityRemovesAtZeroOrBelow(t *testing.T) {
	for _, qty := range []int{0, -3} {
		c := &Cart{}
		c.Add("p1", "Concha", 1500, 2)
		c.Add("p2", "Flan", 3000, 1)

		assert.True(t, c.SetQuantity("p1", qty))
		c.Recompute()
		require.Len(t, c.Items, 1)
		assert.Equal(t, "p2", c.Items[0].ProductID)
		assert.Equal(t, int64(3000), c.Total)
	}
}

func TestUnknownLinesReportFalse(t *testing.T) {
	c := &Cart{}
	c.Add("p1", "Concha", 1500, 1)

	assert.False(t, c.SetQuantity("nope", 2))
	assert.False(t, c.Remove("nope"))
	assert.True(t, c.Remove("p1"))
	assert.Empty(t, c.Items)
}

func TestRecomputeIgnoresStaleSubtotals(t *testing.T) {
	c := &Cart{Items: Items{
		{ProductID: "p1", Quantity: 2, UnitPrice: 1000, Subtotal: 1},
		{ProductID: "p2", Quantity: 1, UnitPrice: 250, Subtotal: 99999},
	}}
	c.Recompute()

	assert.Equal(t, int64(2000), c.Items[0].Subtotal)
	assert.Equal(t, int64(2250), c.Total)

	c.Clear()
	c.Recompute()
	assert.Zero(t, c.Total)
}

func TestItemsJSONB(t *testing.T) {
	v, err := Items(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	raw, err := json.Marshal(Items{{ProductID: "p1", Name: "Concha", Quantity: 2, UnitPrice: 1500, Subtotal: 3000}})
	require.NoError(t, err)

	var it Items
	require.NoError(t, it.Scan(raw))
	require.Len(t, it, 1)
	assert.Equal(t, "Concha", it[0].Name)

	require.NoError(t, it.Scan(nil))
	assert.Empty(t, it)

	assert.Error(t, it.Scan(42))
}
