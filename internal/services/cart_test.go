package services

import (
	"math/rand"
	"testing"

	"counter_pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tea    = models.MenuItem{Name: "Tea", Price: 3}
	muffin = models.MenuItem{Name: "Muffin", Price: 6}
	scone  = models.MenuItem{Name: "Scone", Price: 3}
)

func TestCartAddItemCountsAndTotals(t *testing.T) {
	c := NewCart()
	c.AddItem(tea)
	c.AddItem(tea)
	c.AddItem(muffin)

	assert.Equal(t, []models.OrderLine{
		{Name: "Tea", Price: 3, Count: 2},
		{Name: "Muffin", Price: 6, Count: 1},
	}, c.Snapshot())
	assert.Equal(t, 12, c.Total())
	assert.Equal(t, 2, c.Len())
}

func TestCartDecrement(t *testing.T) {
	c := NewCart()
	c.AddItem(tea)
	c.AddItem(tea)
	c.AddItem(muffin)

	require.NoError(t, c.DecrementItem("Tea"))
	assert.Equal(t, 1, c.Count("Tea"))
	assert.Equal(t, 9, c.Total())

	require.NoError(t, c.DecrementItem("Tea"))
	assert.Equal(t, []models.OrderLine{{Name: "Muffin", Price: 6, Count: 1}}, c.Snapshot())
	assert.Equal(t, 6, c.Total())

	assert.ErrorIs(t, c.DecrementItem("Tea"), ErrNotFound)
}

func TestCartIncrementAndRemove(t *testing.T) {
	c := NewCart()
	c.AddItem(muffin)
	require.NoError(t, c.IncrementItem("Muffin"))
	require.NoError(t, c.IncrementItem("Muffin"))
	assert.Equal(t, 18, c.Total())

	assert.ErrorIs(t, c.IncrementItem("Tea"), ErrNotFound)
	assert.ErrorIs(t, c.RemoveItem("Tea"), ErrNotFound)

	require.NoError(t, c.RemoveItem("Muffin"))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Total())
}

func TestCartOrderingAfterReAdd(t *testing.T) {
	c := NewCart()
	c.AddItem(tea)
	c.AddItem(muffin)
	c.AddItem(scone)

	require.NoError(t, c.IncrementItem("Tea"))
	require.NoError(t, c.RemoveItem("Tea"))
	c.AddItem(tea)

	names := make([]string, 0, 3)
	for _, l := range c.Snapshot() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Muffin", "Scone", "Tea"}, names)
}

func TestCartClear(t *testing.T) {
	c := NewCart()
	c.AddItem(tea)
	c.AddItem(muffin)
	c.Clear()

	assert.Empty(t, c.Snapshot())
	assert.Equal(t, 0, c.Total())

	c.AddItem(scone)
	assert.Equal(t, 3, c.Total())
}

func TestCartSnapshotIsACopy(t *testing.T) {
	c := NewCart()
	c.AddItem(tea)

	snap := c.Snapshot()
	snap[0].Count = 50

	assert.Equal(t, 1, c.Count("Tea"))
	assert.Equal(t, 3, c.Total())
}

func TestCartTotalMatchesLinesUnderRandomOperations(t *testing.T) {
	items := []models.MenuItem{tea, muffin, scone, {Name: "Water", Price: 0}}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		c := NewCart()
		for step := 0; step < 200; step++ {
			item := items[rng.Intn(len(items))]
			switch rng.Intn(5) {
			case 0, 1:
				c.AddItem(item)
			case 2:
				_ = c.IncrementItem(item.Name)
			case 3:
				_ = c.DecrementItem(item.Name)
			case 4:
				_ = c.RemoveItem(item.Name)
			}

			snap := c.Snapshot()
			require.Equal(t, models.LinesTotal(snap), c.Total())
			for _, l := range snap {
				require.GreaterOrEqual(t, l.Count, 1)
			}
		}
	}
}

func TestRestoreCart(t *testing.T) {
	c, err := RestoreCart([]models.OrderLine{{Name: "Tea", Price: 3, Count: 2}, {Name: "Muffin", Price: 6, Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, 12, c.Total())

	c.AddItem(tea)
	assert.Equal(t, 3, c.Count("Tea"))

	_, err = RestoreCart([]models.OrderLine{{Name: "Tea", Price: 3, Count: 0}})
	assert.Error(t, err)

	_, err = RestoreCart([]models.OrderLine{{Name: "Tea", Price: 3, Count: 1}, {Name: "Tea", Price: 3, Count: 1}})
	assert.Error(t, err)
}
