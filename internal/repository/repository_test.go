package repository

import (
	"testing"
	"time"

	"counter_pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRecordConversion(t *testing.T) {
	order := models.Order{
		OrderNumber: 5,
		Items: []models.OrderLine{
			{Name: "Latte", Price: 5, Count: 2},
			{Name: "Scone", Price: 3, Count: 1},
		},
		Total:     13,
		Staff:     "bob",
		Paid:      true,
		CreatedAt: models.NewTimestamp(time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)),
	}

	rec := newOrderRecord(order)
	require.Len(t, rec.Items, 2)
	assert.Equal(t, 1, rec.Items[1].Position)
	assert.Equal(t, 5, rec.Items[1].OrderNumber)

	back := rec.toModel()
	assert.Equal(t, order.Items, back.Items)
	assert.Equal(t, order.Total, back.Total)
	assert.Equal(t, order.Staff, back.Staff)
	assert.True(t, back.Paid)
	assert.Equal(t, order.CreatedAt.String(), back.CreatedAt.String())
}

func TestOrderRecordWithoutDate(t *testing.T) {
	back := orderRecord{OrderNumber: 1}.toModel()
	assert.True(t, back.CreatedAt.IsZero())
	assert.Empty(t, back.Items)
}

func TestRecordsCoverAllTables(t *testing.T) {
	tables := map[string]bool{}
	for _, r := range Records() {
		if n, ok := r.(interface{ TableName() string }); ok {
			tables[n.TableName()] = true
		}
	}
	assert.Equal(t, map[string]bool{"users": true, "orders": true, "order_items": true}, tables)
}
