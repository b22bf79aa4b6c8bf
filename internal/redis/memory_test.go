package redis

import (
	"context"
	"testing"
	"time"

	"counter_pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()

	data := &SessionData{
		ID:         "s1",
		Username:   "carol",
		Permission: models.Waiter,
		Cart:       []models.OrderLine{{Name: "Tea", Price: 3, Count: 2}},
	}
	require.NoError(t, m.SetSession(ctx, "s1", data, time.Hour))

	// Mutating the caller's copy must not leak into the stored session.
	data.Cart[0].Count = 99

	got, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Username)
	assert.Equal(t, 2, got.Cart[0].Count)

	require.NoError(t, m.DeleteSession(ctx, "s1"))
	_, err = m.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryClientExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.SetSession(ctx, "s1", &SessionData{ID: "s1"}, time.Minute))

	now = now.Add(59 * time.Second)
	_, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}
