package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"counter_pos/internal/models"
	"counter_pos/internal/services"
	"counter_pos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintOrders(t *testing.T) {
	var buf bytes.Buffer
	err := printOrders(&buf, []models.Order{{
		OrderNumber: 3,
		Items:       []models.OrderLine{{Name: "Tea", Price: 3, Count: 2}, {Name: "Muffin", Price: 6, Count: 1}},
		Total:       12,
		Staff:       "bob",
		Paid:        true,
		CreatedAt:   models.NewTimestamp(time.Date(2024, 3, 9, 14, 5, 30, 0, time.Local)),
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2024-03-09 14:05:30")
	assert.Contains(t, out, "2x Tea, 1x Muffin")
	assert.Contains(t, out, "$12")
	assert.Contains(t, out, "paid")
}

func TestPrintUsersMasksPasswords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsers(&buf, []models.User{{Username: "bob", Password: "abcd", Permission: models.Waiter}}))

	assert.Contains(t, buf.String(), "****")
	assert.NotContains(t, buf.String(), "abcd")
}

func TestRootCommandTree(t *testing.T) {
	root := rootCmd()
	for _, path := range [][]string{{"serve"}, {"migrate"}, {"menu"}, {"user", "add"}, {"user", "delete"}, {"orders", "cancel"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func setupStores(t *testing.T) (ordersPath, usersPath string) {
	t.Helper()
	dir := t.TempDir()
	ordersPath = filepath.Join(dir, "orders.json")
	usersPath = filepath.Join(dir, "users.json")

	require.NoError(t, store.NewFileStore[models.User](usersPath, nil).Save([]models.User{
		{Username: "alice", Password: "secret1", Permission: models.Admin},
		{Username: "bob", Password: "abcd", Permission: models.Waiter},
	}))
	require.NoError(t, store.NewFileStore[models.Order](ordersPath, nil).Save([]models.Order{
		{OrderNumber: 1, Items: []models.OrderLine{{Name: "Tea", Price: 3, Count: 1}}, Total: 3, Staff: "bob"},
	}))

	t.Setenv("STORE_DRIVER", "json")
	t.Setenv("ORDERS_FILE", ordersPath)
	t.Setenv("USERS_FILE", usersPath)
	t.Setenv("MENU_FILE", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	return ordersPath, usersPath
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestOrderCommandsRequireLogin(t *testing.T) {
	ordersPath, _ := setupStores(t)

	_, err := execute("orders", "cancel", "1")
	assert.ErrorIs(t, err, services.ErrAuthFailure)

	_, err = execute("orders", "paid", "1", "--as", "bob", "--password", "wrong")
	assert.ErrorIs(t, err, services.ErrAuthFailure)

	_, err = execute("orders", "list")
	assert.ErrorIs(t, err, services.ErrAuthFailure)

	orders, err := store.NewFileStore[models.Order](ordersPath, nil).Load()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.False(t, orders[0].Paid)

	out, err := execute("orders", "cancel", "1", "--as", "bob", "--password", "abcd")
	require.NoError(t, err)
	assert.Contains(t, out, "order 1: cancel by bob")

	orders, err = store.NewFileStore[models.Order](ordersPath, nil).Load()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUserCommandsRequireAdmin(t *testing.T) {
	setupStores(t)

	_, err := execute("user", "list")
	assert.ErrorIs(t, err, services.ErrAuthFailure)

	_, err = execute("user", "list", "--as", "bob", "--password", "abcd")
	assert.ErrorIs(t, err, services.ErrPermission)

	out, err := execute("user", "list", "--as", "alice", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "bob")
	assert.NotContains(t, out, "secret1")
}
