package migrations

import (
	"path/filepath"
	"testing"

	"counter_pos/internal/models"
	"counter_pos/internal/services"
	"counter_pos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDirectory(t *testing.T) services.UserDirectory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	dir, err := services.NewUserDirectory(store.NewFileStore[models.User](path, nil), nil)
	require.NoError(t, err)
	return dir
}

func TestEnsureDefaultAdmin(t *testing.T) {
	dir := newDirectory(t)

	created, err := EnsureDefaultAdmin(dir, "admin", "admin123", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, created)

	u, err := dir.Authenticate("admin", "admin123")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	created, err = EnsureDefaultAdmin(dir, "root", "other123", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, dir.Count())
}

func TestEnsureDefaultAdminRejectsBadPassword(t *testing.T) {
	dir := newDirectory(t)

	_, err := EnsureDefaultAdmin(dir, "admin", "x", zap.NewNop())
	require.Error(t, err)
	assert.True(t, services.IsValidation(err))
	assert.Equal(t, 0, dir.Count())
}
