package migrations

import (
	"fmt"

	"counter_pos/internal/models"
	"counter_pos/internal/repository"
	"counter_pos/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the users, orders and order_items tables.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("running database migrations")
	if err := db.AutoMigrate(repository.Records()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// EnsureDefaultAdmin creates the first administrator when the directory is
// empty. It is a no-op once any user exists.
func EnsureDefaultAdmin(directory services.UserDirectory, username, password string, logger *zap.Logger) (bool, error) {
	if directory.Count() > 0 {
		return false, nil
	}

	if err := directory.AddUser(username, password, models.Admin); err != nil {
		return false, fmt.Errorf("failed to create default admin: %w", err)
	}

	logger.Warn("created default admin user, change its password",
		zap.String("username", username))
	return true, nil
}
