package repository

import (
	"fmt"

	"counter_pos/internal/models"
	"counter_pos/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userRecord struct {
	Username   string `gorm:"primaryKey"`
	Password   string `gorm:"not null"`
	Permission string `gorm:"not null;default:'Waiter'"`
	Position   int    `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

// UserRepository keeps the user directory in PostgreSQL. It satisfies
// store.Store[models.User].
type UserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ store.Store[models.User] = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB, logger *zap.Logger) *UserRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Load() ([]models.User, error) {
	var records []userRecord
	if err := r.db.Order("position").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	users := make([]models.User, 0, len(records))
	for _, rec := range records {
		u := models.User{Username: rec.Username, Password: rec.Password, Permission: models.Permission(rec.Permission)}
		if err := u.Validate(); err != nil {
			r.logger.Warn("skipping invalid user row", zap.String("username", rec.Username), zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// Save replaces the stored directory with users, keeping their order.
func (r *UserRepository) Save(users []models.User) error {
	records := make([]userRecord, len(users))
	for i, u := range users {
		records[i] = userRecord{Username: u.Username, Password: u.Password, Permission: string(u.Permission), Position: i}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&userRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

// Records lists the table models the repositories need migrated.
func Records() []interface{} {
	return []interface{}{&userRecord{}, &orderRecord{}, &orderItemRecord{}}
}
