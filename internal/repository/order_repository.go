package repository

import (
	"fmt"
	"sync"
	"time"

	"counter_pos/internal/models"
	"counter_pos/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type orderRecord struct {
	OrderNumber int               `gorm:"primaryKey;autoIncrement:false"`
	Total       int               `gorm:"not null"`
	Staff       string            `gorm:"index;not null"`
	Paid        bool              `gorm:"index;not null;default:false"`
	OrderDate   time.Time         `gorm:"column:order_date"`
	Items       []orderItemRecord `gorm:"foreignKey:OrderNumber;references:OrderNumber;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber int    `gorm:"index;not null"`
	Position    int    `gorm:"not null"`
	Name        string `gorm:"not null"`
	Price       int    `gorm:"not null"`
	Count       int    `gorm:"not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func newOrderRecord(o models.Order) orderRecord {
	r := orderRecord{
		OrderNumber: o.OrderNumber,
		Total:       o.Total,
		Staff:       o.Staff,
		Paid:        o.Paid,
		OrderDate:   o.CreatedAt.Time,
		Items:       make([]orderItemRecord, len(o.Items)),
	}
	for i, line := range o.Items {
		r.Items[i] = orderItemRecord{
			OrderNumber: o.OrderNumber,
			Position:    i,
			Name:        line.Name,
			Price:       line.Price,
			Count:       line.Count,
		}
	}
	return r
}

func (r orderRecord) toModel() models.Order {
	o := models.Order{
		OrderNumber: r.OrderNumber,
		Items:       make([]models.OrderLine, len(r.Items)),
		Total:       r.Total,
		Staff:       r.Staff,
		Paid:        r.Paid,
	}
	if !r.OrderDate.IsZero() {
		o.CreatedAt = models.NewTimestamp(r.OrderDate.In(time.Local))
	}
	for i, item := range r.Items {
		o.Items[i] = models.OrderLine{Name: item.Name, Price: item.Price, Count: item.Count}
	}
	return o
}

// OrderRepository keeps the order ledger in PostgreSQL. It satisfies
// store.Store[models.Order].
type OrderRepository struct {
	db     *gorm.DB
	logger *zap.Logger

	mu       sync.Mutex
	rejected []models.Order
}

var (
	_ store.Store[models.Order]          = (*OrderRepository)(nil)
	_ store.RejectReporter[models.Order] = (*OrderRepository)(nil)
)

func NewOrderRepository(db *gorm.DB, logger *zap.Logger) *OrderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderRepository{db: db, logger: logger}
}

func (r *OrderRepository) Load() ([]models.Order, error) {
	var records []orderRecord
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("order_number").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var rejected []models.Order
	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		o := rec.toModel()
		if err := o.Validate(); err != nil {
			r.logger.Warn("skipping invalid order row", zap.Int("order_number", rec.OrderNumber), zap.Error(err))
			rejected = append(rejected, o)
			continue
		}
		orders = append(orders, o)
	}

	r.mu.Lock()
	r.rejected = rejected
	r.mu.Unlock()
	return orders, nil
}

// Rejected returns the rows the last Load skipped as invalid.
func (r *OrderRepository) Rejected() []models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Order(nil), r.rejected...)
}

// Save replaces the stored ledger with orders in a single transaction.
func (r *OrderRepository) Save(orders []models.Order) error {
	records := make([]orderRecord, len(orders))
	for i, o := range orders {
		records[i] = newOrderRecord(o)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&orderItemRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&orderRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}
	return nil
}
