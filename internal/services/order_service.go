package services

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"counter_pos/internal/metrics"
	"counter_pos/internal/models"
	"counter_pos/internal/store"

	"go.uber.org/zap"
)

type OrderLedger interface {
	Finalize(snapshot []models.OrderLine, staff string, paid bool) (models.Order, error)
	MarkPaid(orderNumber int) error
	MarkUnpaid(orderNumber int) error
	Cancel(orderNumber int) error
	ListOrders() []models.Order
	GetOrder(orderNumber int) (models.Order, error)
	OrdersByStaff(staff string) []models.Order
	NextOrderNumber() int
	TotalRevenue() int
	OutstandingTotal() int
}

type LedgerOption func(*orderLedger)

// WithClock overrides the source of order creation times.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *orderLedger) { l.now = now }
}

type orderLedger struct {
	mu       sync.Mutex
	store    store.Store[models.Order]
	orders   []models.Order
	next     int
	notifier OrderNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderLedger loads the order history and resumes numbering after the
// highest stored order number.
func NewOrderLedger(s store.Store[models.Order], notifier OrderNotifier, logger *zap.Logger, opts ...LedgerOption) (OrderLedger, error) {
	if notifier == nil {
		notifier = NoopNotifier()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	loaded, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	orders := make([]models.Order, 0, len(loaded))
	seen := make(map[int]bool, len(loaded))
	maxNumber := 0
	for _, o := range loaded {
		if seen[o.OrderNumber] {
			logger.Warn("ignoring duplicate order record", zap.Int("order_number", o.OrderNumber))
			continue
		}
		seen[o.OrderNumber] = true
		orders = append(orders, o)
		if o.OrderNumber > maxNumber {
			maxNumber = o.OrderNumber
		}
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].OrderNumber < orders[j].OrderNumber })

	// Numbers held by records the store dropped stay taken.
	if r, ok := s.(store.RejectReporter[models.Order]); ok {
		for _, o := range r.Rejected() {
			if o.OrderNumber > maxNumber {
				maxNumber = o.OrderNumber
			}
		}
	}

	l := &orderLedger{
		store:    s,
		orders:   orders,
		next:     maxNumber + 1,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	logger.Info("order ledger loaded", zap.Int("orders", len(orders)), zap.Int("next_order_number", l.next))
	return l, nil
}

// Finalize records a non-empty cart snapshot as a new order. The caller
// clears its cart once Finalize succeeds.
func (l *orderLedger) Finalize(snapshot []models.OrderLine, staff string, paid bool) (models.Order, error) {
	if len(snapshot) == 0 {
		return models.Order{}, ErrEmptyCart
	}
	seen := make(map[string]bool, len(snapshot))
	for _, line := range snapshot {
		if err := line.Validate(); err != nil {
			return models.Order{}, &ValidationError{Field: "items", Message: err.Error()}
		}
		if seen[line.Name] {
			return models.Order{}, newValidationError("items", "duplicate line %q", line.Name)
		}
		seen[line.Name] = true
	}

	order, err := l.appendOrder(snapshot, staff, paid)
	if err != nil {
		return models.Order{}, err
	}

	metrics.OrdersFinalized.WithLabelValues(strconv.FormatBool(paid)).Inc()
	metrics.OrderValue.Observe(float64(order.Total))
	l.logger.Info("order finalized",
		zap.Int("order_number", order.OrderNumber),
		zap.Int("total", order.Total),
		zap.String("staff", staff),
		zap.Bool("paid", paid))
	l.notify(EventOrderFinalized, order)

	return order.Clone(), nil
}

func (l *orderLedger) appendOrder(snapshot []models.OrderLine, staff string, paid bool) (models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order := models.Order{
		OrderNumber: l.next,
		Items:       append([]models.OrderLine(nil), snapshot...),
		Total:       models.LinesTotal(snapshot),
		Staff:       staff,
		Paid:        paid,
		CreatedAt:   models.NewTimestamp(l.now()),
	}

	next := append(append(make([]models.Order, 0, len(l.orders)+1), l.orders...), order)
	if err := l.store.Save(next); err != nil {
		return models.Order{}, fmt.Errorf("failed to save order %d: %w", order.OrderNumber, err)
	}
	l.orders = next
	l.next++
	return order.Clone(), nil
}

func (l *orderLedger) MarkPaid(orderNumber int) error {
	return l.setPaid(orderNumber, true)
}

// MarkUnpaid undoes a payment, however long ago it was recorded.
func (l *orderLedger) MarkUnpaid(orderNumber int) error {
	return l.setPaid(orderNumber, false)
}

func (l *orderLedger) setPaid(orderNumber int, paid bool) error {
	order, err := l.storePaid(orderNumber, paid)
	if err != nil {
		return err
	}

	status := order.Status()
	metrics.PaymentUpdates.WithLabelValues(string(status)).Inc()
	l.logger.Info("order payment updated", zap.Int("order_number", orderNumber), zap.String("status", string(status)))

	event := EventOrderPaid
	if !paid {
		event = EventOrderUnpaid
	}
	l.notify(event, order)
	return nil
}

func (l *orderLedger) storePaid(orderNumber int, paid bool) (models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(orderNumber)
	if i < 0 {
		return models.Order{}, fmt.Errorf("order %d: %w", orderNumber, ErrNotFound)
	}

	next := append([]models.Order(nil), l.orders...)
	next[i].Paid = paid
	if err := l.store.Save(next); err != nil {
		return models.Order{}, fmt.Errorf("failed to save order %d: %w", orderNumber, err)
	}
	l.orders = next
	return next[i].Clone(), nil
}

// Cancel permanently removes an unpaid order. Paid orders must be marked
// unpaid first.
func (l *orderLedger) Cancel(orderNumber int) error {
	cancelled, err := l.remove(orderNumber)
	if err != nil {
		return err
	}

	metrics.OrdersCancelled.Inc()
	l.logger.Info("order cancelled", zap.Int("order_number", orderNumber))
	l.notify(EventOrderCancelled, cancelled)
	return nil
}

func (l *orderLedger) remove(orderNumber int) (models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(orderNumber)
	if i < 0 {
		return models.Order{}, fmt.Errorf("order %d: %w", orderNumber, ErrNotFound)
	}
	if l.orders[i].Paid {
		return models.Order{}, fmt.Errorf("order %d: %w", orderNumber, ErrAlreadyPaid)
	}

	cancelled := l.orders[i].Clone()
	next := make([]models.Order, 0, len(l.orders)-1)
	next = append(next, l.orders[:i]...)
	next = append(next, l.orders[i+1:]...)
	if err := l.store.Save(next); err != nil {
		return models.Order{}, fmt.Errorf("failed to save orders after cancelling %d: %w", orderNumber, err)
	}
	l.orders = next
	return cancelled, nil
}

// ListOrders returns every order, oldest first.
func (l *orderLedger) ListOrders() []models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = o.Clone()
	}
	return out
}

func (l *orderLedger) GetOrder(orderNumber int) (models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(orderNumber)
	if i < 0 {
		return models.Order{}, fmt.Errorf("order %d: %w", orderNumber, ErrNotFound)
	}
	return l.orders[i].Clone(), nil
}

func (l *orderLedger) OrdersByStaff(staff string) []models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.Order
	for _, o := range l.orders {
		if o.Staff == staff {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (l *orderLedger) NextOrderNumber() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next
}

// TotalRevenue sums the totals of paid orders.
func (l *orderLedger) TotalRevenue() int {
	return l.sumTotals(true)
}

// OutstandingTotal sums the totals of unpaid orders.
func (l *orderLedger) OutstandingTotal() int {
	return l.sumTotals(false)
}

func (l *orderLedger) sumTotals(paid bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	sum := 0
	for _, o := range l.orders {
		if o.Paid == paid {
			sum += o.Total
		}
	}
	return sum
}

func (l *orderLedger) indexOf(orderNumber int) int {
	i := sort.Search(len(l.orders), func(i int) bool { return l.orders[i].OrderNumber >= orderNumber })
	if i < len(l.orders) && l.orders[i].OrderNumber == orderNumber {
		return i
	}
	return -1
}

// notify runs without l.mu held so a slow broker never blocks the ledger.
func (l *orderLedger) notify(event OrderEvent, order models.Order) {
	if err := l.notifier.Notify(event, order); err != nil {
		l.logger.Error("failed to notify kitchen",
			zap.String("event", string(event)),
			zap.Int("order_number", order.OrderNumber),
			zap.Error(err))
	}
}
