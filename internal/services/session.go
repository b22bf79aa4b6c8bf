package services

import (
	"time"

	"counter_pos/internal/models"
)

// Session is one staff member's authenticated use of the counter. It owns
// the in-progress cart.
type Session struct {
	ID        string
	User      models.User
	Cart      *Cart
	CreatedAt time.Time
}

func NewSession(id string, user models.User) *Session {
	return &Session{ID: id, User: user, Cart: NewCart(), CreatedAt: time.Now()}
}

func (s *Session) IsAdmin() bool {
	return s.User.IsAdmin()
}

func (s *Session) RequireAdmin() error {
	if !s.IsAdmin() {
		return ErrPermission
	}
	return nil
}

// Submit records the cart as an unpaid order and clears it.
func (s *Session) Submit(ledger OrderLedger) (models.Order, error) {
	return s.finalize(ledger, false)
}

// Checkout records the cart as a paid order and clears it.
func (s *Session) Checkout(ledger OrderLedger) (models.Order, error) {
	return s.finalize(ledger, true)
}

func (s *Session) finalize(ledger OrderLedger, paid bool) (models.Order, error) {
	order, err := ledger.Finalize(s.Cart.Snapshot(), s.User.Username, paid)
	if err != nil {
		return models.Order{}, err
	}
	s.Cart.Clear()
	return order, nil
}

// AddUser is the administrative add-user path.
func (s *Session) AddUser(dir UserDirectory, username, password string, permission models.Permission) error {
	if err := s.RequireAdmin(); err != nil {
		return err
	}
	return dir.AddUser(username, password, permission)
}

func (s *Session) DeleteUser(dir UserDirectory, username string) error {
	return dir.DeleteUser(username, s.User)
}
