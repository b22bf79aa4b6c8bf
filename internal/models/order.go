package models

import (
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the on-disk layout of Order.CreatedAt.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a wall-clock time that serializes as "YYYY-MM-DD HH:MM:SS".
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Format(TimestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", s)
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s[1:len(s)-1], time.Local)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", s, err)
	}
	t.Time = parsed
	return nil
}

type Order struct {
	OrderNumber int         `json:"order_number"`
	Items       []OrderLine `json:"items"`
	Total       int         `json:"total"`
	Staff       string      `json:"staff"`
	Paid        bool        `json:"paid"`
	CreatedAt   Timestamp   `json:"date"`
}

type OrderStatus string

const (
	OrderUnpaid OrderStatus = "unpaid"
	OrderPaid   OrderStatus = "paid"
)

func (o Order) Status() OrderStatus {
	if o.Paid {
		return OrderPaid
	}
	return OrderUnpaid
}

// Validate checks the shape of a persisted order record.
func (o Order) Validate() error {
	if o.OrderNumber <= 0 {
		return fmt.Errorf("order_number must be positive, got %d", o.OrderNumber)
	}
	for _, line := range o.Items {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("order %d: %w", o.OrderNumber, err)
		}
	}
	if o.Total < 0 {
		return errors.New("total must not be negative")
	}
	return nil
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderLine(nil), o.Items...)
	return c
}
