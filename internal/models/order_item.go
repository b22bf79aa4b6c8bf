package models

import (
	"encoding/json"
	"fmt"
)

// OrderLine is one counted item of a cart snapshot or a stored order.
type OrderLine struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
	Count int    `json:"count"`
}

// UnmarshalJSON reads a line whose count key is absent as a single unit.
// An explicit count is kept as written.
func (l *OrderLine) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string `json:"name"`
		Price int    `json:"price"`
		Count *int   `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Name, l.Price, l.Count = raw.Name, raw.Price, 1
	if raw.Count != nil {
		l.Count = *raw.Count
	}
	return nil
}

func (l OrderLine) Subtotal() int {
	return l.Price * l.Count
}

func (l OrderLine) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if l.Price < 0 {
		return fmt.Errorf("item %q: price must not be negative", l.Name)
	}
	if l.Count < 1 {
		return fmt.Errorf("item %q: count must be at least 1", l.Name)
	}
	return nil
}

// LinesTotal sums price*count over lines.
func LinesTotal(lines []OrderLine) int {
	total := 0
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
