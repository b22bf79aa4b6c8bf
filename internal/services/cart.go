package services

import (
	"fmt"

	"counter_pos/internal/models"
)

type cartLine struct {
	item  models.MenuItem
	count int
}

// Cart accumulates menu selections into counted lines and a running total.
// Lines keep the order in which their item was first added; a line always
// holds at least one unit.
type Cart struct {
	order []string
	lines map[string]*cartLine
	total int
}

func NewCart() *Cart {
	return &Cart{lines: make(map[string]*cartLine)}
}

// RestoreCart rebuilds a cart from a snapshot taken with Snapshot.
func RestoreCart(snapshot []models.OrderLine) (*Cart, error) {
	c := NewCart()
	for _, l := range snapshot {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("restore cart: %w", err)
		}
		if _, dup := c.lines[l.Name]; dup {
			return nil, fmt.Errorf("restore cart: duplicate line %q", l.Name)
		}
		c.order = append(c.order, l.Name)
		c.lines[l.Name] = &cartLine{item: models.MenuItem{Name: l.Name, Price: l.Price}, count: l.Count}
		c.total += l.Subtotal()
	}
	c.checkInvariant()
	return c, nil
}

func (c *Cart) AddItem(item models.MenuItem) {
	if line, ok := c.lines[item.Name]; ok {
		line.count++
	} else {
		c.order = append(c.order, item.Name)
		c.lines[item.Name] = &cartLine{item: item, count: 1}
	}
	c.total += item.Price
	c.checkInvariant()
}

func (c *Cart) IncrementItem(name string) error {
	line, ok := c.lines[name]
	if !ok {
		return fmt.Errorf("cart item %q: %w", name, ErrNotFound)
	}
	line.count++
	c.total += line.item.Price
	c.checkInvariant()
	return nil
}

// DecrementItem takes one unit off a line; the last unit removes the line.
func (c *Cart) DecrementItem(name string) error {
	line, ok := c.lines[name]
	if !ok {
		return fmt.Errorf("cart item %q: %w", name, ErrNotFound)
	}
	if line.count > 1 {
		line.count--
	} else {
		c.drop(name)
	}
	c.total -= line.item.Price
	c.checkInvariant()
	return nil
}

func (c *Cart) RemoveItem(name string) error {
	line, ok := c.lines[name]
	if !ok {
		return fmt.Errorf("cart item %q: %w", name, ErrNotFound)
	}
	c.drop(name)
	c.total -= line.item.Price * line.count
	c.checkInvariant()
	return nil
}

func (c *Cart) Clear() {
	c.order = nil
	c.lines = make(map[string]*cartLine)
	c.total = 0
}

// Snapshot returns the lines in first-add order.
func (c *Cart) Snapshot() []models.OrderLine {
	out := make([]models.OrderLine, 0, len(c.order))
	for _, name := range c.order {
		line := c.lines[name]
		out = append(out, models.OrderLine{Name: name, Price: line.item.Price, Count: line.count})
	}
	return out
}

func (c *Cart) Total() int {
	return c.total
}

func (c *Cart) Len() int {
	return len(c.order)
}

func (c *Cart) IsEmpty() bool {
	return len(c.order) == 0
}

// Count returns the units of name in the cart, 0 if absent.
func (c *Cart) Count(name string) int {
	if line, ok := c.lines[name]; ok {
		return line.count
	}
	return 0
}

func (c *Cart) drop(name string) {
	delete(c.lines, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// checkInvariant panics if the running total drifted from the lines.
func (c *Cart) checkInvariant() {
	sum := 0
	for _, line := range c.lines {
		sum += line.item.Price * line.count
	}
	if sum != c.total || len(c.lines) != len(c.order) {
		panic(fmt.Sprintf("cart invariant violated: total=%d sum=%d lines=%d order=%d",
			c.total, sum, len(c.lines), len(c.order)))
	}
}
