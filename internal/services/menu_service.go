package services

import (
	"fmt"
	"os"
	"strings"

	"counter_pos/internal/models"

	"gopkg.in/yaml.v3"
)

type MenuCatalog interface {
	ListItems() []models.MenuItem
	FindByName(name string) (models.MenuItem, error)
}

type menuCatalog struct {
	items  []models.MenuItem
	byName map[string]int
}

// NewMenuCatalog builds an immutable catalog. Names must be unique and
// non-empty and prices non-negative.
func NewMenuCatalog(items []models.MenuItem) (MenuCatalog, error) {
	c := &menuCatalog{
		items:  make([]models.MenuItem, 0, len(items)),
		byName: make(map[string]int, len(items)),
	}
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return nil, newValidationError("name", "menu item name is required")
		}
		if item.Price < 0 {
			return nil, newValidationError("price", "menu item %q has negative price %d", item.Name, item.Price)
		}
		if _, dup := c.byName[item.Name]; dup {
			return nil, newValidationError("name", "duplicate menu item %q", item.Name)
		}
		c.byName[item.Name] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

func (c *menuCatalog) ListItems() []models.MenuItem {
	return append([]models.MenuItem(nil), c.items...)
}

func (c *menuCatalog) FindByName(name string) (models.MenuItem, error) {
	i, ok := c.byName[name]
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %q: %w", name, ErrNotFound)
	}
	return c.items[i], nil
}

type menuFile struct {
	Items []models.MenuItem `yaml:"items"`
}

// LoadMenuFile reads a YAML menu of the form
//
//	items:
//	  - name: Tea
//	    price: 3
func LoadMenuFile(path string) ([]models.MenuItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}
	var f menuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse menu file: %w", err)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("menu file %s lists no items", path)
	}
	return f.Items, nil
}
