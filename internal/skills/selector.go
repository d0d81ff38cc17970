// Package skills holds the skill categories and the tab selection over them.
package skills

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownCategory is returned when a category name is not in the catalog.
var ErrUnknownCategory = errors.New("unknown skill category")

// Category is one tab of the skills area.
type Category struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// Catalog is the ordered, immutable list of categories.
type Catalog struct {
	categories []Category
	index      map[string]int
}

// NewCatalog validates and copies categories.
func NewCatalog(categories []Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, errors.New("skill catalog is empty")
	}
	c := &Catalog{
		categories: make([]Category, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for i, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("skill category %d has no name", i)
		}
		if _, dup := c.index[cat.Name]; dup {
			return nil, fmt.Errorf("duplicate skill category %q", cat.Name)
		}
		c.index[cat.Name] = i
		c.categories[i] = Category{Name: cat.Name, Items: append([]string(nil), cat.Items...)}
	}
	return c, nil
}

// Names returns category names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Items returns a copy of the items of name.
func (c *Catalog) Items(name string) ([]string, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), c.categories[i].Items...), true
}

// Has reports whether name is a category.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Tab is a category label and whether it is the active one.
type Tab struct {
	Name   string
	Active bool
}

// Selector tracks the active category.
type Selector struct {
	catalog *Catalog

	mu     sync.RWMutex
	active string
}

// NewSelector starts on defaultName, which must be in the catalog.
func NewSelector(catalog *Catalog, defaultName string) (*Selector, error) {
	if !catalog.Has(defaultName) {
		return nil, fmt.Errorf("default %q: %w", defaultName, ErrUnknownCategory)
	}
	return &Selector{catalog: catalog, active: defaultName}, nil
}

// Select makes name active. An unknown name leaves the selection untouched.
func (s *Selector) Select(name string) error {
	if !s.catalog.Has(name) {
		return fmt.Errorf("select %q: %w", name, ErrUnknownCategory)
	}
	s.mu.Lock()
	s.active = name
	s.mu.Unlock()
	return nil
}

// Active returns the active category name.
func (s *Selector) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Items returns the displayed items, in catalog order.
func (s *Selector) Items() []string {
	items, _ := s.catalog.Items(s.Active())
	return items
}

// Tabs returns every category with the active one flagged.
func (s *Selector) Tabs() []Tab {
	active := s.Active()
	names := s.catalog.Names()
	tabs := make([]Tab, len(names))
	for i, name := range names {
		tabs[i] = Tab{Name: name, Active: name == active}
	}
	return tabs
}
