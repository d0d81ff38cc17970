// Package projects holds the project catalog and the detail modal state.
package projects

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrUnknownProject is returned when a slug is not in the catalog.
var ErrUnknownProject = errors.New("unknown project")

// Record is one project card.
type Record struct {
	Slug             string `yaml:"slug"`
	Category         string `yaml:"category"`
	Title            string `yaml:"title"`
	ShortDescription string `yaml:"description"`
	FullDescription  string `yaml:"full_description"`
	ImageRef         string `yaml:"image"`
	ExternalLink     string `yaml:"link,omitempty"`
}

// HasLink reports whether the project links out to its code.
func (r Record) HasLink() bool { return r.ExternalLink != "" }

// Catalog is the ordered, immutable list of projects.
type Catalog struct {
	records []Record
	bySlug  map[string]int
}

// NewCatalog validates and copies records.
func NewCatalog(records []Record) (*Catalog, error) {
	c := &Catalog{
		records: append([]Record(nil), records...),
		bySlug:  make(map[string]int, len(records)),
	}
	for i, r := range c.records {
		if r.Slug == "" || r.Title == "" {
			return nil, fmt.Errorf("project %d: slug and title are required", i)
		}
		if _, dup := c.bySlug[r.Slug]; dup {
			return nil, fmt.Errorf("duplicate project slug %q", r.Slug)
		}
		if r.HasLink() {
			u, err := url.Parse(r.ExternalLink)
			if err != nil || u.Scheme != "https" || u.Host == "" {
				return nil, fmt.Errorf("project %q: invalid link %q", r.Slug, r.ExternalLink)
			}
		}
		c.bySlug[r.Slug] = i
	}
	return c, nil
}

// All returns the records in catalog order.
func (c *Catalog) All() []Record {
	return append([]Record(nil), c.records...)
}

// Lookup finds a record by slug.
func (c *Catalog) Lookup(slug string) (Record, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Record{}, fmt.Errorf("lookup %q: %w", slug, ErrUnknownProject)
	}
	return c.records[i], nil
}
