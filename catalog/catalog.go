package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/warp/party-budget/budget"
)

// Catalog is a thread-safe template table. Lookups return clones, so a
// caller never edits the catalog through a selected template.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]budget.Template
}

// New builds a catalog. Ids must be present and unique.
func New(templates ...budget.Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]budget.Template, len(templates))}
	for _, t := range templates {
		if t.ID == "" {
			return nil, budget.ErrMissingTemplateID
		}
		if _, dup := c.templates[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate catalog id %s", budget.ErrInvalidFieldValue, t.ID)
		}
		c.templates[t.ID] = t.Clone()
	}
	return c, nil
}

// LoadFile builds a catalog from a JSON array file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	templates, err := ParseTemplates(data)
	if err != nil {
		return nil, err
	}
	return New(templates...)
}

// Lookup returns a copy of the template with the given id.
func (c *Catalog) Lookup(id string) (budget.Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.templates[id]
	if !ok {
		return budget.Template{}, fmt.Errorf("%w: %s", budget.ErrTemplateNotFound, id)
	}
	return t.Clone(), nil
}

// List returns templates of one kind sorted by id. An empty kind lists all.
func (c *Catalog) List(kind budget.Kind) []budget.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]budget.Template, 0, len(c.templates))
	for _, t := range c.templates {
		if kind == "" || t.Kind == kind {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All lists every template.
func (c *Catalog) All() []budget.Template {
	return c.List("")
}

// Put adds or replaces a template.
func (c *Catalog) Put(t budget.Template) error {
	if t.ID == "" {
		return budget.ErrMissingTemplateID
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", budget.ErrInvalidFieldValue, t.Kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates[t.ID] = t.Clone()
	return nil
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}
