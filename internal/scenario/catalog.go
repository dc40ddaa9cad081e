package scenario

import (
	"context"
	"fmt"

	"github.com/stemsi/clinsim-backend/internal/model"
)

// Catalog is a static in-memory scenario library.
type Catalog struct {
	byKey map[string]*model.Scenario
}

// NewCatalog indexes scenarios by category/name, case-insensitively.
// Duplicate keys are rejected.
func NewCatalog(scenarios []*model.Scenario) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]*model.Scenario, len(scenarios))}
	for _, s := range scenarios {
		key := model.ScenarioKey(s.Category, s.Name)
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate scenario %q", key)
		}
		c.byKey[key] = s.Clone()
	}
	return c, nil
}

// DefaultCatalog returns the built-in library.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Library())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Resolve(_ context.Context, category, name string) (*model.Scenario, error) {
	s, ok := c.byKey[model.ScenarioKey(category, name)]
	if !ok {
		return nil, ErrScenarioNotFound
	}
	return s.Clone(), nil
}

func (c *Catalog) List(_ context.Context) ([]model.ScenarioListItem, error) {
	out := make([]model.ScenarioListItem, 0, len(c.byKey))
	for _, s := range c.byKey {
		out = append(out, ListItem(s))
	}
	sortItems(out)
	return out, nil
}

// Scenarios returns copies of every scenario in the catalog.
func (c *Catalog) Scenarios() []*model.Scenario {
	out := make([]*model.Scenario, 0, len(c.byKey))
	for _, s := range c.byKey {
		out = append(out, s.Clone())
	}
	return out
}
