// Package scenario resolves clinical case templates by category and name.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/stemsi/clinsim-backend/internal/model"
)

var ErrScenarioNotFound = errors.New("scenario not found")

// Resolver looks up scenario templates. Returned scenarios are private
// copies the caller may keep.
type Resolver interface {
	Resolve(ctx context.Context, category, name string) (*model.Scenario, error)
	List(ctx context.Context) ([]model.ScenarioListItem, error)
}

// ChainResolver asks each resolver in turn and returns the first hit.
type ChainResolver struct {
	resolvers []Resolver
}

// NewChainResolver creates a ChainResolver. Earlier resolvers win.
func NewChainResolver(resolvers ...Resolver) *ChainResolver {
	return &ChainResolver{resolvers: resolvers}
}

// Resolve returns ErrScenarioNotFound only when every resolver reported it;
// any other failure is returned if nothing later in the chain matched.
func (c *ChainResolver) Resolve(ctx context.Context, category, name string) (*model.Scenario, error) {
	var lastErr error
	for _, r := range c.resolvers {
		s, err := r.Resolve(ctx, category, name)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrScenarioNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("resolve %s/%s: %w", category, name, lastErr)
	}
	return nil, ErrScenarioNotFound
}

// List merges the listings of all resolvers; earlier resolvers shadow later
// ones with the same key. Failing resolvers are skipped unless all fail.
func (c *ChainResolver) List(ctx context.Context) ([]model.ScenarioListItem, error) {
	seen := make(map[string]bool)
	out := []model.ScenarioListItem{}
	var lastErr error
	failed := 0

	for _, r := range c.resolvers {
		items, err := r.List(ctx)
		if err != nil {
			lastErr = err
			failed++
			continue
		}
		for _, it := range items {
			key := model.ScenarioKey(it.Category, it.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, it)
		}
	}

	if failed > 0 && failed == len(c.resolvers) {
		return nil, fmt.Errorf("list scenarios: %w", lastErr)
	}
	sortItems(out)
	return out, nil
}

func sortItems(items []model.ScenarioListItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
}

// ListItem builds the catalog entry for s.
func ListItem(s *model.Scenario) model.ScenarioListItem {
	return model.ScenarioListItem{
		Category:   s.Category,
		Name:       s.Name,
		Title:      s.Title,
		Difficulty: s.Difficulty,
		TimeLimit:  s.TimeLimitSeconds,
	}
}
