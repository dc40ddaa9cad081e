package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/clinsim-backend/internal/model"
)

// Store is the persistent scenario table.
type Store interface {
	GetByKey(ctx context.Context, category, name string) (*model.Scenario, error)
	List(ctx context.Context) ([]model.Scenario, error)
}

// DBResolver adapts a Store to the Resolver interface.
type DBResolver struct {
	store Store
}

func NewDBResolver(store Store) *DBResolver {
	return &DBResolver{store: store}
}

func (d *DBResolver) Resolve(ctx context.Context, category, name string) (*model.Scenario, error) {
	s, err := d.store.GetByKey(ctx, category, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScenarioNotFound
		}
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	return s, nil
}

func (d *DBResolver) List(ctx context.Context) ([]model.ScenarioListItem, error) {
	rows, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	out := make([]model.ScenarioListItem, 0, len(rows))
	for i := range rows {
		out = append(out, ListItem(&rows[i]))
	}
	sortItems(out)
	return out, nil
}
