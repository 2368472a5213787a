// Package customplan keeps the dietician's ad hoc meal plans. Plans live
// behind a Store so the deployment can keep them in PostgreSQL or in a
// JSON file next to the server.
package customplan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ward-diet/api/internal/dietplan"
)

var (
	ErrNotFound     = errors.New("custom plan not found")
	ErrNameRequired = errors.New("package_name is required")
	ErrDuplicateID  = errors.New("duplicate custom plan id")
)

// Plan is a meal plan built for one patient outside the package catalog.
type Plan struct {
	ID          string                         `json:"id"`
	PackageName string                         `json:"package_name"`
	DietType    string                         `json:"diet_type"`
	Meals       map[string][]dietplan.MealItem `json:"meals"`
	Amount      decimal.Decimal                `json:"amount"`
}

// Store loads and saves the whole plan list at once.
type Store interface {
	Load(ctx context.Context) ([]Plan, error)
	Save(ctx context.Context, plans []Plan) error
}

// Registry serializes read-modify-write cycles against a Store.
type Registry struct {
	store Store
	mu    sync.Mutex
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

func (r *Registry) List(ctx context.Context) ([]Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Load(ctx)
}

func (r *Registry) Get(ctx context.Context, id string) (Plan, error) {
	plans, err := r.List(ctx)
	if err != nil {
		return Plan{}, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, ErrNotFound
}

// Create appends p, assigning an id when it has none.
func (r *Registry) Create(ctx context.Context, p Plan) (Plan, error) {
	if err := validate(p); err != nil {
		return Plan{}, err
	}
	if p.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Plan{}, fmt.Errorf("generate id: %w", err)
		}
		p.ID = id.String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	plans, err := r.store.Load(ctx)
	if err != nil {
		return Plan{}, err
	}
	for _, existing := range plans {
		if existing.ID == p.ID {
			return Plan{}, ErrDuplicateID
		}
	}
	if err := r.store.Save(ctx, append(plans, p)); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Replace overwrites the stored list with plans.
func (r *Registry) Replace(ctx context.Context, plans []Plan) error {
	seen := make(map[string]bool, len(plans))
	for _, p := range plans {
		if err := validate(p); err != nil {
			return err
		}
		if p.ID == "" {
			return fmt.Errorf("%w: empty id", ErrDuplicateID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Save(ctx, plans)
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plans, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	kept := make([]Plan, 0, len(plans))
	for _, p := range plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plans) {
		return ErrNotFound
	}
	return r.store.Save(ctx, kept)
}

func validate(p Plan) error {
	if strings.TrimSpace(p.PackageName) == "" {
		return ErrNameRequired
	}
	return nil
}
