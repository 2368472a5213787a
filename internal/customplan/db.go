package customplan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
)

// DB is a connection pool that can also start transactions.
type DB interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlanQueries is satisfied by *database.Queries; narrow interface for testability.
type PlanQueries interface {
	ListCustomPlans(ctx context.Context) ([]database.CustomPlan, error)
	DeleteAllCustomPlans(ctx context.Context) error
	InsertCustomPlan(ctx context.Context, arg database.InsertCustomPlanParams) error
}

// DBStore keeps plans in the custom_plans table, list order in position.
type DBStore struct {
	db       DB
	newStore func(db database.DBTX) PlanQueries
}

func NewDBStore(db DB, newStore func(db database.DBTX) PlanQueries) *DBStore {
	return &DBStore{db: db, newStore: newStore}
}

func (s *DBStore) Load(ctx context.Context) ([]Plan, error) {
	rows, err := s.newStore(s.db).ListCustomPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom plans: %w", err)
	}
	plans := make([]Plan, 0, len(rows))
	for _, row := range rows {
		meals := map[string][]dietplan.MealItem{}
		if len(row.Meals) > 0 {
			if err := json.Unmarshal(row.Meals, &meals); err != nil {
				return nil, fmt.Errorf("decode meals of plan %s: %w", row.ID, err)
			}
		}
		plans = append(plans, Plan{
			ID:          row.ID,
			PackageName: row.PackageName,
			DietType:    row.DietType,
			Meals:       meals,
			Amount:      database.NumericToDecimal(row.Amount),
		})
	}
	return plans, nil
}

// Save replaces every row in one transaction.
func (s *DBStore) Save(ctx context.Context, plans []Plan) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := s.newStore(tx)
	if err := q.DeleteAllCustomPlans(ctx); err != nil {
		return fmt.Errorf("clear custom plans: %w", err)
	}
	for i, p := range plans {
		meals := p.Meals
		if meals == nil {
			meals = map[string][]dietplan.MealItem{}
		}
		mealsJSON, err := json.Marshal(meals)
		if err != nil {
			return fmt.Errorf("encode meals of plan %s: %w", p.ID, err)
		}
		if err := q.InsertCustomPlan(ctx, database.InsertCustomPlanParams{
			ID:          p.ID,
			PackageName: p.PackageName,
			DietType:    p.DietType,
			Meals:       mealsJSON,
			Amount:      database.DecimalToNumeric(p.Amount),
			Position:    int32(i),
		}); err != nil {
			return fmt.Errorf("insert custom plan %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
