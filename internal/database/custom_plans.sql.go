package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listCustomPlans = `-- name: ListCustomPlans :many
SELECT id, package_name, diet_type, meals, amount, position FROM custom_plans
ORDER BY position, id
`

func (q *Queries) ListCustomPlans(ctx context.Context) ([]CustomPlan, error) {
	rows, err := q.db.Query(ctx, listCustomPlans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CustomPlan{}
	for rows.Next() {
		var i CustomPlan
		if err := rows.Scan(
			&i.ID,
			&i.PackageName,
			&i.DietType,
			&i.Meals,
			&i.Amount,
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllCustomPlans = `-- name: DeleteAllCustomPlans :exec
DELETE FROM custom_plans
`

func (q *Queries) DeleteAllCustomPlans(ctx context.Context) error {
	_, err := q.db.Exec(ctx, deleteAllCustomPlans)
	return err
}

const insertCustomPlan = `-- name: InsertCustomPlan :exec
INSERT INTO custom_plans (id, package_name, diet_type, meals, amount, position)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertCustomPlanParams struct {
	ID          string         `json:"id"`
	PackageName string         `json:"package_name"`
	DietType    string         `json:"diet_type"`
	Meals       []byte         `json:"meals"`
	Amount      pgtype.Numeric `json:"amount"`
	Position    int32          `json:"position"`
}

func (q *Queries) InsertCustomPlan(ctx context.Context, arg InsertCustomPlanParams) error {
	_, err := q.db.Exec(ctx, insertCustomPlan,
		arg.ID,
		arg.PackageName,
		arg.DietType,
		arg.Meals,
		arg.Amount,
		arg.Position,
	)
	return err
}
