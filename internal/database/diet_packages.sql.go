package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const dietPackageColumns = `id, name, diet_type, meals, total_rate, total_nutrition, created_at, updated_at`

func scanDietPackage(row pgx.Row) (DietPackage, error) {
	var i DietPackage
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.DietType,
		&i.Meals,
		&i.TotalRate,
		&i.TotalNutrition,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listDietPackages = `-- name: ListDietPackages :many
SELECT ` + dietPackageColumns + ` FROM diet_packages
ORDER BY name, id
`

func (q *Queries) ListDietPackages(ctx context.Context) ([]DietPackage, error) {
	rows, err := q.db.Query(ctx, listDietPackages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DietPackage{}
	for rows.Next() {
		i, err := scanDietPackage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getDietPackage = `-- name: GetDietPackage :one
SELECT ` + dietPackageColumns + ` FROM diet_packages
WHERE id = $1
`

func (q *Queries) GetDietPackage(ctx context.Context, id uuid.UUID) (DietPackage, error) {
	return scanDietPackage(q.db.QueryRow(ctx, getDietPackage, id))
}

const createDietPackage = `-- name: CreateDietPackage :one
INSERT INTO diet_packages (id, name, diet_type, meals, total_rate, total_nutrition)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + dietPackageColumns

type CreateDietPackageParams struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	DietType       string         `json:"diet_type"`
	Meals          []byte         `json:"meals"`
	TotalRate      pgtype.Numeric `json:"total_rate"`
	TotalNutrition []byte         `json:"total_nutrition"`
}

func (q *Queries) CreateDietPackage(ctx context.Context, arg CreateDietPackageParams) (DietPackage, error) {
	return scanDietPackage(q.db.QueryRow(ctx, createDietPackage,
		arg.ID,
		arg.Name,
		arg.DietType,
		arg.Meals,
		arg.TotalRate,
		arg.TotalNutrition,
	))
}

const updateDietPackage = `-- name: UpdateDietPackage :one
UPDATE diet_packages
SET name = $2, diet_type = $3, meals = $4, total_rate = $5, total_nutrition = $6, updated_at = now()
WHERE id = $1
RETURNING ` + dietPackageColumns

type UpdateDietPackageParams struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	DietType       string         `json:"diet_type"`
	Meals          []byte         `json:"meals"`
	TotalRate      pgtype.Numeric `json:"total_rate"`
	TotalNutrition []byte         `json:"total_nutrition"`
}

func (q *Queries) UpdateDietPackage(ctx context.Context, arg UpdateDietPackageParams) (DietPackage, error) {
	return scanDietPackage(q.db.QueryRow(ctx, updateDietPackage,
		arg.ID,
		arg.Name,
		arg.DietType,
		arg.Meals,
		arg.TotalRate,
		arg.TotalNutrition,
	))
}

const deleteDietPackage = `-- name: DeleteDietPackage :one
DELETE FROM diet_packages WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteDietPackage(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteDietPackage, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
