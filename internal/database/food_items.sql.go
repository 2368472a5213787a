package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const foodItemColumns = `id, name, food_type, category, unit, quantity, calories, protein, carbohydrates, fat, price, price_per_unit, keywords, created_at, updated_at`

func scanFoodItem(row pgx.Row) (FoodItem, error) {
	var i FoodItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.FoodType,
		&i.Category,
		&i.Unit,
		&i.Quantity,
		&i.Calories,
		&i.Protein,
		&i.Carbohydrates,
		&i.Fat,
		&i.Price,
		&i.PricePerUnit,
		&i.Keywords,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectFoodItems(rows pgx.Rows, err error) ([]FoodItem, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FoodItem{}
	for rows.Next() {
		i, err := scanFoodItem(rows)
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

const listFoodItems = `-- name: ListFoodItems :many
SELECT ` + foodItemColumns + ` FROM food_items
ORDER BY created_at, id
`

func (q *Queries) ListFoodItems(ctx context.Context) ([]FoodItem, error) {
	return collectFoodItems(q.db.Query(ctx, listFoodItems))
}

const getFoodItem = `-- name: GetFoodItem :one
SELECT ` + foodItemColumns + ` FROM food_items
WHERE id = $1
`

func (q *Queries) GetFoodItem(ctx context.Context, id uuid.UUID) (FoodItem, error) {
	return scanFoodItem(q.db.QueryRow(ctx, getFoodItem, id))
}

const createFoodItem = `-- name: CreateFoodItem :one
INSERT INTO food_items (id, name, food_type, category, unit, quantity, calories, protein, carbohydrates, fat, price, price_per_unit, keywords)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + foodItemColumns

type CreateFoodItemParams struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	FoodType      string         `json:"food_type"`
	Category      string         `json:"category"`
	Unit          string         `json:"unit"`
	Quantity      pgtype.Numeric `json:"quantity"`
	Calories      float64        `json:"calories"`
	Protein       float64        `json:"protein"`
	Carbohydrates float64        `json:"carbohydrates"`
	Fat           float64        `json:"fat"`
	Price         pgtype.Numeric `json:"price"`
	PricePerUnit  pgtype.Numeric `json:"price_per_unit"`
	Keywords      string         `json:"keywords"`
}

func (q *Queries) CreateFoodItem(ctx context.Context, arg CreateFoodItemParams) (FoodItem, error) {
	return scanFoodItem(q.db.QueryRow(ctx, createFoodItem,
		arg.ID,
		arg.Name,
		arg.FoodType,
		arg.Category,
		arg.Unit,
		arg.Quantity,
		arg.Calories,
		arg.Protein,
		arg.Carbohydrates,
		arg.Fat,
		arg.Price,
		arg.PricePerUnit,
		arg.Keywords,
	))
}

const updateFoodItem = `-- name: UpdateFoodItem :one
UPDATE food_items
SET name = $2, food_type = $3, category = $4, unit = $5, quantity = $6,
    calories = $7, protein = $8, carbohydrates = $9, fat = $10,
    price = $11, price_per_unit = $12, keywords = $13, updated_at = now()
WHERE id = $1
RETURNING ` + foodItemColumns

type UpdateFoodItemParams struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	FoodType      string         `json:"food_type"`
	Category      string         `json:"category"`
	Unit          string         `json:"unit"`
	Quantity      pgtype.Numeric `json:"quantity"`
	Calories      float64        `json:"calories"`
	Protein       float64        `json:"protein"`
	Carbohydrates float64        `json:"carbohydrates"`
	Fat           float64        `json:"fat"`
	Price         pgtype.Numeric `json:"price"`
	PricePerUnit  pgtype.Numeric `json:"price_per_unit"`
	Keywords      string         `json:"keywords"`
}

func (q *Queries) UpdateFoodItem(ctx context.Context, arg UpdateFoodItemParams) (FoodItem, error) {
	return scanFoodItem(q.db.QueryRow(ctx, updateFoodItem,
		arg.ID,
		arg.Name,
		arg.FoodType,
		arg.Category,
		arg.Unit,
		arg.Quantity,
		arg.Calories,
		arg.Protein,
		arg.Carbohydrates,
		arg.Fat,
		arg.Price,
		arg.PricePerUnit,
		arg.Keywords,
	))
}

const deleteFoodItem = `-- name: DeleteFoodItem :one
DELETE FROM food_items WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteFoodItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteFoodItem, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
