package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const canteenOrderColumns = `id, source, intake_entry_id, patient_id, patient_name, contact_number, bed, ward, diet_package_name, diet_type, food_items, meal_items, special_notes, dietician_instructions, date, time, category, food_item, intake_amount, unit, end_date, status, prepared, delivered, created_at, updated_at`

func scanCanteenOrder(row pgx.Row) (CanteenOrder, error) {
	var i CanteenOrder
	err := row.Scan(
		&i.ID,
		&i.Source,
		&i.IntakeEntryID,
		&i.PatientID,
		&i.PatientName,
		&i.ContactNumber,
		&i.Bed,
		&i.Ward,
		&i.DietPackageName,
		&i.DietType,
		&i.FoodItems,
		&i.MealItems,
		&i.SpecialNotes,
		&i.DieticianInstructions,
		&i.Date,
		&i.Time,
		&i.Category,
		&i.FoodItem,
		&i.IntakeAmount,
		&i.Unit,
		&i.EndDate,
		&i.Status,
		&i.Prepared,
		&i.Delivered,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectCanteenOrders(rows pgx.Rows, err error) ([]CanteenOrder, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CanteenOrder{}
	for rows.Next() {
		i, err := scanCanteenOrder(rows)
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

const listCanteenOrders = `-- name: ListCanteenOrders :many
SELECT ` + canteenOrderColumns + ` FROM canteen_orders
ORDER BY created_at, id
`

func (q *Queries) ListCanteenOrders(ctx context.Context) ([]CanteenOrder, error) {
	return collectCanteenOrders(q.db.Query(ctx, listCanteenOrders))
}

const listCanteenOrdersByPatient = `-- name: ListCanteenOrdersByPatient :many
SELECT ` + canteenOrderColumns + ` FROM canteen_orders
WHERE patient_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListCanteenOrdersByPatient(ctx context.Context, patientID string) ([]CanteenOrder, error) {
	return collectCanteenOrders(q.db.Query(ctx, listCanteenOrdersByPatient, patientID))
}

const getCanteenOrder = `-- name: GetCanteenOrder :one
SELECT ` + canteenOrderColumns + ` FROM canteen_orders
WHERE id = $1
`

func (q *Queries) GetCanteenOrder(ctx context.Context, id uuid.UUID) (CanteenOrder, error) {
	return scanCanteenOrder(q.db.QueryRow(ctx, getCanteenOrder, id))
}

// CanteenOrderParams carries every column written when an order reaches
// the kitchen.
type CanteenOrderParams struct {
	ID                    uuid.UUID   `json:"id"`
	Source                string      `json:"source"`
	IntakeEntryID         pgtype.UUID `json:"intake_entry_id"`
	PatientID             string      `json:"patient_id"`
	PatientName           string      `json:"patient_name"`
	ContactNumber         string      `json:"contact_number"`
	Bed                   string      `json:"bed"`
	Ward                  string      `json:"ward"`
	DietPackageName       string      `json:"diet_package_name"`
	DietType              string      `json:"diet_type"`
	FoodItems             []string    `json:"food_items"`
	MealItems             []byte      `json:"meal_items"`
	SpecialNotes          string      `json:"special_notes"`
	DieticianInstructions string      `json:"dietician_instructions"`
	Date                  string      `json:"date"`
	Time                  string      `json:"time"`
	Category              string      `json:"category"`
	FoodItem              string      `json:"food_item"`
	IntakeAmount          string      `json:"intake_amount"`
	Unit                  string      `json:"unit"`
	EndDate               string      `json:"end_date"`
}

func (arg CanteenOrderParams) args() []interface{} {
	foodItems := arg.FoodItems
	if foodItems == nil {
		foodItems = []string{}
	}
	return []interface{}{
		arg.ID,
		arg.Source,
		arg.IntakeEntryID,
		arg.PatientID,
		arg.PatientName,
		arg.ContactNumber,
		arg.Bed,
		arg.Ward,
		arg.DietPackageName,
		arg.DietType,
		foodItems,
		arg.MealItems,
		arg.SpecialNotes,
		arg.DieticianInstructions,
		arg.Date,
		arg.Time,
		arg.Category,
		arg.FoodItem,
		arg.IntakeAmount,
		arg.Unit,
		arg.EndDate,
	}
}

const createCanteenOrder = `-- name: CreateCanteenOrder :one
INSERT INTO canteen_orders (id, source, intake_entry_id, patient_id, patient_name, contact_number, bed, ward, diet_package_name, diet_type, food_items, meal_items, special_notes, dietician_instructions, date, time, category, food_item, intake_amount, unit, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
RETURNING ` + canteenOrderColumns

func (q *Queries) CreateCanteenOrder(ctx context.Context, arg CanteenOrderParams) (CanteenOrder, error) {
	return scanCanteenOrder(q.db.QueryRow(ctx, createCanteenOrder, arg.args()...))
}

// An approved diet order re-enters the kitchen queue as pending.
const upsertCanteenOrder = `-- name: UpsertCanteenOrder :one
INSERT INTO canteen_orders (id, source, intake_entry_id, patient_id, patient_name, contact_number, bed, ward, diet_package_name, diet_type, food_items, meal_items, special_notes, dietician_instructions, date, time, category, food_item, intake_amount, unit, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
ON CONFLICT (id) DO UPDATE
SET patient_id = EXCLUDED.patient_id,
    patient_name = EXCLUDED.patient_name,
    contact_number = EXCLUDED.contact_number,
    bed = EXCLUDED.bed,
    ward = EXCLUDED.ward,
    diet_package_name = EXCLUDED.diet_package_name,
    diet_type = EXCLUDED.diet_type,
    food_items = EXCLUDED.food_items,
    meal_items = EXCLUDED.meal_items,
    special_notes = EXCLUDED.special_notes,
    dietician_instructions = EXCLUDED.dietician_instructions,
    end_date = EXCLUDED.end_date,
    status = 'pending',
    prepared = false,
    delivered = false,
    updated_at = now()
RETURNING ` + canteenOrderColumns

func (q *Queries) UpsertCanteenOrder(ctx context.Context, arg CanteenOrderParams) (CanteenOrder, error) {
	return scanCanteenOrder(q.db.QueryRow(ctx, upsertCanteenOrder, arg.args()...))
}

const updateCanteenOrderStatus = `-- name: UpdateCanteenOrderStatus :one
UPDATE canteen_orders
SET status = $2, prepared = prepared OR $3, delivered = delivered OR $4, updated_at = now()
WHERE id = $1 AND status = $5
RETURNING ` + canteenOrderColumns

type UpdateCanteenOrderStatusParams struct {
	ID         uuid.UUID `json:"id"`
	Status     string    `json:"status"`
	Prepared   bool      `json:"prepared"`
	Delivered  bool      `json:"delivered"`
	FromStatus string    `json:"from_status"`
}

// UpdateCanteenOrderStatus only applies when the row is still in FromStatus;
// a concurrent change surfaces as pgx.ErrNoRows.
func (q *Queries) UpdateCanteenOrderStatus(ctx context.Context, arg UpdateCanteenOrderStatusParams) (CanteenOrder, error) {
	return scanCanteenOrder(q.db.QueryRow(ctx, updateCanteenOrderStatus,
		arg.ID,
		arg.Status,
		arg.Prepared,
		arg.Delivered,
		arg.FromStatus,
	))
}

const deleteCanteenOrder = `-- name: DeleteCanteenOrder :one
DELETE FROM canteen_orders WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteCanteenOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteCanteenOrder, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
