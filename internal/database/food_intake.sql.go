package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const foodIntakeColumns = `id, patient_id, day, date, time, ampm, category, food_item, intake_amount, unit, calories, end_date, comments, status, created_at, dispatched_at, inserted_at`

func scanFoodIntakeEntry(row pgx.Row) (FoodIntakeEntry, error) {
	var i FoodIntakeEntry
	err := row.Scan(
		&i.ID,
		&i.PatientID,
		&i.Day,
		&i.Date,
		&i.Time,
		&i.Ampm,
		&i.Category,
		&i.FoodItem,
		&i.IntakeAmount,
		&i.Unit,
		&i.Calories,
		&i.EndDate,
		&i.Comments,
		&i.Status,
		&i.CreatedAt,
		&i.DispatchedAt,
		&i.InsertedAt,
	)
	return i, err
}

const listFoodIntakeByPatient = `-- name: ListFoodIntakeByPatient :many
SELECT ` + foodIntakeColumns + ` FROM food_intake_entries
WHERE patient_id = $1
ORDER BY inserted_at, id
`

// ListFoodIntakeByPatient returns every entry of the patient, dispatched or
// not, in insertion order.
func (q *Queries) ListFoodIntakeByPatient(ctx context.Context, patientID string) ([]FoodIntakeEntry, error) {
	rows, err := q.db.Query(ctx, listFoodIntakeByPatient, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FoodIntakeEntry{}
	for rows.Next() {
		i, err := scanFoodIntakeEntry(rows)
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

const getFoodIntakeEntry = `-- name: GetFoodIntakeEntry :one
SELECT ` + foodIntakeColumns + ` FROM food_intake_entries
WHERE id = $1
`

func (q *Queries) GetFoodIntakeEntry(ctx context.Context, id uuid.UUID) (FoodIntakeEntry, error) {
	return scanFoodIntakeEntry(q.db.QueryRow(ctx, getFoodIntakeEntry, id))
}

// FoodIntakeParams carries every editable ledger column.
type FoodIntakeParams struct {
	ID           uuid.UUID `json:"id"`
	PatientID    string    `json:"patient_id"`
	Day          string    `json:"day"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Ampm         string    `json:"ampm"`
	Category     string    `json:"category"`
	FoodItem     string    `json:"food_item"`
	IntakeAmount string    `json:"intake_amount"`
	Unit         string    `json:"unit"`
	Calories     string    `json:"calories"`
	EndDate      string    `json:"end_date"`
	Comments     string    `json:"comments"`
	Status       string    `json:"status"`
	CreatedAt    string    `json:"created_at"`
}

func (arg FoodIntakeParams) args() []interface{} {
	return []interface{}{
		arg.ID,
		arg.PatientID,
		arg.Day,
		arg.Date,
		arg.Time,
		arg.Ampm,
		arg.Category,
		arg.FoodItem,
		arg.IntakeAmount,
		arg.Unit,
		arg.Calories,
		arg.EndDate,
		arg.Comments,
		arg.Status,
		arg.CreatedAt,
	}
}

const createFoodIntakeEntry = `-- name: CreateFoodIntakeEntry :one
INSERT INTO food_intake_entries (id, patient_id, day, date, time, ampm, category, food_item, intake_amount, unit, calories, end_date, comments, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + foodIntakeColumns

func (q *Queries) CreateFoodIntakeEntry(ctx context.Context, arg FoodIntakeParams) (FoodIntakeEntry, error) {
	return scanFoodIntakeEntry(q.db.QueryRow(ctx, createFoodIntakeEntry, arg.args()...))
}

const updateFoodIntakeEntry = `-- name: UpdateFoodIntakeEntry :one
UPDATE food_intake_entries
SET patient_id = $2, day = $3, date = $4, time = $5, ampm = $6, category = $7,
    food_item = $8, intake_amount = $9, unit = $10, calories = $11, end_date = $12,
    comments = $13, status = $14, created_at = $15
WHERE id = $1
RETURNING ` + foodIntakeColumns

func (q *Queries) UpdateFoodIntakeEntry(ctx context.Context, arg FoodIntakeParams) (FoodIntakeEntry, error) {
	return scanFoodIntakeEntry(q.db.QueryRow(ctx, updateFoodIntakeEntry, arg.args()...))
}

const setFoodIntakeDay = `-- name: SetFoodIntakeDay :exec
UPDATE food_intake_entries SET day = $2 WHERE id = $1
`

type SetFoodIntakeDayParams struct {
	ID  uuid.UUID `json:"id"`
	Day string    `json:"day"`
}

func (q *Queries) SetFoodIntakeDay(ctx context.Context, arg SetFoodIntakeDayParams) error {
	_, err := q.db.Exec(ctx, setFoodIntakeDay, arg.ID, arg.Day)
	return err
}

const lockPatientLedger = `-- name: LockPatientLedger :exec
SELECT pg_advisory_xact_lock(hashtext($1))
`

// LockPatientLedger serializes ledger transactions of one patient until the
// surrounding transaction ends.
func (q *Queries) LockPatientLedger(ctx context.Context, patientID string) error {
	_, err := q.db.Exec(ctx, lockPatientLedger, patientID)
	return err
}

const markFoodIntakeDispatched = `-- name: MarkFoodIntakeDispatched :exec
UPDATE food_intake_entries SET dispatched_at = $2
WHERE id = $1 AND dispatched_at IS NULL
`

type MarkFoodIntakeDispatchedParams struct {
	ID uuid.UUID          `json:"id"`
	At pgtype.Timestamptz `json:"at"`
}

func (q *Queries) MarkFoodIntakeDispatched(ctx context.Context, arg MarkFoodIntakeDispatchedParams) error {
	_, err := q.db.Exec(ctx, markFoodIntakeDispatched, arg.ID, arg.At)
	return err
}

const deleteFoodIntakeEntry = `-- name: DeleteFoodIntakeEntry :one
DELETE FROM food_intake_entries WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteFoodIntakeEntry(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteFoodIntakeEntry, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
