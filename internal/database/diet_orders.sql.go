package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const dietOrderColumns = `id, diet_request_id, patient_id, patient_name, contact_number, email, address, blood_group, token_no, visit_id, age, gender, bed, ward, floor, doctor, patient_type, diet_package, package_name, package_rate, start_date, end_date, doctor_notes, status, approval_status, dietician_instructions, pause_date, restart_date, created_at, updated_at`

func scanDietOrder(row pgx.Row) (DietOrder, error) {
	var i DietOrder
	err := row.Scan(
		&i.ID,
		&i.DietRequestID,
		&i.PatientID,
		&i.PatientName,
		&i.ContactNumber,
		&i.Email,
		&i.Address,
		&i.BloodGroup,
		&i.TokenNo,
		&i.VisitID,
		&i.Age,
		&i.Gender,
		&i.Bed,
		&i.Ward,
		&i.Floor,
		&i.Doctor,
		&i.PatientType,
		&i.DietPackage,
		&i.PackageName,
		&i.PackageRate,
		&i.StartDate,
		&i.EndDate,
		&i.DoctorNotes,
		&i.Status,
		&i.ApprovalStatus,
		&i.DieticianInstructions,
		&i.PauseDate,
		&i.RestartDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectDietOrders(rows pgx.Rows, err error) ([]DietOrder, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DietOrder{}
	for rows.Next() {
		i, err := scanDietOrder(rows)
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

const listDietOrders = `-- name: ListDietOrders :many
SELECT ` + dietOrderColumns + ` FROM diet_orders
ORDER BY created_at DESC, id
`

func (q *Queries) ListDietOrders(ctx context.Context) ([]DietOrder, error) {
	return collectDietOrders(q.db.Query(ctx, listDietOrders))
}

const listDietOrdersByPatient = `-- name: ListDietOrdersByPatient :many
SELECT ` + dietOrderColumns + ` FROM diet_orders
WHERE patient_id = $1
ORDER BY created_at DESC, id
`

func (q *Queries) ListDietOrdersByPatient(ctx context.Context, patientID string) ([]DietOrder, error) {
	return collectDietOrders(q.db.Query(ctx, listDietOrdersByPatient, patientID))
}

const getDietOrder = `-- name: GetDietOrder :one
SELECT ` + dietOrderColumns + ` FROM diet_orders
WHERE id = $1
`

func (q *Queries) GetDietOrder(ctx context.Context, id uuid.UUID) (DietOrder, error) {
	return scanDietOrder(q.db.QueryRow(ctx, getDietOrder, id))
}

const getDietOrderForUpdate = `-- name: GetDietOrderForUpdate :one
SELECT ` + dietOrderColumns + ` FROM diet_orders
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetDietOrderForUpdate(ctx context.Context, id uuid.UUID) (DietOrder, error) {
	return scanDietOrder(q.db.QueryRow(ctx, getDietOrderForUpdate, id))
}

// DietOrderParams carries every editable diet order column.
type DietOrderParams struct {
	ID            uuid.UUID      `json:"id"`
	DietRequestID pgtype.UUID    `json:"diet_request_id"`
	PatientID     string         `json:"patient_id"`
	PatientName   string         `json:"patient_name"`
	ContactNumber string         `json:"contact_number"`
	Email         string         `json:"email"`
	Address       string         `json:"address"`
	BloodGroup    string         `json:"blood_group"`
	TokenNo       string         `json:"token_no"`
	VisitID       string         `json:"visit_id"`
	Age           string         `json:"age"`
	Gender        string         `json:"gender"`
	Bed           string         `json:"bed"`
	Ward          string         `json:"ward"`
	Floor         string         `json:"floor"`
	Doctor        string         `json:"doctor"`
	PatientType   string         `json:"patient_type"`
	DietPackage   string         `json:"diet_package"`
	PackageRate   pgtype.Numeric `json:"package_rate"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	DoctorNotes   string         `json:"doctor_notes"`
}

func (arg DietOrderParams) args() []interface{} {
	return []interface{}{
		arg.ID,
		arg.DietRequestID,
		arg.PatientID,
		arg.PatientName,
		arg.ContactNumber,
		arg.Email,
		arg.Address,
		arg.BloodGroup,
		arg.TokenNo,
		arg.VisitID,
		arg.Age,
		arg.Gender,
		arg.Bed,
		arg.Ward,
		arg.Floor,
		arg.Doctor,
		arg.PatientType,
		arg.DietPackage,
		arg.PackageRate,
		arg.StartDate,
		arg.EndDate,
		arg.DoctorNotes,
	}
}

const createDietOrder = `-- name: CreateDietOrder :one
INSERT INTO diet_orders (id, diet_request_id, patient_id, patient_name, contact_number, email, address, blood_group, token_no, visit_id, age, gender, bed, ward, floor, doctor, patient_type, diet_package, package_rate, start_date, end_date, doctor_notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
RETURNING ` + dietOrderColumns

func (q *Queries) CreateDietOrder(ctx context.Context, arg DietOrderParams) (DietOrder, error) {
	return scanDietOrder(q.db.QueryRow(ctx, createDietOrder, arg.args()...))
}

const updateDietOrder = `-- name: UpdateDietOrder :one
UPDATE diet_orders
SET diet_request_id = $2, patient_id = $3, patient_name = $4, contact_number = $5,
    email = $6, address = $7, blood_group = $8, token_no = $9, visit_id = $10,
    age = $11, gender = $12, bed = $13, ward = $14, floor = $15, doctor = $16,
    patient_type = $17, diet_package = $18, package_rate = $19, start_date = $20,
    end_date = $21, doctor_notes = $22, updated_at = now()
WHERE id = $1
RETURNING ` + dietOrderColumns

func (q *Queries) UpdateDietOrder(ctx context.Context, arg DietOrderParams) (DietOrder, error) {
	return scanDietOrder(q.db.QueryRow(ctx, updateDietOrder, arg.args()...))
}

const setDietOrderApproval = `-- name: SetDietOrderApproval :one
UPDATE diet_orders
SET approval_status = $2, status = $3, dietician_instructions = $4, package_name = $5, updated_at = now()
WHERE id = $1
RETURNING ` + dietOrderColumns

type SetDietOrderApprovalParams struct {
	ID                    uuid.UUID `json:"id"`
	ApprovalStatus        string    `json:"approval_status"`
	Status                string    `json:"status"`
	DieticianInstructions string    `json:"dietician_instructions"`
	PackageName           string    `json:"package_name"`
}

func (q *Queries) SetDietOrderApproval(ctx context.Context, arg SetDietOrderApprovalParams) (DietOrder, error) {
	return scanDietOrder(q.db.QueryRow(ctx, setDietOrderApproval,
		arg.ID,
		arg.ApprovalStatus,
		arg.Status,
		arg.DieticianInstructions,
		arg.PackageName,
	))
}

const pauseDietOrder = `-- name: PauseDietOrder :one
UPDATE diet_orders
SET status = 'paused', pause_date = $2, updated_at = now()
WHERE id = $1
RETURNING ` + dietOrderColumns

type StampDietOrderParams struct {
	ID uuid.UUID          `json:"id"`
	At pgtype.Timestamptz `json:"at"`
}

func (q *Queries) PauseDietOrder(ctx context.Context, arg StampDietOrderParams) (DietOrder, error) {
	return scanDietOrder(q.db.QueryRow(ctx, pauseDietOrder, arg.ID, arg.At))
}

const restartDietOrder = `-- name: RestartDietOrder :one
UPDATE diet_orders
SET status = 'active', restart_date = $2, updated_at = now()
WHERE id = $1
RETURNING ` + dietOrderColumns

func (q *Queries) RestartDietOrder(ctx context.Context, arg StampDietOrderParams) (DietOrder, error) {
	return scanDietOrder(q.db.QueryRow(ctx, restartDietOrder, arg.ID, arg.At))
}

const deleteDietOrder = `-- name: DeleteDietOrder :one
DELETE FROM diet_orders WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteDietOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteDietOrder, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
