package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const dietRequestColumns = `id, patient_id, patient_name, age, gender, contact_number, email, address, blood_group, token_no, visit_id, bed, ward, floor, doctor, doctor_notes, status, approval, patient_type, date, requested_time, created_at, updated_at`

func scanDietRequest(row pgx.Row) (DietRequest, error) {
	var i DietRequest
	err := row.Scan(
		&i.ID,
		&i.PatientID,
		&i.PatientName,
		&i.Age,
		&i.Gender,
		&i.ContactNumber,
		&i.Email,
		&i.Address,
		&i.BloodGroup,
		&i.TokenNo,
		&i.VisitID,
		&i.Bed,
		&i.Ward,
		&i.Floor,
		&i.Doctor,
		&i.DoctorNotes,
		&i.Status,
		&i.Approval,
		&i.PatientType,
		&i.Date,
		&i.RequestedTime,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listDietRequests = `-- name: ListDietRequests :many
SELECT ` + dietRequestColumns + ` FROM diet_requests
ORDER BY created_at DESC, id
`

func (q *Queries) ListDietRequests(ctx context.Context) ([]DietRequest, error) {
	rows, err := q.db.Query(ctx, listDietRequests)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DietRequest{}
	for rows.Next() {
		i, err := scanDietRequest(rows)
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

const getDietRequest = `-- name: GetDietRequest :one
SELECT ` + dietRequestColumns + ` FROM diet_requests
WHERE id = $1
`

func (q *Queries) GetDietRequest(ctx context.Context, id uuid.UUID) (DietRequest, error) {
	return scanDietRequest(q.db.QueryRow(ctx, getDietRequest, id))
}

// DietRequestParams carries every editable diet request column.
type DietRequestParams struct {
	ID            uuid.UUID `json:"id"`
	PatientID     string    `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	Age           string    `json:"age"`
	Gender        string    `json:"gender"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	BloodGroup    string    `json:"blood_group"`
	TokenNo       string    `json:"token_no"`
	VisitID       string    `json:"visit_id"`
	Bed           string    `json:"bed"`
	Ward          string    `json:"ward"`
	Floor         string    `json:"floor"`
	Doctor        string    `json:"doctor"`
	DoctorNotes   string    `json:"doctor_notes"`
	Status        string    `json:"status"`
	Approval      string    `json:"approval"`
	PatientType   string    `json:"patient_type"`
	Date          string    `json:"date"`
	RequestedTime string    `json:"requested_time"`
}

func (arg DietRequestParams) args() []interface{} {
	return []interface{}{
		arg.ID,
		arg.PatientID,
		arg.PatientName,
		arg.Age,
		arg.Gender,
		arg.ContactNumber,
		arg.Email,
		arg.Address,
		arg.BloodGroup,
		arg.TokenNo,
		arg.VisitID,
		arg.Bed,
		arg.Ward,
		arg.Floor,
		arg.Doctor,
		arg.DoctorNotes,
		arg.Status,
		arg.Approval,
		arg.PatientType,
		arg.Date,
		arg.RequestedTime,
	}
}

const createDietRequest = `-- name: CreateDietRequest :one
INSERT INTO diet_requests (id, patient_id, patient_name, age, gender, contact_number, email, address, blood_group, token_no, visit_id, bed, ward, floor, doctor, doctor_notes, status, approval, patient_type, date, requested_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
RETURNING ` + dietRequestColumns

func (q *Queries) CreateDietRequest(ctx context.Context, arg DietRequestParams) (DietRequest, error) {
	return scanDietRequest(q.db.QueryRow(ctx, createDietRequest, arg.args()...))
}

const updateDietRequest = `-- name: UpdateDietRequest :one
UPDATE diet_requests
SET patient_id = $2, patient_name = $3, age = $4, gender = $5, contact_number = $6,
    email = $7, address = $8, blood_group = $9, token_no = $10, visit_id = $11,
    bed = $12, ward = $13, floor = $14, doctor = $15, doctor_notes = $16,
    status = $17, approval = $18, patient_type = $19, date = $20, requested_time = $21,
    updated_at = now()
WHERE id = $1
RETURNING ` + dietRequestColumns

func (q *Queries) UpdateDietRequest(ctx context.Context, arg DietRequestParams) (DietRequest, error) {
	return scanDietRequest(q.db.QueryRow(ctx, updateDietRequest, arg.args()...))
}

const updateDietRequestStatus = `-- name: UpdateDietRequestStatus :one
UPDATE diet_requests
SET status = $2, approval = $3, updated_at = now()
WHERE id = $1
RETURNING ` + dietRequestColumns

type UpdateDietRequestStatusParams struct {
	ID       uuid.UUID `json:"id"`
	Status   string    `json:"status"`
	Approval string    `json:"approval"`
}

func (q *Queries) UpdateDietRequestStatus(ctx context.Context, arg UpdateDietRequestStatusParams) (DietRequest, error) {
	return scanDietRequest(q.db.QueryRow(ctx, updateDietRequestStatus, arg.ID, arg.Status, arg.Approval))
}

const deleteDietRequest = `-- name: DeleteDietRequest :one
DELETE FROM diet_requests WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteDietRequest(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteDietRequest, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const createDietRequestApproval = `-- name: CreateDietRequestApproval :one
INSERT INTO diet_request_approvals (id, diet_request_id, approval_action, approval_status, approved_by, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, diet_request_id, approval_action, approval_status, approved_by, notes, approval_timestamp
`

type CreateDietRequestApprovalParams struct {
	ID             uuid.UUID   `json:"id"`
	DietRequestID  uuid.UUID   `json:"diet_request_id"`
	ApprovalAction string      `json:"approval_action"`
	ApprovalStatus string      `json:"approval_status"`
	ApprovedBy     pgtype.UUID `json:"approved_by"`
	Notes          pgtype.Text `json:"notes"`
}

func (q *Queries) CreateDietRequestApproval(ctx context.Context, arg CreateDietRequestApprovalParams) (DietRequestApproval, error) {
	row := q.db.QueryRow(ctx, createDietRequestApproval,
		arg.ID,
		arg.DietRequestID,
		arg.ApprovalAction,
		arg.ApprovalStatus,
		arg.ApprovedBy,
		arg.Notes,
	)
	var i DietRequestApproval
	err := row.Scan(
		&i.ID,
		&i.DietRequestID,
		&i.ApprovalAction,
		&i.ApprovalStatus,
		&i.ApprovedBy,
		&i.Notes,
		&i.ApprovalTimestamp,
	)
	return i, err
}

const listDietRequestApprovals = `-- name: ListDietRequestApprovals :many
SELECT id, diet_request_id, approval_action, approval_status, approved_by, notes, approval_timestamp
FROM diet_request_approvals
WHERE diet_request_id = $1
ORDER BY approval_timestamp, id
`

func (q *Queries) ListDietRequestApprovals(ctx context.Context, dietRequestID uuid.UUID) ([]DietRequestApproval, error) {
	rows, err := q.db.Query(ctx, listDietRequestApprovals, dietRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DietRequestApproval{}
	for rows.Next() {
		var i DietRequestApproval
		if err := rows.Scan(
			&i.ID,
			&i.DietRequestID,
			&i.ApprovalAction,
			&i.ApprovalStatus,
			&i.ApprovedBy,
			&i.Notes,
			&i.ApprovalTimestamp,
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
