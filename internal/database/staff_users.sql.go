package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const staffUserColumns = `id, username, password_hash, full_name, role, is_active, created_at, updated_at`

func scanStaffUser(row pgx.Row) (StaffUser, error) {
	var i StaffUser
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.PasswordHash,
		&i.FullName,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getStaffUserByUsername = `-- name: GetStaffUserByUsername :one
SELECT ` + staffUserColumns + ` FROM staff_users
WHERE username = $1 AND is_active = true
`

func (q *Queries) GetStaffUserByUsername(ctx context.Context, username string) (StaffUser, error) {
	return scanStaffUser(q.db.QueryRow(ctx, getStaffUserByUsername, username))
}

const getStaffUserByID = `-- name: GetStaffUserByID :one
SELECT ` + staffUserColumns + ` FROM staff_users
WHERE id = $1 AND is_active = true
`

func (q *Queries) GetStaffUserByID(ctx context.Context, id uuid.UUID) (StaffUser, error) {
	return scanStaffUser(q.db.QueryRow(ctx, getStaffUserByID, id))
}

const listStaffUsers = `-- name: ListStaffUsers :many
SELECT ` + staffUserColumns + ` FROM staff_users
WHERE is_active = true
ORDER BY username
`

func (q *Queries) ListStaffUsers(ctx context.Context) ([]StaffUser, error) {
	rows, err := q.db.Query(ctx, listStaffUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StaffUser{}
	for rows.Next() {
		i, err := scanStaffUser(rows)
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

const upsertStaffUser = `-- name: UpsertStaffUser :one
INSERT INTO staff_users (id, username, password_hash, full_name, role)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (username) DO UPDATE
SET password_hash = EXCLUDED.password_hash,
    full_name = EXCLUDED.full_name,
    role = EXCLUDED.role,
    is_active = true,
    updated_at = now()
RETURNING ` + staffUserColumns

type UpsertStaffUserParams struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
}

func (q *Queries) UpsertStaffUser(ctx context.Context, arg UpsertStaffUserParams) (StaffUser, error) {
	return scanStaffUser(q.db.QueryRow(ctx, upsertStaffUser,
		arg.ID,
		arg.Username,
		arg.PasswordHash,
		arg.FullName,
		arg.Role,
	))
}
