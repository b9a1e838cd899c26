// Hand-written in sqlc's layout; each query mirrors queries/clients.sql.

package storage

import (
	"context"
	"database/sql"
)

const countClients = `-- name: CountClients :one
SELECT COUNT(*) FROM clients
`

func (q *Queries) CountClients(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countClients)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createClient = `-- name: CreateClient :one
INSERT INTO clients (name, hourly_rate, display_order, credit)
VALUES (?, ?, ?, ?)
RETURNING id, name, hourly_rate, display_order, credit
`

type CreateClientParams struct {
	Name         string
	HourlyRate   string
	DisplayOrder sql.NullInt64
	Credit       string
}

func (q *Queries) CreateClient(ctx context.Context, arg CreateClientParams) (Client, error) {
	row := q.db.QueryRowContext(ctx, createClient,
		arg.Name,
		arg.HourlyRate,
		arg.DisplayOrder,
		arg.Credit,
	)
	var i Client
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.HourlyRate,
		&i.DisplayOrder,
		&i.Credit,
	)
	return i, err
}

const deleteClient = `-- name: DeleteClient :execrows
DELETE FROM clients WHERE id = ?
`

func (q *Queries) DeleteClient(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteClient, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getClient = `-- name: GetClient :one
SELECT id, name, hourly_rate, display_order, credit
FROM clients
WHERE id = ?
`

func (q *Queries) GetClient(ctx context.Context, id int64) (Client, error) {
	row := q.db.QueryRowContext(ctx, getClient, id)
	var i Client
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.HourlyRate,
		&i.DisplayOrder,
		&i.Credit,
	)
	return i, err
}

const listClients = `-- name: ListClients :many
SELECT id, name, hourly_rate, display_order, credit
FROM clients
ORDER BY display_order IS NULL, display_order, name
`

func (q *Queries) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := q.db.QueryContext(ctx, listClients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Client
	for rows.Next() {
		var i Client
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.HourlyRate,
			&i.DisplayOrder,
			&i.Credit,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateClient = `-- name: UpdateClient :execrows
UPDATE clients
SET name = ?, hourly_rate = ?, display_order = ?
WHERE id = ?
`

type UpdateClientParams struct {
	Name         string
	HourlyRate   string
	DisplayOrder sql.NullInt64
	ID           int64
}

func (q *Queries) UpdateClient(ctx context.Context, arg UpdateClientParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateClient,
		arg.Name,
		arg.HourlyRate,
		arg.DisplayOrder,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateClientCredit = `-- name: UpdateClientCredit :execrows
UPDATE clients
SET credit = ?
WHERE id = ?
`

type UpdateClientCreditParams struct {
	Credit string
	ID     int64
}

func (q *Queries) UpdateClientCredit(ctx context.Context, arg UpdateClientCreditParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateClientCredit, arg.Credit, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateClientOrder = `-- name: UpdateClientOrder :execrows
UPDATE clients
SET display_order = ?
WHERE id = ?
`

type UpdateClientOrderParams struct {
	DisplayOrder sql.NullInt64
	ID           int64
}

func (q *Queries) UpdateClientOrder(ctx context.Context, arg UpdateClientOrderParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateClientOrder, arg.DisplayOrder, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
