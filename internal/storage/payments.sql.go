// Hand-written in sqlc's layout; each query mirrors queries/payments.sql.

package storage

import (
	"context"
)

const createAllocation = `-- name: CreateAllocation :one
INSERT INTO allocations (payment_id, client_id, line_item_id, line_item_type, amount_applied, line_item_date, payment_date)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, payment_id, client_id, line_item_id, line_item_type, amount_applied, line_item_date, payment_date
`

type CreateAllocationParams struct {
	PaymentID     int64
	ClientID      int64
	LineItemID    int64
	LineItemType  string
	AmountApplied string
	LineItemDate  string
	PaymentDate   string
}

func (q *Queries) CreateAllocation(ctx context.Context, arg CreateAllocationParams) (Allocation, error) {
	row := q.db.QueryRowContext(ctx, createAllocation,
		arg.PaymentID,
		arg.ClientID,
		arg.LineItemID,
		arg.LineItemType,
		arg.AmountApplied,
		arg.LineItemDate,
		arg.PaymentDate,
	)
	var i Allocation
	err := row.Scan(
		&i.ID,
		&i.PaymentID,
		&i.ClientID,
		&i.LineItemID,
		&i.LineItemType,
		&i.AmountApplied,
		&i.LineItemDate,
		&i.PaymentDate,
	)
	return i, err
}

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (client_id, amount, date, notes)
VALUES (?, ?, ?, ?)
RETURNING id, client_id, amount, date, notes
`

type CreatePaymentParams struct {
	ClientID int64
	Amount   string
	Date     string
	Notes    string
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRowContext(ctx, createPayment,
		arg.ClientID,
		arg.Amount,
		arg.Date,
		arg.Notes,
	)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.Amount,
		&i.Date,
		&i.Notes,
	)
	return i, err
}

const deletePayment = `-- name: DeletePayment :execrows
DELETE FROM payments WHERE id = ?
`

func (q *Queries) DeletePayment(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePayment, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getPayment = `-- name: GetPayment :one
SELECT id, client_id, amount, date, notes
FROM payments
WHERE id = ?
`

func (q *Queries) GetPayment(ctx context.Context, id int64) (Payment, error) {
	row := q.db.QueryRowContext(ctx, getPayment, id)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.Amount,
		&i.Date,
		&i.Notes,
	)
	return i, err
}

const listItemAllocations = `-- name: ListItemAllocations :many
SELECT id, payment_id, client_id, line_item_id, line_item_type, amount_applied, line_item_date, payment_date
FROM allocations
WHERE line_item_id = ? AND line_item_type = ?
ORDER BY id
`

type ListItemAllocationsParams struct {
	LineItemID   int64
	LineItemType string
}

func (q *Queries) ListItemAllocations(ctx context.Context, arg ListItemAllocationsParams) ([]Allocation, error) {
	rows, err := q.db.QueryContext(ctx, listItemAllocations, arg.LineItemID, arg.LineItemType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Allocation
	for rows.Next() {
		var i Allocation
		if err := rows.Scan(
			&i.ID,
			&i.PaymentID,
			&i.ClientID,
			&i.LineItemID,
			&i.LineItemType,
			&i.AmountApplied,
			&i.LineItemDate,
			&i.PaymentDate,
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

const listAllocations = `-- name: ListAllocations :many
SELECT id, payment_id, client_id, line_item_id, line_item_type, amount_applied, line_item_date, payment_date
FROM allocations
WHERE ?1 = 0 OR client_id = ?1
ORDER BY id
`

func (q *Queries) ListAllocations(ctx context.Context, clientID int64) ([]Allocation, error) {
	rows, err := q.db.QueryContext(ctx, listAllocations, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Allocation
	for rows.Next() {
		var i Allocation
		if err := rows.Scan(
			&i.ID,
			&i.PaymentID,
			&i.ClientID,
			&i.LineItemID,
			&i.LineItemType,
			&i.AmountApplied,
			&i.LineItemDate,
			&i.PaymentDate,
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

const listPayments = `-- name: ListPayments :many
SELECT id, client_id, amount, date, notes
FROM payments
WHERE ?1 = 0 OR client_id = ?1
ORDER BY date, id
`

func (q *Queries) ListPayments(ctx context.Context, clientID int64) ([]Payment, error) {
	rows, err := q.db.QueryContext(ctx, listPayments, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		var i Payment
		if err := rows.Scan(
			&i.ID,
			&i.ClientID,
			&i.Amount,
			&i.Date,
			&i.Notes,
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

const updatePayment = `-- name: UpdatePayment :execrows
UPDATE payments
SET client_id = ?, amount = ?, date = ?, notes = ?
WHERE id = ?
`

type UpdatePaymentParams struct {
	ClientID int64
	Amount   string
	Date     string
	Notes    string
	ID       int64
}

func (q *Queries) UpdatePayment(ctx context.Context, arg UpdatePaymentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePayment,
		arg.ClientID,
		arg.Amount,
		arg.Date,
		arg.Notes,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
