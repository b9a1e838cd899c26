// Hand-written in sqlc's layout; each query mirrors queries/items.sql.

package storage

import (
	"context"
)

const createMaterialItem = `-- name: CreateMaterialItem :one
INSERT INTO material_items (client_id, date, description, cost, paid, settled)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, client_id, date, description, cost, paid, settled
`

type CreateMaterialItemParams struct {
	ClientID    int64
	Date        string
	Description string
	Cost        string
	Paid        int64
	Settled     int64
}

func (q *Queries) CreateMaterialItem(ctx context.Context, arg CreateMaterialItemParams) (MaterialItem, error) {
	row := q.db.QueryRowContext(ctx, createMaterialItem,
		arg.ClientID,
		arg.Date,
		arg.Description,
		arg.Cost,
		arg.Paid,
		arg.Settled,
	)
	var i MaterialItem
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.Date,
		&i.Description,
		&i.Cost,
		&i.Paid,
		&i.Settled,
	)
	return i, err
}

const createWorkItem = `-- name: CreateWorkItem :one
INSERT INTO work_items (client_id, date, hours, paid, settled, notes)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, client_id, date, hours, paid, settled, notes
`

type CreateWorkItemParams struct {
	ClientID int64
	Date     string
	Hours    string
	Paid     int64
	Settled  int64
	Notes    string
}

func (q *Queries) CreateWorkItem(ctx context.Context, arg CreateWorkItemParams) (WorkItem, error) {
	row := q.db.QueryRowContext(ctx, createWorkItem,
		arg.ClientID,
		arg.Date,
		arg.Hours,
		arg.Paid,
		arg.Settled,
		arg.Notes,
	)
	var i WorkItem
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.Date,
		&i.Hours,
		&i.Paid,
		&i.Settled,
		&i.Notes,
	)
	return i, err
}

const deleteMaterialItem = `-- name: DeleteMaterialItem :execrows
DELETE FROM material_items WHERE id = ?
`

func (q *Queries) DeleteMaterialItem(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMaterialItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteWorkItem = `-- name: DeleteWorkItem :execrows
DELETE FROM work_items WHERE id = ?
`

func (q *Queries) DeleteWorkItem(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteWorkItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const editMaterialItem = `-- name: EditMaterialItem :execrows
UPDATE material_items
SET client_id = ?, date = ?, description = ?, cost = ?, paid = ?, settled = ?
WHERE id = ?
`

type EditMaterialItemParams struct {
	ClientID    int64
	Date        string
	Description string
	Cost        string
	Paid        int64
	Settled     int64
	ID          int64
}

func (q *Queries) EditMaterialItem(ctx context.Context, arg EditMaterialItemParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, editMaterialItem,
		arg.ClientID,
		arg.Date,
		arg.Description,
		arg.Cost,
		arg.Paid,
		arg.Settled,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const editWorkItem = `-- name: EditWorkItem :execrows
UPDATE work_items
SET client_id = ?, date = ?, hours = ?, paid = ?, settled = ?, notes = ?
WHERE id = ?
`

type EditWorkItemParams struct {
	ClientID int64
	Date     string
	Hours    string
	Paid     int64
	Settled  int64
	Notes    string
	ID       int64
}

func (q *Queries) EditWorkItem(ctx context.Context, arg EditWorkItemParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, editWorkItem,
		arg.ClientID,
		arg.Date,
		arg.Hours,
		arg.Paid,
		arg.Settled,
		arg.Notes,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getMaterialItem = `-- name: GetMaterialItem :one
SELECT id, client_id, date, description, cost, paid, settled
FROM material_items
WHERE id = ?
`

func (q *Queries) GetMaterialItem(ctx context.Context, id int64) (MaterialItem, error) {
	row := q.db.QueryRowContext(ctx, getMaterialItem, id)
	var i MaterialItem
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.Date,
		&i.Description,
		&i.Cost,
		&i.Paid,
		&i.Settled,
	)
	return i, err
}

const getWorkItem = `-- name: GetWorkItem :one
SELECT id, client_id, date, hours, paid, settled, notes
FROM work_items
WHERE id = ?
`

func (q *Queries) GetWorkItem(ctx context.Context, id int64) (WorkItem, error) {
	row := q.db.QueryRowContext(ctx, getWorkItem, id)
	var i WorkItem
	err := row.Scan(
		&i.ID,
		&i.ClientID,
		&i.Date,
		&i.Hours,
		&i.Paid,
		&i.Settled,
		&i.Notes,
	)
	return i, err
}

const listMaterialItems = `-- name: ListMaterialItems :many
SELECT id, client_id, date, description, cost, paid, settled
FROM material_items
WHERE ?1 = 0 OR client_id = ?1
ORDER BY date, id
`

func (q *Queries) ListMaterialItems(ctx context.Context, clientID int64) ([]MaterialItem, error) {
	rows, err := q.db.QueryContext(ctx, listMaterialItems, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MaterialItem
	for rows.Next() {
		var i MaterialItem
		if err := rows.Scan(
			&i.ID,
			&i.ClientID,
			&i.Date,
			&i.Description,
			&i.Cost,
			&i.Paid,
			&i.Settled,
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

const listWorkItems = `-- name: ListWorkItems :many
SELECT id, client_id, date, hours, paid, settled, notes
FROM work_items
WHERE ?1 = 0 OR client_id = ?1
ORDER BY date, id
`

func (q *Queries) ListWorkItems(ctx context.Context, clientID int64) ([]WorkItem, error) {
	rows, err := q.db.QueryContext(ctx, listWorkItems, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WorkItem
	for rows.Next() {
		var i WorkItem
		if err := rows.Scan(
			&i.ID,
			&i.ClientID,
			&i.Date,
			&i.Hours,
			&i.Paid,
			&i.Settled,
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

const setMaterialItemStatus = `-- name: SetMaterialItemStatus :execrows
UPDATE material_items
SET paid = ?, settled = ?
WHERE id = ?
`

type SetMaterialItemStatusParams struct {
	Paid    int64
	Settled int64
	ID      int64
}

func (q *Queries) SetMaterialItemStatus(ctx context.Context, arg SetMaterialItemStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setMaterialItemStatus, arg.Paid, arg.Settled, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setWorkItemStatus = `-- name: SetWorkItemStatus :execrows
UPDATE work_items
SET paid = ?, settled = ?
WHERE id = ?
`

type SetWorkItemStatusParams struct {
	Paid    int64
	Settled int64
	ID      int64
}

func (q *Queries) SetWorkItemStatus(ctx context.Context, arg SetWorkItemStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setWorkItemStatus, arg.Paid, arg.Settled, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
