package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ store.RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before opening the main handle
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn in a transaction, rolling back on error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Clients

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.queries.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	out := make([]core.Client, 0, len(rows))
	for _, row := range rows {
		c, err := clientFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetClient(ctx context.Context, id int64) (core.Client, error) {
	row, err := r.queries.GetClient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, fmt.Errorf("client %d: %w", id, core.ErrClientNotFound)
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client: %w", err)
	}
	return clientFromRow(row)
}

func (r *SQLiteRepository) CreateClient(ctx context.Context, c core.Client) (core.Client, error) {
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}
	row, err := r.queries.CreateClient(ctx, CreateClientParams{
		Name:         strings.TrimSpace(c.Name),
		HourlyRate:   c.HourlyRate.String(),
		DisplayOrder: nullOrder(c.DisplayOrder),
		Credit:       core.ClampZero(c.Credit).String(),
	})
	if err != nil {
		return core.Client{}, fmt.Errorf("create client: %w", err)
	}

	slog.InfoContext(ctx, "Client saved to SQLite", "id", row.ID, "name", row.Name)
	return clientFromRow(row)
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, c core.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateClient(ctx, UpdateClientParams{
		Name:         strings.TrimSpace(c.Name),
		HourlyRate:   c.HourlyRate.String(),
		DisplayOrder: nullOrder(c.DisplayOrder),
		ID:           c.ID,
	})
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("client %d: %w", c.ID, core.ErrClientNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteClient(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteClient(ctx, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("client %d: %w", id, core.ErrClientNotFound)
	}
	slog.InfoContext(ctx, "Client deleted with its records", "id", id)
	return nil
}

func (r *SQLiteRepository) ReorderClients(ctx context.Context, ids []int64) error {
	return r.withTx(ctx, func(q *Queries) error {
		count, err := q.CountClients(ctx)
		if err != nil {
			return fmt.Errorf("count clients: %w", err)
		}
		if int64(len(ids)) != count {
			return store.ErrInvalidOrder
		}
		seen := make(map[int64]struct{}, len(ids))
		for i, id := range ids {
			if _, dup := seen[id]; dup {
				return store.ErrInvalidOrder
			}
			seen[id] = struct{}{}
			n, err := q.UpdateClientOrder(ctx, UpdateClientOrderParams{
				DisplayOrder: sql.NullInt64{Int64: int64(i), Valid: true},
				ID:           id,
			})
			if err != nil {
				return fmt.Errorf("update client order: %w", err)
			}
			if n == 0 {
				return store.ErrInvalidOrder
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) UpdateClientCredit(ctx context.Context, clientID int64, credit decimal.Decimal) error {
	n, err := r.queries.UpdateClientCredit(ctx, UpdateClientCreditParams{
		Credit: core.ClampZero(credit).String(),
		ID:     clientID,
	})
	if err != nil {
		return fmt.Errorf("update client credit: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("client %d: %w", clientID, core.ErrClientNotFound)
	}
	return nil
}

// Work items

func (r *SQLiteRepository) ListWorkItems(ctx context.Context, clientID int64) ([]core.WorkItem, error) {
	rows, err := r.queries.ListWorkItems(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	out := make([]core.WorkItem, 0, len(rows))
	for _, row := range rows {
		w, err := workItemFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *SQLiteRepository) GetWorkItem(ctx context.Context, id int64) (core.WorkItem, error) {
	row, err := r.queries.GetWorkItem(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.WorkItem{}, fmt.Errorf("work item %d: %w", id, core.ErrWorkItemNotFound)
	}
	if err != nil {
		return core.WorkItem{}, fmt.Errorf("get work item: %w", err)
	}
	return workItemFromRow(row)
}

func (r *SQLiteRepository) CreateWorkItem(ctx context.Context, w core.WorkItem) (core.WorkItem, error) {
	if err := w.Validate(); err != nil {
		return core.WorkItem{}, err
	}
	row, err := r.queries.CreateWorkItem(ctx, CreateWorkItemParams{
		ClientID: w.ClientID,
		Date:     w.Date.String(),
		Hours:    w.Hours.String(),
		Paid:     boolToInt(w.Paid),
		Settled:  boolToInt(w.Settled),
		Notes:    w.Notes,
	})
	if err != nil {
		return core.WorkItem{}, clientFKError(w.ClientID, fmt.Errorf("create work item: %w", err))
	}
	return workItemFromRow(row)
}

func (r *SQLiteRepository) EditWorkItem(ctx context.Context, w core.WorkItem) error {
	if err := w.Validate(); err != nil {
		return err
	}
	n, err := r.queries.EditWorkItem(ctx, EditWorkItemParams{
		ClientID: w.ClientID,
		Date:     w.Date.String(),
		Hours:    w.Hours.String(),
		Paid:     boolToInt(w.Paid),
		Settled:  boolToInt(w.Settled),
		Notes:    w.Notes,
		ID:       w.ID,
	})
	if err != nil {
		return clientFKError(w.ClientID, fmt.Errorf("edit work item: %w", err))
	}
	if n == 0 {
		return fmt.Errorf("work item %d: %w", w.ID, core.ErrWorkItemNotFound)
	}
	return nil
}

func (r *SQLiteRepository) UpdateWorkItem(ctx context.Context, id int64, patch store.ItemPatch) error {
	return r.withTx(ctx, func(q *Queries) error {
		row, err := q.GetWorkItem(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("work item %d: %w", id, core.ErrWorkItemNotFound)
		}
		if err != nil {
			return fmt.Errorf("get work item: %w", err)
		}
		paid, settled := patch.Apply(row.Paid == 1, row.Settled == 1)
		if _, err := q.SetWorkItemStatus(ctx, SetWorkItemStatusParams{
			Paid:    boolToInt(paid),
			Settled: boolToInt(settled),
			ID:      id,
		}); err != nil {
			return fmt.Errorf("update work item status: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteWorkItem(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteWorkItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete work item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("work item %d: %w", id, core.ErrWorkItemNotFound)
	}
	return nil
}

// Material items

func (r *SQLiteRepository) ListMaterialItems(ctx context.Context, clientID int64) ([]core.MaterialItem, error) {
	rows, err := r.queries.ListMaterialItems(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list material items: %w", err)
	}
	out := make([]core.MaterialItem, 0, len(rows))
	for _, row := range rows {
		m, err := materialFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *SQLiteRepository) GetMaterialItem(ctx context.Context, id int64) (core.MaterialItem, error) {
	row, err := r.queries.GetMaterialItem(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MaterialItem{}, fmt.Errorf("material %d: %w", id, core.ErrMaterialNotFound)
	}
	if err != nil {
		return core.MaterialItem{}, fmt.Errorf("get material item: %w", err)
	}
	return materialFromRow(row)
}

func (r *SQLiteRepository) CreateMaterialItem(ctx context.Context, m core.MaterialItem) (core.MaterialItem, error) {
	if err := m.Validate(); err != nil {
		return core.MaterialItem{}, err
	}
	row, err := r.queries.CreateMaterialItem(ctx, CreateMaterialItemParams{
		ClientID:    m.ClientID,
		Date:        m.Date.String(),
		Description: m.Description,
		Cost:        m.Cost.String(),
		Paid:        boolToInt(m.Paid),
		Settled:     boolToInt(m.Settled),
	})
	if err != nil {
		return core.MaterialItem{}, clientFKError(m.ClientID, fmt.Errorf("create material item: %w", err))
	}
	return materialFromRow(row)
}

func (r *SQLiteRepository) EditMaterialItem(ctx context.Context, m core.MaterialItem) error {
	if err := m.Validate(); err != nil {
		return err
	}
	n, err := r.queries.EditMaterialItem(ctx, EditMaterialItemParams{
		ClientID:    m.ClientID,
		Date:        m.Date.String(),
		Description: m.Description,
		Cost:        m.Cost.String(),
		Paid:        boolToInt(m.Paid),
		Settled:     boolToInt(m.Settled),
		ID:          m.ID,
	})
	if err != nil {
		return clientFKError(m.ClientID, fmt.Errorf("edit material item: %w", err))
	}
	if n == 0 {
		return fmt.Errorf("material %d: %w", m.ID, core.ErrMaterialNotFound)
	}
	return nil
}

func (r *SQLiteRepository) UpdateMaterialItem(ctx context.Context, id int64, patch store.ItemPatch) error {
	return r.withTx(ctx, func(q *Queries) error {
		row, err := q.GetMaterialItem(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("material %d: %w", id, core.ErrMaterialNotFound)
		}
		if err != nil {
			return fmt.Errorf("get material item: %w", err)
		}
		paid, settled := patch.Apply(row.Paid == 1, row.Settled == 1)
		if _, err := q.SetMaterialItemStatus(ctx, SetMaterialItemStatusParams{
			Paid:    boolToInt(paid),
			Settled: boolToInt(settled),
			ID:      id,
		}); err != nil {
			return fmt.Errorf("update material item status: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteMaterialItem(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteMaterialItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete material item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("material %d: %w", id, core.ErrMaterialNotFound)
	}
	return nil
}

// Payments

func (r *SQLiteRepository) ListPayments(ctx context.Context, clientID int64) ([]core.Payment, error) {
	rows, err := r.queries.ListPayments(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]core.Payment, 0, len(rows))
	for _, row := range rows {
		p, err := paymentFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	row, err := r.queries.GetPayment(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, fmt.Errorf("payment %d: %w", id, core.ErrPaymentNotFound)
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return paymentFromRow(row)
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	row, err := r.queries.CreatePayment(ctx, CreatePaymentParams{
		ClientID: p.ClientID,
		Amount:   p.Amount.String(),
		Date:     p.Date.String(),
		Notes:    p.Notes,
	})
	if err != nil {
		return core.Payment{}, clientFKError(p.ClientID, fmt.Errorf("create payment: %w", err))
	}

	slog.InfoContext(ctx, "Payment saved to SQLite",
		"id", row.ID,
		"client_id", row.ClientID,
		"amount", row.Amount,
		"date", row.Date)
	return paymentFromRow(row)
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdatePayment(ctx, UpdatePaymentParams{
		ClientID: p.ClientID,
		Amount:   p.Amount.String(),
		Date:     p.Date.String(),
		Notes:    p.Notes,
		ID:       p.ID,
	})
	if err != nil {
		return clientFKError(p.ClientID, fmt.Errorf("update payment: %w", err))
	}
	if n == 0 {
		return fmt.Errorf("payment %d: %w", p.ID, core.ErrPaymentNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id int64) error {
	n, err := r.queries.DeletePayment(ctx, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("payment %d: %w", id, core.ErrPaymentNotFound)
	}
	return nil
}

// Allocations

func (r *SQLiteRepository) ListAllocations(ctx context.Context, clientID int64) ([]core.Allocation, error) {
	rows, err := r.queries.ListAllocations(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	out := make([]core.Allocation, 0, len(rows))
	for _, row := range rows {
		a, err := allocationFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateAllocation(ctx context.Context, paymentID int64, items []store.NewAllocation) ([]core.Allocation, error) {
	var out []core.Allocation
	err := r.withTx(ctx, func(q *Queries) error {
		if _, err := q.GetPayment(ctx, paymentID); errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("payment %d: %w", paymentID, core.ErrPaymentNotFound)
		} else if err != nil {
			return fmt.Errorf("get payment: %w", err)
		}

		out = make([]core.Allocation, 0, len(items))
		for _, it := range items {
			a := core.Allocation{
				PaymentID:     paymentID,
				ClientID:      it.ClientID,
				LineItemID:    it.LineItemID,
				LineItemType:  it.LineItemType,
				AmountApplied: it.AmountApplied,
			}
			if err := a.Validate(); err != nil {
				return err
			}
			existing, err := q.ListItemAllocations(ctx, ListItemAllocationsParams{
				LineItemID:   it.LineItemID,
				LineItemType: it.LineItemType.String(),
			})
			if err != nil {
				return fmt.Errorf("list item allocations: %w", err)
			}
			allocated := decimal.Zero
			for _, e := range existing {
				if e.PaymentID == paymentID {
					return fmt.Errorf("%s %d: %w", it.LineItemType, it.LineItemID, store.ErrDuplicateAllocation)
				}
				amount, err := decimal.NewFromString(e.AmountApplied)
				if err != nil {
					return fmt.Errorf("allocation %d amount %q: %w", e.ID, e.AmountApplied, err)
				}
				allocated = allocated.Add(amount)
			}
			cost, err := itemCost(ctx, q, it.LineItemType, it.LineItemID)
			if err != nil {
				return err
			}
			if store.ExceedsCost(allocated, it.AmountApplied, cost) {
				return fmt.Errorf("%s %d: %w", it.LineItemType, it.LineItemID, store.ErrOverAllocated)
			}
			row, err := q.CreateAllocation(ctx, CreateAllocationParams{
				PaymentID:     paymentID,
				ClientID:      it.ClientID,
				LineItemID:    it.LineItemID,
				LineItemType:  it.LineItemType.String(),
				AmountApplied: it.AmountApplied.String(),
				LineItemDate:  dateText(it.LineItemDate),
				PaymentDate:   dateText(it.PaymentDate),
			})
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%s %d: %w", it.LineItemType, it.LineItemID, store.ErrDuplicateAllocation)
				}
				return fmt.Errorf("create allocation: %w", err)
			}
			created, err := allocationFromRow(row)
			if err != nil {
				return err
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Row mapping

func clientFromRow(row Client) (core.Client, error) {
	rate, err := decimal.NewFromString(row.HourlyRate)
	if err != nil {
		return core.Client{}, fmt.Errorf("client %d hourly rate %q: %w", row.ID, row.HourlyRate, err)
	}
	credit, err := decimal.NewFromString(row.Credit)
	if err != nil {
		return core.Client{}, fmt.Errorf("client %d credit %q: %w", row.ID, row.Credit, err)
	}
	c := core.Client{ID: row.ID, Name: row.Name, HourlyRate: rate, Credit: credit}
	if row.DisplayOrder.Valid {
		order := int(row.DisplayOrder.Int64)
		c.DisplayOrder = &order
	}
	return c, nil
}

// itemCost prices a line item at its client's current rate.
func itemCost(ctx context.Context, q *Queries, t core.LineItemType, id int64) (decimal.Decimal, error) {
	switch t {
	case core.LineItemWork:
		row, err := q.GetWorkItem(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("work item %d: %w", id, core.ErrWorkItemNotFound)
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("get work item: %w", err)
		}
		w, err := workItemFromRow(row)
		if err != nil {
			return decimal.Zero, err
		}
		crow, err := q.GetClient(ctx, w.ClientID)
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("client %d: %w", w.ClientID, core.ErrClientNotFound)
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("get client: %w", err)
		}
		c, err := clientFromRow(crow)
		if err != nil {
			return decimal.Zero, err
		}
		return w.Cost(c.HourlyRate), nil
	case core.LineItemMaterial:
		row, err := q.GetMaterialItem(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("material %d: %w", id, core.ErrMaterialNotFound)
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("get material: %w", err)
		}
		m, err := materialFromRow(row)
		if err != nil {
			return decimal.Zero, err
		}
		return m.Cost, nil
	}
	return decimal.Zero, core.ErrInvalidLineItem
}

func workItemFromRow(row WorkItem) (core.WorkItem, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.WorkItem{}, fmt.Errorf("work item %d date %q: %w", row.ID, row.Date, err)
	}
	hours, err := decimal.NewFromString(row.Hours)
	if err != nil {
		return core.WorkItem{}, fmt.Errorf("work item %d hours %q: %w", row.ID, row.Hours, err)
	}
	return core.WorkItem{
		ID:       row.ID,
		ClientID: row.ClientID,
		Date:     date,
		Hours:    hours,
		Paid:     row.Paid == 1,
		Settled:  row.Settled == 1,
		Notes:    row.Notes,
	}, nil
}

func materialFromRow(row MaterialItem) (core.MaterialItem, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.MaterialItem{}, fmt.Errorf("material %d date %q: %w", row.ID, row.Date, err)
	}
	cost, err := decimal.NewFromString(row.Cost)
	if err != nil {
		return core.MaterialItem{}, fmt.Errorf("material %d cost %q: %w", row.ID, row.Cost, err)
	}
	return core.MaterialItem{
		ID:          row.ID,
		ClientID:    row.ClientID,
		Date:        date,
		Description: row.Description,
		Cost:        cost,
		Paid:        row.Paid == 1,
		Settled:     row.Settled == 1,
	}, nil
}

func paymentFromRow(row Payment) (core.Payment, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Payment{}, fmt.Errorf("payment %d date %q: %w", row.ID, row.Date, err)
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Payment{}, fmt.Errorf("payment %d amount %q: %w", row.ID, row.Amount, err)
	}
	return core.Payment{ID: row.ID, ClientID: row.ClientID, Amount: amount, Date: date, Notes: row.Notes}, nil
}

func allocationFromRow(row Allocation) (core.Allocation, error) {
	amount, err := decimal.NewFromString(row.AmountApplied)
	if err != nil {
		return core.Allocation{}, fmt.Errorf("allocation %d amount %q: %w", row.ID, row.AmountApplied, err)
	}
	a := core.Allocation{
		ID:            row.ID,
		PaymentID:     row.PaymentID,
		ClientID:      row.ClientID,
		LineItemID:    row.LineItemID,
		LineItemType:  core.LineItemType(row.LineItemType),
		AmountApplied: amount,
	}
	// dates are informational; older rows may not carry them
	if d, err := core.ParseDate(row.LineItemDate); err == nil {
		a.LineItemDate = d
	}
	if d, err := core.ParseDate(row.PaymentDate); err == nil {
		a.PaymentDate = d
	}
	return a, nil
}

func nullOrder(order *int) sql.NullInt64 {
	if order == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*order), Valid: true}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func dateText(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// clientFKError maps a foreign key failure on client_id to ErrClientNotFound.
func clientFKError(clientID int64, err error) error {
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return fmt.Errorf("client %d: %w", clientID, core.ErrClientNotFound)
	}
	return err
}
