// Package store defines the record store the ledger reads from and the
// settlement applier writes to. Adapters live in store/memory and storage.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// AllClients passed as a clientID to a List method returns every client's records.
const AllClients int64 = 0

var (
	ErrDuplicateAllocation = errors.New("allocation already exists for payment and item")
	ErrInvalidOrder        = errors.New("client order must list every client exactly once")
	ErrOverAllocated       = errors.New("allocations would exceed the item's cost")
)

// ExceedsCost reports whether adding add to what an item already has
// allocated takes it past cost by more than a cent.
func ExceedsCost(allocated, add, cost decimal.Decimal) bool {
	return allocated.Add(add).Sub(cost).GreaterThan(core.Epsilon)
}

// ItemPatch updates the status flags of a work or material item. Nil fields
// are left unchanged.
type ItemPatch struct {
	Paid    *bool
	Settled *bool
}

// Settle returns a patch that marks an item paid and settled.
func Settle() ItemPatch {
	t := true
	return ItemPatch{Paid: &t, Settled: &t}
}

// Apply returns the flags after the patch.
func (p ItemPatch) Apply(paid, settled bool) (bool, bool) {
	if p.Paid != nil {
		paid = *p.Paid
	}
	if p.Settled != nil {
		settled = *p.Settled
	}
	return paid, settled
}

// NewAllocation is the input for one allocation row. The payment comes from
// the CreateAllocation call.
type NewAllocation struct {
	ClientID      int64
	LineItemID    int64
	LineItemType  core.LineItemType
	AmountApplied decimal.Decimal
	LineItemDate  core.Date
	PaymentDate   core.Date
}

// Ports for the record store.
type (
	ClientStore interface {
		ListClients(ctx context.Context) ([]core.Client, error)
		GetClient(ctx context.Context, id int64) (core.Client, error)
		CreateClient(ctx context.Context, c core.Client) (core.Client, error)
		UpdateClient(ctx context.Context, c core.Client) error
		// DeleteClient removes the client and every record that belongs to it.
		DeleteClient(ctx context.Context, id int64) error
		// ReorderClients sets DisplayOrder to each id's position in ids.
		ReorderClients(ctx context.Context, ids []int64) error
		// UpdateClientCredit overwrites the stored credit balance.
		UpdateClientCredit(ctx context.Context, clientID int64, credit decimal.Decimal) error
	}

	WorkItemStore interface {
		ListWorkItems(ctx context.Context, clientID int64) ([]core.WorkItem, error)
		GetWorkItem(ctx context.Context, id int64) (core.WorkItem, error)
		CreateWorkItem(ctx context.Context, w core.WorkItem) (core.WorkItem, error)
		EditWorkItem(ctx context.Context, w core.WorkItem) error
		UpdateWorkItem(ctx context.Context, id int64, patch ItemPatch) error
		DeleteWorkItem(ctx context.Context, id int64) error
	}

	MaterialItemStore interface {
		ListMaterialItems(ctx context.Context, clientID int64) ([]core.MaterialItem, error)
		GetMaterialItem(ctx context.Context, id int64) (core.MaterialItem, error)
		CreateMaterialItem(ctx context.Context, m core.MaterialItem) (core.MaterialItem, error)
		EditMaterialItem(ctx context.Context, m core.MaterialItem) error
		UpdateMaterialItem(ctx context.Context, id int64, patch ItemPatch) error
		DeleteMaterialItem(ctx context.Context, id int64) error
	}

	PaymentStore interface {
		ListPayments(ctx context.Context, clientID int64) ([]core.Payment, error)
		GetPayment(ctx context.Context, id int64) (core.Payment, error)
		CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
		UpdatePayment(ctx context.Context, p core.Payment) error
		// DeletePayment removes the payment and its allocations.
		DeletePayment(ctx context.Context, id int64) error
	}

	AllocationStore interface {
		ListAllocations(ctx context.Context, clientID int64) ([]core.Allocation, error)
		// CreateAllocation writes the rows for one payment. A row that repeats
		// (payment, item, type) fails with ErrDuplicateAllocation, a row that
		// would take the item's allocations, across all payments, past its
		// current cost fails with ErrOverAllocated. Either way nothing is
		// written.
		CreateAllocation(ctx context.Context, paymentID int64, items []NewAllocation) ([]core.Allocation, error)
	}

	// RecordStore is the full contract a backend implements.
	RecordStore interface {
		ClientStore
		WorkItemStore
		MaterialItemStore
		PaymentStore
		AllocationStore
	}
)
