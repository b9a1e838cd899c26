// Package settlement persists allocation decisions: it writes the allocation
// rows, flips the settled flags and stores the leftover credit.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"saldo/internal/allocation"
	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/store"
)

var (
	ErrEmptyDecision          = errors.New("decision settles no items")
	ErrDecisionExceedsBalance = errors.New("decision applies more than the available balance")
	ErrStaleItem              = errors.New("item changed since the decision was made")
	ErrClientMismatch         = errors.New("payment belongs to another client")
)

// Store is the part of the record store the applier needs.
type Store interface {
	GetClient(ctx context.Context, id int64) (core.Client, error)
	GetPayment(ctx context.Context, id int64) (core.Payment, error)
	GetWorkItem(ctx context.Context, id int64) (core.WorkItem, error)
	GetMaterialItem(ctx context.Context, id int64) (core.MaterialItem, error)
	ListPayments(ctx context.Context, clientID int64) ([]core.Payment, error)
	ListAllocations(ctx context.Context, clientID int64) ([]core.Allocation, error)
	CreateAllocation(ctx context.Context, paymentID int64, items []store.NewAllocation) ([]core.Allocation, error)
	UpdateWorkItem(ctx context.Context, id int64, patch store.ItemPatch) error
	UpdateMaterialItem(ctx context.Context, id int64, patch store.ItemPatch) error
	UpdateClientCredit(ctx context.Context, clientID int64, credit decimal.Decimal) error
}

// Publisher announces committed settlements. A nil Publisher disables events.
type Publisher interface {
	PublishSettlementCommitted(ctx context.Context, msg *amqp.SettlementCommittedMessage) error
}

// Result reports what a commit did. It is filled in even when Commit returns
// an error, so callers can tell how many items went through.
type Result struct {
	ClientID        int64
	PaymentID       int64
	SettledCount    int
	Skipped         int // already settled before the commit
	Failed          int
	RemainingCredit decimal.Decimal
	Allocations     []core.Allocation
}

type Applier struct {
	store     Store
	publisher Publisher
	locks     *keyedMutex
}

func NewApplier(s Store, publisher Publisher) *Applier {
	return &Applier{
		store:     s,
		publisher: publisher,
		locks:     newKeyedMutex(),
	}
}

type itemKey struct {
	id int64
	t  core.LineItemType
}

// Commit applies a decision on behalf of payment paymentID.
//
// Items are processed in decision order. An item that is already settled is
// skipped. An item that vanished or whose cost moved by more than a cent is
// reported as ErrStaleItem and the rest continue. Allocations already on an
// item count toward it whichever payment wrote them; only the uncovered part
// is written, so replaying a decision or retrying a half-settled item never
// allocates an item beyond its cost. Every per-item failure is returned joined
// in a single error. Commits for the same client never interleave.
//
// The stored credit is recomputed from the payments and allocations actually
// in the store once the items are done, so items that failed leave their
// share in the credit.
func (a *Applier) Commit(ctx context.Context, paymentID int64, d allocation.Decision) (Result, error) {
	res := Result{ClientID: d.ClientID, PaymentID: paymentID, RemainingCredit: core.ClampZero(d.Balance)}
	if len(d.Items) == 0 {
		return res, ErrEmptyDecision
	}
	if d.Total().GreaterThan(d.Balance) {
		return res, fmt.Errorf("%w: %s over %s", ErrDecisionExceedsBalance, d.Total().StringFixed(2), d.Balance.StringFixed(2))
	}

	unlock := a.locks.Lock(d.ClientID)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return res, err
	}

	payment, err := a.store.GetPayment(ctx, paymentID)
	if err != nil {
		return res, fmt.Errorf("load payment: %w", err)
	}
	if payment.ClientID != d.ClientID {
		return res, fmt.Errorf("payment %d, client %d: %w", paymentID, d.ClientID, ErrClientMismatch)
	}
	client, err := a.store.GetClient(ctx, d.ClientID)
	if err != nil {
		return res, fmt.Errorf("load client: %w", err)
	}
	existing, err := a.store.ListAllocations(ctx, d.ClientID)
	if err != nil {
		return res, fmt.Errorf("load allocations: %w", err)
	}
	allocated := make(map[itemKey]decimal.Decimal)
	for _, al := range existing {
		k := itemKey{al.LineItemID, al.LineItemType}
		allocated[k] = allocated[k].Add(al.AmountApplied)
	}

	var errs []error
	written := decimal.Zero
	settled := make([]allocation.DecisionItem, 0, len(d.Items))
	for _, it := range d.Items {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		status, err := a.check(ctx, client, it)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			slog.WarnContext(ctx, "Settlement item rejected",
				"client_id", client.ID, "payment_id", paymentID,
				"item_id", it.ItemID, "item_type", it.Type, "error", err)
			continue
		}
		if status == alreadySettled {
			res.Skipped++
			continue
		}

		k := itemKey{it.ItemID, it.Type}
		if gap := it.AmountApplied.Sub(allocated[k]); gap.GreaterThan(core.Epsilon) {
			rows, err := a.store.CreateAllocation(ctx, paymentID, []store.NewAllocation{{
				ClientID:      client.ID,
				LineItemID:    it.ItemID,
				LineItemType:  it.Type,
				AmountApplied: gap,
				LineItemDate:  it.Date,
				PaymentDate:   payment.Date,
			}})
			if err != nil {
				res.Failed++
				errs = append(errs, fmt.Errorf("allocate %s %d: %w", it.Type, it.ItemID, err))
				continue
			}
			for _, row := range rows {
				allocated[k] = allocated[k].Add(row.AmountApplied)
				written = written.Add(row.AmountApplied)
			}
			res.Allocations = append(res.Allocations, rows...)
		}

		if err := a.markSettled(ctx, it); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("settle %s %d: %w", it.Type, it.ItemID, err))
			continue
		}
		res.SettledCount++
		settled = append(settled, it)
	}

	res.RemainingCredit = core.ClampZero(d.Balance.Sub(written))
	if ctx.Err() == nil {
		credit, err := a.credit(ctx, client.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("read credit: %w", err))
		} else {
			res.RemainingCredit = credit
		}
		if err := a.store.UpdateClientCredit(ctx, client.ID, res.RemainingCredit); err != nil {
			errs = append(errs, fmt.Errorf("update credit: %w", err))
		}
	}

	err = errors.Join(errs...)
	slog.InfoContext(ctx, "Settlement committed",
		"client_id", client.ID,
		"payment_id", paymentID,
		"policy", d.Policy,
		"settled", res.SettledCount,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"remaining_credit", res.RemainingCredit.StringFixed(2))

	if len(settled) > 0 {
		a.publish(ctx, client, payment, d, settled, res)
	}
	return res, err
}

// credit derives the client's unallocated funds from the stored records.
func (a *Applier) credit(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	payments, err := a.store.ListPayments(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	allocs, err := a.store.ListAllocations(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Credit(ledger.Snapshot{Payments: payments, Allocations: allocs}, clientID), nil
}

type itemStatus int

const (
	pending itemStatus = iota
	alreadySettled
)

// check re-reads the item and confirms the decision still holds for it.
func (a *Applier) check(ctx context.Context, client core.Client, it allocation.DecisionItem) (itemStatus, error) {
	var (
		owner   int64
		isDone  bool
		cost    decimal.Decimal
		lookErr error
	)
	switch it.Type {
	case core.LineItemWork:
		w, err := a.store.GetWorkItem(ctx, it.ItemID)
		owner, isDone, cost, lookErr = w.ClientID, w.Settled, w.Cost(client.HourlyRate), err
	case core.LineItemMaterial:
		m, err := a.store.GetMaterialItem(ctx, it.ItemID)
		owner, isDone, cost, lookErr = m.ClientID, m.Settled, m.Cost, err
	default:
		return pending, fmt.Errorf("%s %d: %w", it.Type, it.ItemID, core.ErrInvalidLineItem)
	}
	if lookErr != nil {
		return pending, fmt.Errorf("%s %d: %w: %w", it.Type, it.ItemID, ErrStaleItem, lookErr)
	}
	if owner != client.ID {
		return pending, fmt.Errorf("%s %d belongs to client %d: %w", it.Type, it.ItemID, owner, ErrStaleItem)
	}
	if isDone {
		return alreadySettled, nil
	}
	if cost.Sub(it.AmountApplied).Abs().GreaterThan(core.Epsilon) {
		return pending, fmt.Errorf("%s %d now costs %s, decision applies %s: %w",
			it.Type, it.ItemID, cost.StringFixed(2), it.AmountApplied.StringFixed(2), ErrStaleItem)
	}
	return pending, nil
}

func (a *Applier) markSettled(ctx context.Context, it allocation.DecisionItem) error {
	if it.Type == core.LineItemWork {
		return a.store.UpdateWorkItem(ctx, it.ItemID, store.Settle())
	}
	return a.store.UpdateMaterialItem(ctx, it.ItemID, store.Settle())
}

// publish is best effort: the commit already happened.
func (a *Applier) publish(ctx context.Context, client core.Client, payment core.Payment, d allocation.Decision, items []allocation.DecisionItem, res Result) {
	if a.publisher == nil {
		return
	}
	msg := amqp.NewSettlementCommittedMessage(client.ID, payment.ID)
	msg.ClientName = client.Name
	msg.PaymentDate = payment.Date.String()
	msg.Policy = d.Policy.String()
	msg.SettledCount = res.SettledCount
	msg.RemainingCredit = res.RemainingCredit
	for _, it := range items {
		msg.Items = append(msg.Items, amqp.SettledItem{
			ItemID:        it.ItemID,
			Type:          it.Type.String(),
			AmountApplied: it.AmountApplied,
			LineItemDate:  it.Date.String(),
		})
	}
	if err := a.publisher.PublishSettlementCommitted(context.WithoutCancel(ctx), msg); err != nil {
		slog.WarnContext(ctx, "Failed to publish settlement event",
			"client_id", client.ID, "payment_id", payment.ID, "error", err)
	}
}
