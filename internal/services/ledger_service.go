package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"saldo/internal/allocation"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/settlement"
	"saldo/internal/store"
)

// LedgerService orchestrates debt computation and settlement over a record store.
type LedgerService struct {
	store     store.RecordStore
	applier   *settlement.Applier
	publisher settlement.Publisher
}

// NewLedgerService wires the service. publisher may be nil.
func NewLedgerService(s store.RecordStore, publisher settlement.Publisher) *LedgerService {
	return &LedgerService{
		store:     s,
		applier:   settlement.NewApplier(s, publisher),
		publisher: publisher,
	}
}

// Store exposes the underlying record store for plain CRUD.
func (s *LedgerService) Store() store.RecordStore {
	return s.store
}

// LoadSnapshot reads everything the calculator needs. clientID restricts the
// snapshot to one client; store.AllClients loads the whole book.
func (s *LedgerService) LoadSnapshot(ctx context.Context, clientID int64) (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if clientID == store.AllClients {
			clients, err := s.store.ListClients(gctx)
			snap.Clients = clients
			return err
		}
		c, err := s.store.GetClient(gctx, clientID)
		if err != nil {
			return err
		}
		snap.Clients = []core.Client{c}
		return nil
	})
	g.Go(func() error {
		items, err := s.store.ListWorkItems(gctx, clientID)
		snap.WorkItems = items
		return err
	})
	g.Go(func() error {
		items, err := s.store.ListMaterialItems(gctx, clientID)
		snap.MaterialItems = items
		return err
	})
	g.Go(func() error {
		payments, err := s.store.ListPayments(gctx, clientID)
		snap.Payments = payments
		return err
	})
	g.Go(func() error {
		allocs, err := s.store.ListAllocations(gctx, clientID)
		snap.Allocations = allocs
		return err
	})

	if err := g.Wait(); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// ComputeDebtSummary returns one client's debt, recomputed from scratch.
func (s *LedgerService) ComputeDebtSummary(ctx context.Context, clientID int64) (core.DebtSummary, error) {
	snap, err := s.LoadSnapshot(ctx, clientID)
	if err != nil {
		return core.DebtSummary{}, err
	}
	return ledger.Compute(snap, clientID)
}

// ComputeAllSummaries returns every client's debt in display order.
func (s *LedgerService) ComputeAllSummaries(ctx context.Context) ([]core.DebtSummary, error) {
	snap, err := s.LoadSnapshot(ctx, store.AllClients)
	if err != nil {
		return nil, err
	}
	return ledger.ComputeAll(ctx, snap), nil
}

// ComputeAllocationCandidates lists the client's outstanding items and the
// balance available to settle them.
func (s *LedgerService) ComputeAllocationCandidates(ctx context.Context, clientID int64) (allocation.CandidateSet, error) {
	snap, err := s.LoadSnapshot(ctx, clientID)
	if err != nil {
		return allocation.CandidateSet{}, err
	}
	return allocation.Candidates(snap, clientID)
}

// ListAllocations returns the allocation history of one client, or of
// everyone with store.AllClients.
func (s *LedgerService) ListAllocations(ctx context.Context, clientID int64) ([]core.Allocation, error) {
	allocs, err := s.store.ListAllocations(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return allocs, nil
}

// AvailableBalance is the client's unallocated funds across all payments.
func (s *LedgerService) AvailableBalance(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	snap, err := s.LoadSnapshot(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Credit(snap, clientID), nil
}

// ProposeAllocation runs a policy against the client's unallocated funds.
// Nothing is written.
func (s *LedgerService) ProposeAllocation(ctx context.Context, clientID int64, policy allocation.Policy, selected []allocation.Key) (allocation.Decision, error) {
	snap, err := s.LoadSnapshot(ctx, clientID)
	if err != nil {
		return allocation.Decision{}, err
	}
	return proposeFor(snap, clientID, ledger.Credit(snap, clientID), policy, selected)
}

func proposeFor(snap ledger.Snapshot, clientID int64, balance decimal.Decimal, policy allocation.Policy, selected []allocation.Key) (allocation.Decision, error) {
	set, err := allocation.Candidates(snap, clientID)
	if err != nil {
		return allocation.Decision{}, err
	}
	return allocation.Propose(balance, set, policy, selected)
}

// CommitAllocation persists a decision on behalf of a payment.
func (s *LedgerService) CommitAllocation(ctx context.Context, paymentID int64, d allocation.Decision) (settlement.Result, error) {
	return s.applier.Commit(ctx, paymentID, d)
}

// PaymentOutcome is what RegisterPayment did.
type PaymentOutcome struct {
	Payment  core.Payment
	Decision allocation.Decision
	Result   settlement.Result
}

// RegisterPayment stores a payment and settles items with it.
//
// The decision is made before anything is written, against the client's
// existing credit plus the new amount, so an invalid manual selection leaves
// the store untouched. With an empty decision the payment is kept as credit.
func (s *LedgerService) RegisterPayment(ctx context.Context, p core.Payment, policy allocation.Policy, selected []allocation.Key) (PaymentOutcome, error) {
	if err := p.Validate(); err != nil {
		return PaymentOutcome{}, err
	}
	if !policy.IsValid() {
		return PaymentOutcome{}, fmt.Errorf("%w: %q", allocation.ErrInvalidPolicy, policy)
	}

	snap, err := s.LoadSnapshot(ctx, p.ClientID)
	if err != nil {
		return PaymentOutcome{}, err
	}
	balance := ledger.Credit(snap, p.ClientID).Add(p.Amount)
	d, err := proposeFor(snap, p.ClientID, balance, policy, selected)
	if err != nil {
		return PaymentOutcome{}, err
	}

	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return PaymentOutcome{}, fmt.Errorf("create payment: %w", err)
	}
	out := PaymentOutcome{Payment: created, Decision: d}

	slog.InfoContext(ctx, "Payment registered",
		"payment_id", created.ID,
		"client_id", created.ClientID,
		"amount", created.Amount.StringFixed(2),
		"policy", policy,
		"items", len(d.Items))

	if len(d.Items) == 0 {
		out.Result = settlement.Result{ClientID: p.ClientID, PaymentID: created.ID, RemainingCredit: balance}
		if err := s.store.UpdateClientCredit(ctx, p.ClientID, balance); err != nil {
			return out, fmt.Errorf("update credit: %w", err)
		}
		return out, nil
	}

	out.Result, err = s.applier.Commit(ctx, created.ID, d)
	return out, err
}

// MonthlyIncome returns payments received per month of year.
func (s *LedgerService) MonthlyIncome(ctx context.Context, year int) ([]core.MonthTotal, error) {
	payments, err := s.store.ListPayments(ctx, store.AllClients)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return ledger.MonthlyIncome(ledger.Snapshot{Payments: payments}, year), nil
}

// Close releases the store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
