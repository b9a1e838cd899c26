// Package allocation decides which outstanding line items a payment settles.
//
// Two policies exist. FIFO walks work items oldest first and stops at the
// first one the balance cannot cover. Manual lets the caller pick any work or
// material items, one at a time, as long as each still fits in what is left.
// Either way an item is settled in full or not at all.
package allocation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

// Policy names an allocation policy.
type Policy string

const (
	PolicyFIFO   Policy = "fifo"   // oldest work items first, automatic
	PolicyManual Policy = "manual" // caller-selected work and material items
)

var (
	ErrInvalidPolicy       = errors.New("invalid allocation policy")
	ErrInvalidBalance      = errors.New("balance must not be negative")
	ErrInsufficientBalance = errors.New("insufficient balance for item")
	ErrUnknownCandidate    = errors.New("item is not an outstanding candidate")
)

// IsValid checks if the policy is known
func (p Policy) IsValid() bool {
	switch p {
	case PolicyFIFO, PolicyManual:
		return true
	}
	return false
}

func (p Policy) String() string {
	return string(p)
}

// Candidate is an outstanding line item that a payment may settle.
type Candidate = ledger.LineItem

// Key identifies a candidate across both item types.
type Key struct {
	ID   int64
	Type core.LineItemType
}

// KeyOf returns the key of a candidate.
func KeyOf(c Candidate) Key {
	return Key{ID: c.ID, Type: c.Type}
}

// CandidateSet holds a client's outstanding items split by type, each slice
// oldest first.
type CandidateSet struct {
	ClientID int64
	Work     []Candidate
	Material []Candidate
}

// All returns work and material candidates merged in FIFO order.
func (cs CandidateSet) All() []Candidate {
	all := make([]Candidate, 0, len(cs.Work)+len(cs.Material))
	all = append(all, cs.Work...)
	all = append(all, cs.Material...)
	ledger.SortFIFO(all)
	return all
}

// Total is the cost of every candidate.
func (cs CandidateSet) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range cs.Work {
		total = total.Add(c.Cost)
	}
	for _, c := range cs.Material {
		total = total.Add(c.Cost)
	}
	return total
}

// Candidates lists the client's outstanding items with their cost at the
// client's current hourly rate.
func Candidates(s ledger.Snapshot, clientID int64) (CandidateSet, error) {
	client, ok := s.Client(clientID)
	if !ok {
		return CandidateSet{}, fmt.Errorf("client %d: %w", clientID, core.ErrClientNotFound)
	}
	set := CandidateSet{ClientID: clientID}
	for _, item := range ledger.OutstandingItems(s, client) {
		switch item.Type {
		case core.LineItemWork:
			set.Work = append(set.Work, item)
		case core.LineItemMaterial:
			set.Material = append(set.Material, item)
		}
	}
	return set, nil
}

// DecisionItem is one line item to settle and the amount applied to it.
type DecisionItem struct {
	ItemID        int64
	Type          core.LineItemType
	Date          core.Date
	AmountApplied decimal.Decimal
}

// Decision is the output of a policy: items to settle, oldest first, and the
// balance left over as credit.
type Decision struct {
	ClientID     int64
	Policy       Policy
	Balance      decimal.Decimal
	Items        []DecisionItem
	Remaining    decimal.Decimal
	SettledCount int
}

// Total is the sum applied across all decision items.
func (d Decision) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.Items {
		total = total.Add(it.AmountApplied)
	}
	return total
}

// Strategy is implemented by every allocation policy.
type Strategy interface {
	Policy() Policy
	Allocate(balance decimal.Decimal, candidates CandidateSet) (Decision, error)
}

// FIFOStrategy settles work items oldest first while the balance covers them.
// Materials are never auto-settled.
type FIFOStrategy struct{}

func NewFIFOStrategy() *FIFOStrategy {
	return &FIFOStrategy{}
}

func (s *FIFOStrategy) Policy() Policy {
	return PolicyFIFO
}

// Allocate settles the longest date-ordered prefix of work items whose
// cumulative cost fits in balance.
func (s *FIFOStrategy) Allocate(balance decimal.Decimal, candidates CandidateSet) (Decision, error) {
	if balance.IsNegative() {
		return Decision{}, ErrInvalidBalance
	}
	work := append([]Candidate(nil), candidates.Work...)
	ledger.SortFIFO(work)

	b := newBuilder(candidates.ClientID, PolicyFIFO, balance)
	for _, c := range work {
		if !core.Covers(b.remaining, c.Cost) {
			break
		}
		b.add(c)
	}
	return b.decision(), nil
}

// ManualStrategy settles an explicit list of items, in the order given. Any
// item that does not fit in what is left is rejected.
type ManualStrategy struct {
	selected []Key
}

func NewManualStrategy(selected []Key) *ManualStrategy {
	return &ManualStrategy{selected: selected}
}

func (s *ManualStrategy) Policy() Policy {
	return PolicyManual
}

func (s *ManualStrategy) Allocate(balance decimal.Decimal, candidates CandidateSet) (Decision, error) {
	if balance.IsNegative() {
		return Decision{}, ErrInvalidBalance
	}
	sel := NewSelection(balance, candidates)
	for _, k := range s.selected {
		if sel.IsSelected(k) {
			continue
		}
		if err := sel.Select(k); err != nil {
			return Decision{}, err
		}
	}
	return sel.Decision(), nil
}

// Propose runs the named policy. selected is only used by PolicyManual.
func Propose(balance decimal.Decimal, candidates CandidateSet, policy Policy, selected []Key) (Decision, error) {
	var strategy Strategy
	switch policy {
	case PolicyFIFO:
		strategy = NewFIFOStrategy()
	case PolicyManual:
		strategy = NewManualStrategy(selected)
	default:
		return Decision{}, fmt.Errorf("%w: %q", ErrInvalidPolicy, policy)
	}
	return strategy.Allocate(balance, candidates)
}

// builder accumulates decision items against a running balance.
type builder struct {
	d         Decision
	remaining decimal.Decimal
}

func newBuilder(clientID int64, policy Policy, balance decimal.Decimal) *builder {
	return &builder{
		d:         Decision{ClientID: clientID, Policy: policy, Balance: balance, Items: make([]DecisionItem, 0)},
		remaining: balance,
	}
}

// add applies the item's full cost. When the item was admitted on the
// tolerance alone, only what is left is applied so the total never exceeds
// the balance.
func (b *builder) add(c Candidate) {
	applied := decimal.Min(c.Cost, b.remaining)
	b.d.Items = append(b.d.Items, DecisionItem{
		ItemID:        c.ID,
		Type:          c.Type,
		Date:          c.Date,
		AmountApplied: applied,
	})
	b.remaining = core.ClampZero(b.remaining.Sub(applied))
}

func (b *builder) decision() Decision {
	b.d.Remaining = b.remaining
	b.d.SettledCount = len(b.d.Items)
	return b.d
}
