package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Selection is the state of an interactive allocation: a balance, the
// outstanding candidates, and the items picked so far. It is not safe for
// concurrent use.
type Selection struct {
	balance    decimal.Decimal
	clientID   int64
	candidates []Candidate
	index      map[Key]int
	selected   map[Key]struct{}
}

// NewSelection starts an empty selection over the candidate set.
func NewSelection(balance decimal.Decimal, set CandidateSet) *Selection {
	all := set.All()
	index := make(map[Key]int, len(all))
	for i, c := range all {
		index[KeyOf(c)] = i
	}
	return &Selection{
		balance:    balance,
		clientID:   set.ClientID,
		candidates: all,
		index:      index,
		selected:   make(map[Key]struct{}),
	}
}

// Balance is the amount available before any selection.
func (s *Selection) Balance() decimal.Decimal {
	return s.balance
}

// Remaining is the balance minus the cost of every selected item, never negative.
func (s *Selection) Remaining() decimal.Decimal {
	remaining := s.balance
	for k := range s.selected {
		remaining = remaining.Sub(s.candidates[s.index[k]].Cost)
	}
	return core.ClampZero(remaining)
}

// IsSelected reports whether the item is part of the selection.
func (s *Selection) IsSelected(k Key) bool {
	_, ok := s.selected[k]
	return ok
}

// Len is the number of selected items.
func (s *Selection) Len() int {
	return len(s.selected)
}

// Select adds an item if what is left still covers its cost. On
// ErrInsufficientBalance the selection is left unchanged.
func (s *Selection) Select(k Key) error {
	i, ok := s.index[k]
	if !ok {
		return fmt.Errorf("%s %d: %w", k.Type, k.ID, ErrUnknownCandidate)
	}
	if s.IsSelected(k) {
		return nil
	}
	c := s.candidates[i]
	if remaining := s.Remaining(); !core.Covers(remaining, c.Cost) {
		return fmt.Errorf("%s %d costs %s, %s left: %w",
			k.Type, k.ID, c.Cost.StringFixed(2), remaining.StringFixed(2), ErrInsufficientBalance)
	}
	s.selected[k] = struct{}{}
	return nil
}

// Remove drops an item from the selection. It always succeeds.
func (s *Selection) Remove(k Key) {
	delete(s.selected, k)
}

// Toggle removes a selected item or tries to add an unselected one.
func (s *Selection) Toggle(k Key) error {
	if s.IsSelected(k) {
		s.Remove(k)
		return nil
	}
	return s.Select(k)
}

// SelectAllThatFits replaces the selection with the greedy oldest-first fill
// of the balance. If the selection already equals that fill it is cleared
// instead, so the operation behaves as a toggle. It returns the number of
// items selected afterwards.
func (s *Selection) SelectAllThatFits() int {
	fit := make(map[Key]struct{})
	remaining := s.balance
	for _, c := range s.candidates {
		if !core.Covers(remaining, c.Cost) {
			continue
		}
		fit[KeyOf(c)] = struct{}{}
		remaining = core.ClampZero(remaining.Sub(c.Cost))
	}

	if sameKeys(fit, s.selected) {
		s.selected = make(map[Key]struct{})
		return 0
	}
	s.selected = fit
	return len(fit)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.selected = make(map[Key]struct{})
}

// Decision returns the selected items oldest first. Selection order does not
// matter: the same set always yields the same decision.
func (s *Selection) Decision() Decision {
	b := newBuilder(s.clientID, PolicyManual, s.balance)
	for _, c := range s.candidates {
		if s.IsSelected(KeyOf(c)) {
			b.add(c)
		}
	}
	return b.decision()
}

func sameKeys(a, b map[Key]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
