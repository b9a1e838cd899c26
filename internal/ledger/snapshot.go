// Package ledger computes per-client debt from an in-memory snapshot of the
// record store. Every function here is pure: nothing is cached between calls
// and the full history is re-scanned each time.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Snapshot is everything the calculator needs, read once from the record store.
type Snapshot struct {
	Clients       []core.Client
	WorkItems     []core.WorkItem
	MaterialItems []core.MaterialItem
	Payments      []core.Payment
	Allocations   []core.Allocation
}

// LineItem is an outstanding work or material item with its cost resolved
// against the client's current hourly rate.
type LineItem struct {
	ID          int64
	Type        core.LineItemType
	Date        core.Date
	Hours       decimal.Decimal // zero for materials
	Description string
	Cost        decimal.Decimal
}

// Client looks up a client by id.
func (s Snapshot) Client(id int64) (core.Client, bool) {
	for _, c := range s.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return core.Client{}, false
}

// ForClient returns the subset of the snapshot that belongs to one client.
func (s Snapshot) ForClient(id int64) Snapshot {
	out := Snapshot{}
	if c, ok := s.Client(id); ok {
		out.Clients = []core.Client{c}
	}
	for _, w := range s.WorkItems {
		if w.ClientID == id {
			out.WorkItems = append(out.WorkItems, w)
		}
	}
	for _, m := range s.MaterialItems {
		if m.ClientID == id {
			out.MaterialItems = append(out.MaterialItems, m)
		}
	}
	for _, p := range s.Payments {
		if p.ClientID == id {
			out.Payments = append(out.Payments, p)
		}
	}
	for _, a := range s.Allocations {
		if a.ClientID == id {
			out.Allocations = append(out.Allocations, a)
		}
	}
	return out
}

// OutstandingItems returns the client's unpaid, unsettled items in FIFO order:
// date ascending, work before material on the same day, then by id.
func OutstandingItems(s Snapshot, client core.Client) []LineItem {
	var items []LineItem
	for _, w := range s.WorkItems {
		if w.ClientID != client.ID || !w.Outstanding() {
			continue
		}
		items = append(items, LineItem{
			ID:    w.ID,
			Type:  core.LineItemWork,
			Date:  w.Date,
			Hours: w.Hours,
			Cost:  w.Cost(client.HourlyRate),
		})
	}
	for _, m := range s.MaterialItems {
		if m.ClientID != client.ID || !m.Outstanding() {
			continue
		}
		items = append(items, LineItem{
			ID:          m.ID,
			Type:        core.LineItemMaterial,
			Date:        m.Date,
			Description: m.Description,
			Cost:        m.Cost,
		})
	}
	SortFIFO(items)
	return items
}

// SortFIFO orders items oldest first. The sort is stable so equal keys keep
// their input order.
func SortFIFO(items []LineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		if a.Type != b.Type {
			return a.Type == core.LineItemWork
		}
		return a.ID < b.ID
	})
}
