package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/store"
)

// Store is an in-process record store. It is safe for concurrent use and is
// the backend for the memory data mode and for tests.
type Store struct {
	mu          sync.Mutex
	nextID      int64
	clients     []core.Client
	work        []core.WorkItem
	materials   []core.MaterialItem
	payments    []core.Payment
	allocations []core.Allocation
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds clients from base/seed_clients.txt, one "name;hourly rate"
// per line. Blank lines and lines starting with # are ignored.
func NewFromFiles(base string) *Store {
	s := New()
	for _, line := range readLines(filepath.Join(base, "seed_clients.txt")) {
		name, rate, ok := strings.Cut(line, ";")
		if !ok {
			continue
		}
		amount, err := core.ParseAmount(rate)
		if err != nil {
			continue
		}
		_, _ = s.CreateClient(context.Background(), core.Client{Name: strings.TrimSpace(name), HourlyRate: amount})
	}
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Clients

func (s *Store) ListClients(_ context.Context) ([]core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Client(nil), s.clients...)
	sortClients(out)
	return out, nil
}

// sortClients orders by DisplayOrder, clients without one last, then by name.
func sortClients(cs []core.Client) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i].DisplayOrder, cs[j].DisplayOrder
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return cs[i].Name < cs[j].Name
	})
}

func (s *Store) GetClient(_ context.Context, id int64) (core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.clientIndex(id)
	if i < 0 {
		return core.Client{}, fmt.Errorf("client %d: %w", id, core.ErrClientNotFound)
	}
	return s.clients[i], nil
}

func (s *Store) CreateClient(_ context.Context, c core.Client) (core.Client, error) {
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	if c.Credit.IsNegative() {
		c.Credit = decimal.Zero
	}
	s.clients = append(s.clients, c)
	return c, nil
}

func (s *Store) UpdateClient(_ context.Context, c core.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.clientIndex(c.ID)
	if i < 0 {
		return fmt.Errorf("client %d: %w", c.ID, core.ErrClientNotFound)
	}
	// credit only changes through UpdateClientCredit
	c.Credit = s.clients[i].Credit
	s.clients[i] = c
	return nil
}

func (s *Store) DeleteClient(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.clientIndex(id)
	if i < 0 {
		return fmt.Errorf("client %d: %w", id, core.ErrClientNotFound)
	}
	s.clients = append(s.clients[:i], s.clients[i+1:]...)
	s.work = filter(s.work, func(w core.WorkItem) bool { return w.ClientID != id })
	s.materials = filter(s.materials, func(m core.MaterialItem) bool { return m.ClientID != id })
	s.payments = filter(s.payments, func(p core.Payment) bool { return p.ClientID != id })
	s.allocations = filter(s.allocations, func(a core.Allocation) bool { return a.ClientID != id })
	return nil
}

func (s *Store) ReorderClients(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) != len(s.clients) {
		return store.ErrInvalidOrder
	}
	pos := make(map[int64]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup || s.clientIndex(id) < 0 {
			return store.ErrInvalidOrder
		}
		pos[id] = i
	}
	for i := range s.clients {
		order := pos[s.clients[i].ID]
		s.clients[i].DisplayOrder = &order
	}
	return nil
}

func (s *Store) UpdateClientCredit(_ context.Context, clientID int64, credit decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.clientIndex(clientID)
	if i < 0 {
		return fmt.Errorf("client %d: %w", clientID, core.ErrClientNotFound)
	}
	s.clients[i].Credit = core.ClampZero(credit)
	return nil
}

func (s *Store) clientIndex(id int64) int {
	for i, c := range s.clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Work items

func (s *Store) ListWorkItems(_ context.Context, clientID int64) ([]core.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.work, func(w core.WorkItem) bool {
		return clientID == store.AllClients || w.ClientID == clientID
	}), nil
}

func (s *Store) GetWorkItem(_ context.Context, id int64) (core.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.work {
		if w.ID == id {
			return w, nil
		}
	}
	return core.WorkItem{}, fmt.Errorf("work item %d: %w", id, core.ErrWorkItemNotFound)
}

func (s *Store) CreateWorkItem(_ context.Context, w core.WorkItem) (core.WorkItem, error) {
	if err := w.Validate(); err != nil {
		return core.WorkItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clientIndex(w.ClientID) < 0 {
		return core.WorkItem{}, fmt.Errorf("client %d: %w", w.ClientID, core.ErrClientNotFound)
	}
	w.ID = s.id()
	s.work = append(s.work, w)
	return w, nil
}

func (s *Store) EditWorkItem(_ context.Context, w core.WorkItem) error {
	if err := w.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.work {
		if s.work[i].ID == w.ID {
			s.work[i] = w
			return nil
		}
	}
	return fmt.Errorf("work item %d: %w", w.ID, core.ErrWorkItemNotFound)
}

func (s *Store) UpdateWorkItem(_ context.Context, id int64, patch store.ItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.work {
		if s.work[i].ID == id {
			s.work[i].Paid, s.work[i].Settled = patch.Apply(s.work[i].Paid, s.work[i].Settled)
			return nil
		}
	}
	return fmt.Errorf("work item %d: %w", id, core.ErrWorkItemNotFound)
}

func (s *Store) DeleteWorkItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.work)
	s.work = filter(s.work, func(w core.WorkItem) bool { return w.ID != id })
	if len(s.work) == n {
		return fmt.Errorf("work item %d: %w", id, core.ErrWorkItemNotFound)
	}
	return nil
}

// Material items

func (s *Store) ListMaterialItems(_ context.Context, clientID int64) ([]core.MaterialItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.materials, func(m core.MaterialItem) bool {
		return clientID == store.AllClients || m.ClientID == clientID
	}), nil
}

func (s *Store) GetMaterialItem(_ context.Context, id int64) (core.MaterialItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.materials {
		if m.ID == id {
			return m, nil
		}
	}
	return core.MaterialItem{}, fmt.Errorf("material %d: %w", id, core.ErrMaterialNotFound)
}

func (s *Store) CreateMaterialItem(_ context.Context, m core.MaterialItem) (core.MaterialItem, error) {
	if err := m.Validate(); err != nil {
		return core.MaterialItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clientIndex(m.ClientID) < 0 {
		return core.MaterialItem{}, fmt.Errorf("client %d: %w", m.ClientID, core.ErrClientNotFound)
	}
	m.ID = s.id()
	s.materials = append(s.materials, m)
	return m, nil
}

func (s *Store) EditMaterialItem(_ context.Context, m core.MaterialItem) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.materials {
		if s.materials[i].ID == m.ID {
			s.materials[i] = m
			return nil
		}
	}
	return fmt.Errorf("material %d: %w", m.ID, core.ErrMaterialNotFound)
}

func (s *Store) UpdateMaterialItem(_ context.Context, id int64, patch store.ItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.materials {
		if s.materials[i].ID == id {
			s.materials[i].Paid, s.materials[i].Settled = patch.Apply(s.materials[i].Paid, s.materials[i].Settled)
			return nil
		}
	}
	return fmt.Errorf("material %d: %w", id, core.ErrMaterialNotFound)
}

func (s *Store) DeleteMaterialItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.materials)
	s.materials = filter(s.materials, func(m core.MaterialItem) bool { return m.ID != id })
	if len(s.materials) == n {
		return fmt.Errorf("material %d: %w", id, core.ErrMaterialNotFound)
	}
	return nil
}

// Payments

func (s *Store) ListPayments(_ context.Context, clientID int64) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.payments, func(p core.Payment) bool {
		return clientID == store.AllClients || p.ClientID == clientID
	}), nil
}

func (s *Store) GetPayment(_ context.Context, id int64) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Payment{}, fmt.Errorf("payment %d: %w", id, core.ErrPaymentNotFound)
}

func (s *Store) CreatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clientIndex(p.ClientID) < 0 {
		return core.Payment{}, fmt.Errorf("client %d: %w", p.ClientID, core.ErrClientNotFound)
	}
	p.ID = s.id()
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *Store) UpdatePayment(_ context.Context, p core.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].ID == p.ID {
			s.payments[i] = p
			return nil
		}
	}
	return fmt.Errorf("payment %d: %w", p.ID, core.ErrPaymentNotFound)
}

func (s *Store) DeletePayment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.payments)
	s.payments = filter(s.payments, func(p core.Payment) bool { return p.ID != id })
	if len(s.payments) == n {
		return fmt.Errorf("payment %d: %w", id, core.ErrPaymentNotFound)
	}
	s.allocations = filter(s.allocations, func(a core.Allocation) bool { return a.PaymentID != id })
	return nil
}

// Allocations

func (s *Store) ListAllocations(_ context.Context, clientID int64) ([]core.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.allocations, func(a core.Allocation) bool {
		return clientID == store.AllClients || a.ClientID == clientID
	}), nil
}

func (s *Store) CreateAllocation(_ context.Context, paymentID int64, items []store.NewAllocation) ([]core.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, p := range s.payments {
		if p.ID == paymentID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("payment %d: %w", paymentID, core.ErrPaymentNotFound)
	}

	rows := make([]core.Allocation, 0, len(items))
	for _, it := range items {
		if s.hasAllocation(paymentID, it.LineItemID, it.LineItemType) || containsAllocation(rows, it) {
			return nil, fmt.Errorf("%s %d: %w", it.LineItemType, it.LineItemID, store.ErrDuplicateAllocation)
		}
		cost, err := s.itemCost(it.LineItemType, it.LineItemID)
		if err != nil {
			return nil, err
		}
		if store.ExceedsCost(s.allocatedTo(it.LineItemType, it.LineItemID), it.AmountApplied, cost) {
			return nil, fmt.Errorf("%s %d: %w", it.LineItemType, it.LineItemID, store.ErrOverAllocated)
		}
		a := core.Allocation{
			PaymentID:     paymentID,
			ClientID:      it.ClientID,
			LineItemID:    it.LineItemID,
			LineItemType:  it.LineItemType,
			AmountApplied: it.AmountApplied,
			LineItemDate:  it.LineItemDate,
			PaymentDate:   it.PaymentDate,
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		rows = append(rows, a)
	}
	for i := range rows {
		rows[i].ID = s.id()
	}
	s.allocations = append(s.allocations, rows...)
	return rows, nil
}

func (s *Store) hasAllocation(paymentID, itemID int64, t core.LineItemType) bool {
	for _, a := range s.allocations {
		if a.PaymentID == paymentID && a.LineItemID == itemID && a.LineItemType == t {
			return true
		}
	}
	return false
}

// itemCost is the item's cost at the client's current rate.
func (s *Store) itemCost(t core.LineItemType, id int64) (decimal.Decimal, error) {
	switch t {
	case core.LineItemWork:
		for _, w := range s.work {
			if w.ID != id {
				continue
			}
			i := s.clientIndex(w.ClientID)
			if i < 0 {
				return decimal.Zero, fmt.Errorf("client %d: %w", w.ClientID, core.ErrClientNotFound)
			}
			return w.Cost(s.clients[i].HourlyRate), nil
		}
		return decimal.Zero, fmt.Errorf("work item %d: %w", id, core.ErrWorkItemNotFound)
	case core.LineItemMaterial:
		for _, m := range s.materials {
			if m.ID == id {
				return m.Cost, nil
			}
		}
		return decimal.Zero, fmt.Errorf("material %d: %w", id, core.ErrMaterialNotFound)
	}
	return decimal.Zero, fmt.Errorf("%s %d: %w", t, id, core.ErrInvalidLineItem)
}

func (s *Store) allocatedTo(t core.LineItemType, id int64) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range s.allocations {
		if a.LineItemID == id && a.LineItemType == t {
			sum = sum.Add(a.AmountApplied)
		}
	}
	return sum
}

func containsAllocation(rows []core.Allocation, it store.NewAllocation) bool {
	for _, a := range rows {
		if a.LineItemID == it.LineItemID && a.LineItemType == it.LineItemType {
			return true
		}
	}
	return false
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
