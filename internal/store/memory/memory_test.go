package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/store"
)

func mustClient(t *testing.T, s *Store, name, rate string) core.Client {
	t.Helper()
	c, err := s.CreateClient(context.Background(), core.Client{Name: name, HourlyRate: decimal.RequireFromString(rate)})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func TestClientsCRUDAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := mustClient(t, s, "Bea", "20")
	a := mustClient(t, s, "Ana", "15")

	list, _ := s.ListClients(ctx)
	if len(list) != 2 || list[0].Name != "Ana" {
		t.Fatalf("unordered clients should sort by name, got %+v", list)
	}

	if err := s.ReorderClients(ctx, []int64{b.ID, a.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	list, _ = s.ListClients(ctx)
	if list[0].ID != b.ID || *list[0].DisplayOrder != 0 || *list[1].DisplayOrder != 1 {
		t.Fatalf("unexpected order: %+v", list)
	}

	if err := s.ReorderClients(ctx, []int64{b.ID, b.ID}); !errors.Is(err, store.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}

	a.Name = "Ana María"
	a.Credit = decimal.NewFromInt(999)
	if err := s.UpdateClient(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetClient(ctx, a.ID)
	if got.Name != "Ana María" || !got.Credit.IsZero() {
		t.Fatalf("update should change name but not credit: %+v", got)
	}

	if _, err := s.GetClient(ctx, 404); !errors.Is(err, core.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if _, err := s.CreateClient(ctx, core.Client{Name: " ", HourlyRate: decimal.NewFromInt(1)}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestUpdateClientCreditClamps(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := mustClient(t, s, "Ana", "20")
	if err := s.UpdateClientCredit(ctx, c.ID, decimal.NewFromInt(-5)); err != nil {
		t.Fatalf("update credit: %v", err)
	}
	got, _ := s.GetClient(ctx, c.ID)
	if !got.Credit.IsZero() {
		t.Fatalf("credit should clamp to zero, got %s", got.Credit)
	}
}

func TestItemsAndPatch(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := mustClient(t, s, "Ana", "20")
	other := mustClient(t, s, "Bea", "20")

	w, err := s.CreateWorkItem(ctx, core.WorkItem{ClientID: c.ID, Date: core.NewDate(2024, 1, 1), Hours: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("create work: %v", err)
	}
	if _, err := s.CreateWorkItem(ctx, core.WorkItem{ClientID: other.ID, Date: core.NewDate(2024, 1, 1), Hours: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("create work: %v", err)
	}
	if _, err := s.CreateWorkItem(ctx, core.WorkItem{ClientID: 999, Date: core.NewDate(2024, 1, 1), Hours: decimal.NewFromInt(1)}); !errors.Is(err, core.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}

	mine, _ := s.ListWorkItems(ctx, c.ID)
	all, _ := s.ListWorkItems(ctx, store.AllClients)
	if len(mine) != 1 || len(all) != 2 {
		t.Fatalf("unexpected list sizes: mine=%d all=%d", len(mine), len(all))
	}

	paid := true
	if err := s.UpdateWorkItem(ctx, w.ID, store.ItemPatch{Paid: &paid}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	got, _ := s.GetWorkItem(ctx, w.ID)
	if !got.Paid || got.Settled {
		t.Fatalf("patch should only touch paid: %+v", got)
	}
	if err := s.UpdateWorkItem(ctx, w.ID, store.Settle()); err != nil {
		t.Fatalf("settle: %v", err)
	}
	got, _ = s.GetWorkItem(ctx, w.ID)
	if !got.Paid || !got.Settled {
		t.Fatalf("expected settled: %+v", got)
	}

	m, err := s.CreateMaterialItem(ctx, core.MaterialItem{ClientID: c.ID, Date: core.NewDate(2024, 1, 2), Description: "cable", Cost: decimal.NewFromInt(8)})
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	m.Description = "cable 3m"
	if err := s.EditMaterialItem(ctx, m); err != nil {
		t.Fatalf("edit material: %v", err)
	}
	if err := s.DeleteMaterialItem(ctx, m.ID); err != nil {
		t.Fatalf("delete material: %v", err)
	}
	if err := s.DeleteMaterialItem(ctx, m.ID); !errors.Is(err, core.ErrMaterialNotFound) {
		t.Fatalf("expected ErrMaterialNotFound, got %v", err)
	}
	if err := s.UpdateWorkItem(ctx, 999, store.Settle()); !errors.Is(err, core.ErrWorkItemNotFound) {
		t.Fatalf("expected ErrWorkItemNotFound, got %v", err)
	}
}

func TestAllocationsUniqueAndCascade(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := mustClient(t, s, "Ana", "20")
	w, _ := s.CreateWorkItem(ctx, core.WorkItem{ClientID: c.ID, Date: core.NewDate(2024, 1, 1), Hours: decimal.NewFromInt(2)})
	p, err := s.CreatePayment(ctx, core.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(40), Date: core.NewDate(2024, 1, 3)})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	row := store.NewAllocation{ClientID: c.ID, LineItemID: w.ID, LineItemType: core.LineItemWork, AmountApplied: decimal.NewFromInt(40)}
	created, err := s.CreateAllocation(ctx, p.ID, []store.NewAllocation{row})
	if err != nil || len(created) != 1 || created[0].ID == 0 {
		t.Fatalf("create allocation: %+v %v", created, err)
	}
	if _, err := s.CreateAllocation(ctx, p.ID, []store.NewAllocation{row}); !errors.Is(err, store.ErrDuplicateAllocation) {
		t.Fatalf("expected ErrDuplicateAllocation, got %v", err)
	}
	if _, err := s.CreateAllocation(ctx, 999, []store.NewAllocation{row}); !errors.Is(err, core.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}

	second, err := s.CreatePayment(ctx, core.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(40), Date: core.NewDate(2024, 1, 4)})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	again := row
	again.AmountApplied = decimal.NewFromInt(1)
	if _, err := s.CreateAllocation(ctx, second.ID, []store.NewAllocation{again}); !errors.Is(err, store.ErrOverAllocated) {
		t.Fatalf("item already covered by another payment: expected ErrOverAllocated, got %v", err)
	}
	missing := row
	missing.LineItemID = 999
	if _, err := s.CreateAllocation(ctx, second.ID, []store.NewAllocation{missing}); !errors.Is(err, core.ErrWorkItemNotFound) {
		t.Fatalf("expected ErrWorkItemNotFound, got %v", err)
	}
	if err := s.DeletePayment(ctx, second.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}

	if err := s.DeletePayment(ctx, p.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	allocs, _ := s.ListAllocations(ctx, c.ID)
	if len(allocs) != 0 {
		t.Fatalf("allocations should go with their payment, got %d", len(allocs))
	}

	if err := s.DeleteClient(ctx, c.ID); err != nil {
		t.Fatalf("delete client: %v", err)
	}
	work, _ := s.ListWorkItems(ctx, store.AllClients)
	if len(work) != 0 {
		t.Fatalf("work items should go with their client, got %d", len(work))
	}
}

func TestNewFromFilesSeedsClients(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	list, _ := s.ListClients(context.Background())
	if len(list) != 0 {
		t.Fatalf("expected no clients without a seed file")
	}

	content := "# name;rate\nAna;20\n\nBea;17,5\nbroken line\nEva;-3\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_clients.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	list, _ = s.ListClients(context.Background())
	if len(list) != 2 {
		t.Fatalf("expected 2 seeded clients, got %+v", list)
	}
	if list[1].Name != "Bea" || !list[1].HourlyRate.Equal(decimal.RequireFromString("17.5")) {
		t.Fatalf("unexpected seed: %+v", list[1])
	}
}
