package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func baseSnapshot() Snapshot {
	return Snapshot{
		Clients: []core.Client{{ID: 1, Name: "Ana", HourlyRate: dec("20")}},
		WorkItems: []core.WorkItem{
			{ID: 11, ClientID: 1, Date: core.NewDate(2024, 1, 5), Hours: dec("2")},
			{ID: 10, ClientID: 1, Date: core.NewDate(2024, 1, 1), Hours: dec("3")},
		},
	}
}

func TestCompute(t *testing.T) {
	t.Run("no payments means every outstanding item is pending", func(t *testing.T) {
		s := baseSnapshot()
		summary, err := Compute(s, 1)
		require.NoError(t, err)
		assert.True(t, summary.PendingHours.Equal(dec("5")))
		assert.True(t, summary.PendingWorkCost.Equal(dec("100")))
		assert.True(t, summary.TotalDebt.Equal(dec("100")))
		assert.True(t, summary.CreditCarried.IsZero())
	})

	t.Run("unallocated payment covers oldest items first", func(t *testing.T) {
		s := baseSnapshot()
		s.Payments = []core.Payment{{ID: 1, ClientID: 1, Amount: dec("70"), Date: core.NewDate(2024, 2, 1)}}
		summary, err := Compute(s, 1)
		require.NoError(t, err)
		// 60 is coverable, 40 is not
		assert.True(t, summary.PendingHours.Equal(dec("2")), "got %s", summary.PendingHours)
		assert.True(t, summary.PendingWorkCost.Equal(dec("40")))
		assert.True(t, summary.OutstandingCost.Equal(dec("100")))
		assert.True(t, summary.CreditCarried.Equal(dec("70")))
		assert.True(t, summary.TotalDebt.Equal(dec("30")))
	})

	t.Run("after FIFO settlement of 60 out of 70 the debt is 40 minus 10 credit", func(t *testing.T) {
		s := baseSnapshot()
		s.WorkItems[1].Paid, s.WorkItems[1].Settled = true, true
		s.Payments = []core.Payment{{ID: 1, ClientID: 1, Amount: dec("70"), Date: core.NewDate(2024, 2, 1)}}
		s.Allocations = []core.Allocation{{ID: 1, PaymentID: 1, ClientID: 1, LineItemID: 10, LineItemType: core.LineItemWork, AmountApplied: dec("60")}}
		summary, err := Compute(s, 1)
		require.NoError(t, err)
		assert.True(t, summary.CreditCarried.Equal(dec("10")))
		assert.True(t, summary.OutstandingCost.Equal(dec("40")))
		assert.True(t, summary.TotalDebt.Equal(dec("30")))
		require.Len(t, summary.PaymentsUsage, 1)
		assert.True(t, summary.PaymentsUsage[0].Used.Equal(dec("60")))
		assert.True(t, summary.PaymentsUsage[0].Remaining.Equal(dec("10")))
		assert.False(t, summary.PaymentsUsage[0].FullyUsed)
	})

	t.Run("settled and paid items never count even without funds", func(t *testing.T) {
		s := baseSnapshot()
		s.WorkItems[0].Paid = true
		s.WorkItems[1].Paid, s.WorkItems[1].Settled = true, true
		s.MaterialItems = []core.MaterialItem{
			{ID: 20, ClientID: 1, Date: core.NewDate(2024, 1, 2), Cost: dec("15"), Paid: true, Settled: true},
			{ID: 21, ClientID: 1, Date: core.NewDate(2024, 1, 3), Cost: dec("5")},
		}
		summary, err := Compute(s, 1)
		require.NoError(t, err)
		assert.True(t, summary.PendingHours.IsZero())
		assert.True(t, summary.PendingMaterialCost.Equal(dec("5")))
		assert.True(t, summary.TotalDebt.Equal(dec("5")))
	})

	t.Run("surplus becomes credit, debt clamps at zero", func(t *testing.T) {
		s := baseSnapshot()
		s.Payments = []core.Payment{{ID: 1, ClientID: 1, Amount: dec("500"), Date: core.NewDate(2024, 2, 1)}}
		summary, err := Compute(s, 1)
		require.NoError(t, err)
		assert.True(t, summary.TotalDebt.IsZero())
		assert.True(t, summary.CreditCarried.Equal(dec("500")))
		assert.True(t, summary.PendingWorkCost.IsZero())
	})

	t.Run("single material paid exactly", func(t *testing.T) {
		s := Snapshot{
			Clients:       []core.Client{{ID: 2, Name: "Luis", HourlyRate: dec("15")}},
			MaterialItems: []core.MaterialItem{{ID: 30, ClientID: 2, Date: core.NewDate(2024, 3, 1), Cost: dec("25"), Paid: true, Settled: true}},
			Payments:      []core.Payment{{ID: 5, ClientID: 2, Amount: dec("25"), Date: core.NewDate(2024, 3, 2)}},
			Allocations:   []core.Allocation{{PaymentID: 5, ClientID: 2, LineItemID: 30, LineItemType: core.LineItemMaterial, AmountApplied: dec("25")}},
		}
		summary, err := Compute(s, 2)
		require.NoError(t, err)
		assert.True(t, summary.TotalDebt.IsZero())
		assert.True(t, summary.CreditCarried.IsZero())
		assert.True(t, summary.PaymentsUsage[0].FullyUsed)
	})

	t.Run("unknown client is an input error", func(t *testing.T) {
		_, err := Compute(baseSnapshot(), 99)
		assert.ErrorIs(t, err, core.ErrClientNotFound)
	})

	t.Run("rounding crumbs are absorbed by the tolerance", func(t *testing.T) {
		s := Snapshot{
			Clients:   []core.Client{{ID: 1, Name: "Ana", HourlyRate: dec("33.333")}},
			WorkItems: []core.WorkItem{{ID: 1, ClientID: 1, Date: core.NewDate(2024, 1, 1), Hours: dec("3")}},
			Payments:  []core.Payment{{ID: 1, ClientID: 1, Amount: dec("99.99"), Date: core.NewDate(2024, 1, 2)}},
		}
		summary, err := Compute(s, 1)
		require.NoError(t, err)
		assert.True(t, summary.PendingHours.IsZero())
		assert.True(t, summary.TotalDebt.LessThanOrEqual(core.Epsilon), "got %s", summary.TotalDebt)
	})
}

func TestComputeNeverNegative(t *testing.T) {
	amounts := []string{"0.01", "1", "59.99", "60", "100", "100.01", "10000"}
	for _, a := range amounts {
		s := baseSnapshot()
		s.Payments = []core.Payment{{ID: 1, ClientID: 1, Amount: dec(a), Date: core.NewDate(2024, 2, 1)}}
		summary, err := Compute(s, 1)
		require.NoError(t, err)
		assert.False(t, summary.TotalDebt.IsNegative(), "payment %s", a)
		assert.False(t, summary.CreditCarried.IsNegative(), "payment %s", a)
	}
}

func TestComputeAllSkipsOrphans(t *testing.T) {
	s := baseSnapshot()
	s.WorkItems = append(s.WorkItems, core.WorkItem{ID: 99, ClientID: 42, Date: core.NewDate(2024, 1, 1), Hours: dec("8")})
	s.Clients = append(s.Clients, core.Client{ID: 3, Name: "Eva", HourlyRate: dec("10")})

	summaries := ComputeAll(context.Background(), s)
	require.Len(t, summaries, 2)
	assert.Equal(t, int64(1), summaries[0].ClientID)
	assert.True(t, summaries[0].TotalDebt.Equal(dec("100")))
	assert.Equal(t, int64(3), summaries[1].ClientID)
	assert.True(t, summaries[1].TotalDebt.IsZero())
}

func TestCreditIgnoresAllocationsOfDeletedPayments(t *testing.T) {
	s := baseSnapshot()
	s.Payments = []core.Payment{{ID: 2, ClientID: 1, Amount: dec("50"), Date: core.NewDate(2024, 2, 1)}}
	s.Allocations = []core.Allocation{
		{PaymentID: 1, ClientID: 1, LineItemID: 10, LineItemType: core.LineItemWork, AmountApplied: dec("60")},
		{PaymentID: 2, ClientID: 1, LineItemID: 11, LineItemType: core.LineItemWork, AmountApplied: dec("40")},
	}
	assert.True(t, Credit(s, 1).Equal(dec("10")))
}

func TestOutstandingItemsOrder(t *testing.T) {
	s := baseSnapshot()
	s.MaterialItems = []core.MaterialItem{
		{ID: 2, ClientID: 1, Date: core.NewDate(2024, 1, 1), Cost: dec("5")},
		{ID: 1, ClientID: 1, Date: core.NewDate(2024, 1, 3), Cost: dec("7")},
	}
	client, _ := s.Client(1)
	items := OutstandingItems(s, client)
	require.Len(t, items, 4)
	assert.Equal(t, int64(10), items[0].ID)
	assert.Equal(t, core.LineItemWork, items[0].Type)
	assert.Equal(t, int64(2), items[1].ID)
	assert.Equal(t, core.LineItemMaterial, items[1].Type)
	assert.Equal(t, int64(1), items[2].ID)
	assert.Equal(t, int64(11), items[3].ID)
	assert.True(t, items[0].Cost.Equal(dec("60")))
}

func TestMonthlyIncome(t *testing.T) {
	s := Snapshot{Payments: []core.Payment{
		{ID: 1, ClientID: 1, Amount: dec("10"), Date: core.NewDate(2024, 1, 5)},
		{ID: 2, ClientID: 2, Amount: dec("15.5"), Date: core.NewDate(2024, 1, 20)},
		{ID: 3, ClientID: 1, Amount: dec("30"), Date: core.NewDate(2024, 12, 1)},
		{ID: 4, ClientID: 1, Amount: dec("99"), Date: core.NewDate(2023, 12, 1)},
	}}
	months := MonthlyIncome(s, 2024)
	require.Len(t, months, 12)
	assert.True(t, months[0].Total.Equal(dec("25.5")))
	assert.True(t, months[1].Total.IsZero())
	assert.True(t, months[11].Total.Equal(dec("30")))
	assert.Equal(t, 12, months[11].Month)
}
