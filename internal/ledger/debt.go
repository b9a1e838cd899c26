package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Credit returns the client's unallocated payment funds (saldo a cuenta):
// everything received minus everything already applied to line items.
// Allocations that point at a payment no longer present are ignored.
func Credit(s Snapshot, clientID int64) decimal.Decimal {
	paid := decimal.Zero
	known := make(map[int64]struct{})
	for _, p := range s.Payments {
		if p.ClientID != clientID {
			continue
		}
		paid = paid.Add(p.Amount)
		known[p.ID] = struct{}{}
	}
	used := decimal.Zero
	for _, a := range s.Allocations {
		if a.ClientID != clientID {
			continue
		}
		if _, ok := known[a.PaymentID]; !ok {
			continue
		}
		used = used.Add(a.AmountApplied)
	}
	return core.ClampZero(paid.Sub(used))
}

// Compute builds the debt summary for one client.
//
// Outstanding items are walked oldest first against the client's credit; the
// ones the credit cannot cover make up the pending totals. TotalDebt is the
// outstanding cost net of credit and never drops below zero: a surplus stays
// as CreditCarried instead.
func Compute(s Snapshot, clientID int64) (core.DebtSummary, error) {
	client, ok := s.Client(clientID)
	if !ok {
		return core.DebtSummary{}, fmt.Errorf("client %d: %w", clientID, core.ErrClientNotFound)
	}

	credit := Credit(s, clientID)
	summary := core.DebtSummary{
		ClientID:            client.ID,
		ClientName:          client.Name,
		PendingHours:        decimal.Zero,
		PendingWorkCost:     decimal.Zero,
		PendingMaterialCost: decimal.Zero,
		OutstandingCost:     decimal.Zero,
		TotalPaid:           decimal.Zero,
		CreditCarried:       core.Round2(credit),
	}

	funds := credit
	for _, item := range OutstandingItems(s, client) {
		summary.OutstandingCost = summary.OutstandingCost.Add(item.Cost)
		if core.Covers(funds, item.Cost) {
			funds = core.ClampZero(funds.Sub(item.Cost))
			continue
		}
		switch item.Type {
		case core.LineItemWork:
			summary.PendingHours = summary.PendingHours.Add(item.Hours)
			summary.PendingWorkCost = summary.PendingWorkCost.Add(item.Cost)
		case core.LineItemMaterial:
			summary.PendingMaterialCost = summary.PendingMaterialCost.Add(item.Cost)
		}
	}

	summary.PendingWorkCost = core.Round2(summary.PendingWorkCost)
	summary.PendingMaterialCost = core.Round2(summary.PendingMaterialCost)
	summary.OutstandingCost = core.Round2(summary.OutstandingCost)
	summary.TotalDebt = core.Round2(core.ClampZero(summary.OutstandingCost.Sub(credit)))
	summary.PaymentsUsage = PaymentsUsage(s, clientID)
	for _, u := range summary.PaymentsUsage {
		summary.TotalPaid = summary.TotalPaid.Add(u.Amount)
	}

	return summary, nil
}

// ComputeAll summarises every client in snapshot order. Items whose client no
// longer exists are logged and left out; they never abort the batch.
func ComputeAll(ctx context.Context, s Snapshot) []core.DebtSummary {
	known := make(map[int64]struct{}, len(s.Clients))
	for _, c := range s.Clients {
		known[c.ID] = struct{}{}
	}
	orphans := 0
	for _, w := range s.WorkItems {
		if _, ok := known[w.ClientID]; !ok {
			orphans++
		}
	}
	for _, m := range s.MaterialItems {
		if _, ok := known[m.ClientID]; !ok {
			orphans++
		}
	}
	if orphans > 0 {
		slog.WarnContext(ctx, "Skipping line items of unknown clients", "orphaned_items", orphans)
	}

	out := make([]core.DebtSummary, 0, len(s.Clients))
	for _, c := range s.Clients {
		summary, err := Compute(s, c.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Debt computation failed", "client_id", c.ID, "error", err)
			continue
		}
		out = append(out, summary)
	}
	return out
}

// PaymentsUsage lists the client's payments oldest first with how much of each
// has been allocated. Allocations may exceed a single payment's amount when
// they consumed credit carried in from earlier payments; Remaining is clamped.
func PaymentsUsage(s Snapshot, clientID int64) []core.PaymentUsage {
	used := make(map[int64]decimal.Decimal)
	for _, a := range s.Allocations {
		if a.ClientID == clientID {
			used[a.PaymentID] = used[a.PaymentID].Add(a.AmountApplied)
		}
	}

	var payments []core.Payment
	for _, p := range s.Payments {
		if p.ClientID == clientID {
			payments = append(payments, p)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].Date.Equal(payments[j].Date.Time) {
			return payments[i].Date.Before(payments[j].Date.Time)
		}
		return payments[i].ID < payments[j].ID
	})

	out := make([]core.PaymentUsage, 0, len(payments))
	for _, p := range payments {
		u := used[p.ID]
		remaining := core.Round2(core.ClampZero(p.Amount.Sub(u)))
		out = append(out, core.PaymentUsage{
			PaymentID: p.ID,
			Date:      p.Date,
			Amount:    p.Amount,
			Used:      core.Round2(u),
			Remaining: remaining,
			FullyUsed: remaining.LessThanOrEqual(core.Epsilon),
		})
	}
	return out
}

// MonthlyIncome returns twelve buckets with the payments received in each
// month of year, across all clients.
func MonthlyIncome(s Snapshot, year int) []core.MonthTotal {
	out := make([]core.MonthTotal, 12)
	for i := range out {
		out[i] = core.MonthTotal{Year: year, Month: i + 1, Total: decimal.Zero}
	}
	for _, p := range s.Payments {
		if p.Date.Year() != year {
			continue
		}
		m := int(p.Date.Month()) - 1
		out[m].Total = out[m].Total.Add(p.Amount)
	}
	return out
}
