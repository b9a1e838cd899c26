package google

import (
	"fmt"
	"strings"
	"time"

	"saldo/internal/core"
	ports "saldo/internal/sheets"
)

const messageHeader = "Mensaje"

var summaryHeader = []any{"Cliente", "Horas pendientes", "Trabajo pendiente", "Material pendiente", "Pagado", "Saldo a cuenta", "Deuda"}

// ledgerRowValues lays a row out as A..H.
func ledgerRowValues(r ports.LedgerRow) []any {
	return []any{
		r.MessageID,
		r.ClientName,
		r.PaymentID,
		r.PaymentDate.String(),
		r.ItemType.String(),
		r.ItemID,
		r.LineItemDate.String(),
		r.AmountApplied.StringFixed(2),
	}
}

func summaryValues(summaries []core.DebtSummary, at time.Time) [][]any {
	out := make([][]any, 0, len(summaries)+2)
	out = append(out, summaryHeader)
	for _, s := range summaries {
		out = append(out, []any{
			s.ClientName,
			s.PendingHours.StringFixed(2),
			s.PendingWorkCost.StringFixed(2),
			s.PendingMaterialCost.StringFixed(2),
			s.TotalPaid.StringFixed(2),
			s.CreditCarried.StringFixed(2),
			s.TotalDebt.StringFixed(2),
		})
	}
	out = append(out, []any{"Actualizado", at.UTC().Format(time.RFC3339)})
	return out
}

// parseMessageIDs collects the non-empty first cells, skipping the header.
func parseMessageIDs(values [][]interface{}) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || strings.EqualFold(v, messageHeader) {
			continue
		}
		out[v] = struct{}{}
	}
	return out
}
