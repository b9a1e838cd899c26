package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/sheets"
)

// Source is the read side of the ledger the worker exports from.
type Source interface {
	ListAllocations(ctx context.Context, clientID int64) ([]core.Allocation, error)
	ComputeAllSummaries(ctx context.Context) ([]core.DebtSummary, error)
}

// ExportWorker copies committed settlements into the spreadsheet ledger.
type ExportWorker struct {
	source   Source
	exporter sheets.Exporter
	now      func() time.Time

	mu   sync.Mutex
	seen map[string]struct{} // nil until loaded from the exporter
}

func NewExportWorker(source Source, exporter sheets.Exporter) *ExportWorker {
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		now:      time.Now,
	}
}

// HandleSettlementMessage appends one ledger row per settled item. A message
// whose id is already in the ledger is acknowledged without writing.
func (w *ExportWorker) HandleSettlementMessage(ctx context.Context, msg *amqp.SettlementCommittedMessage) error {
	slog.InfoContext(ctx, "Processing settlement message",
		"message_id", msg.MessageID,
		"payment_id", msg.PaymentID,
		"items", len(msg.Items))

	exported, err := w.isExported(ctx, msg.MessageID)
	if err != nil {
		return err
	}
	if exported {
		slog.InfoContext(ctx, "Settlement already exported, skipping", "message_id", msg.MessageID)
		return nil
	}

	rows, err := w.rowsFor(ctx, msg)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	ref, err := w.exporter.AppendRows(ctx, rows)
	if err != nil {
		return fmt.Errorf("append ledger rows: %w", err)
	}
	w.markExported(msg.MessageID)

	slog.InfoContext(ctx, "Exported settlement",
		"message_id", msg.MessageID,
		"payment_id", msg.PaymentID,
		"rows", len(rows),
		"sheets_ref", ref)
	return nil
}

// RefreshSummaries rewrites the debt overview from a fresh computation.
func (w *ExportWorker) RefreshSummaries(ctx context.Context) error {
	summaries, err := w.source.ComputeAllSummaries(ctx)
	if err != nil {
		return fmt.Errorf("compute summaries: %w", err)
	}
	if err := w.exporter.WriteSummaries(ctx, summaries, w.now()); err != nil {
		return fmt.Errorf("write summaries: %w", err)
	}
	slog.InfoContext(ctx, "Debt overview refreshed", "clients", len(summaries))
	return nil
}

// StartupCheck loads the exported message ids and writes a first overview.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	if _, err := w.isExported(ctx, ""); err != nil {
		return err
	}
	return w.RefreshSummaries(ctx)
}

func (w *ExportWorker) isExported(ctx context.Context, messageID string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen == nil {
		ids, err := w.exporter.ExportedMessageIDs(ctx)
		if err != nil {
			return false, fmt.Errorf("load exported messages: %w", err)
		}
		w.seen = ids
		slog.InfoContext(ctx, "Loaded exported settlement ids", "count", len(ids))
	}
	_, ok := w.seen[messageID]
	return ok, nil
}

func (w *ExportWorker) markExported(messageID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[messageID] = struct{}{}
}

type allocKey struct {
	id int64
	t  core.LineItemType
}

// rowsFor prefers the stored allocation for each announced item and falls
// back to the message itself when the allocation is gone.
func (w *ExportWorker) rowsFor(ctx context.Context, msg *amqp.SettlementCommittedMessage) ([]sheets.LedgerRow, error) {
	allocs, err := w.source.ListAllocations(ctx, msg.ClientID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	stored := make(map[allocKey]core.Allocation)
	for _, a := range allocs {
		if a.PaymentID == msg.PaymentID {
			stored[allocKey{a.LineItemID, a.LineItemType}] = a
		}
	}

	paymentDate, _ := core.ParseDate(msg.PaymentDate)
	rows := make([]sheets.LedgerRow, 0, len(msg.Items))
	for _, it := range msg.Items {
		t := core.LineItemType(it.Type)
		if !t.IsValid() {
			slog.WarnContext(ctx, "Skipping settled item with unknown type",
				"message_id", msg.MessageID, "item_id", it.ItemID, "item_type", it.Type)
			continue
		}
		row := sheets.LedgerRow{
			MessageID:     msg.MessageID,
			ClientName:    msg.ClientName,
			PaymentID:     msg.PaymentID,
			PaymentDate:   paymentDate,
			ItemType:      t,
			ItemID:        it.ItemID,
			AmountApplied: it.AmountApplied,
		}
		if a, ok := stored[allocKey{it.ItemID, t}]; ok {
			row.PaymentDate = a.PaymentDate
			row.LineItemDate = a.LineItemDate
			row.AmountApplied = a.AmountApplied
		} else {
			row.LineItemDate, _ = core.ParseDate(it.LineItemDate)
			slog.WarnContext(ctx, "Allocation not found, exporting announced values",
				"message_id", msg.MessageID, "item_id", it.ItemID, "item_type", it.Type)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
