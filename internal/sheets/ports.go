package sheets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// LedgerRow is one exported allocation: how much of a payment went to one item.
type LedgerRow struct {
	MessageID     string
	ClientName    string
	PaymentID     int64
	PaymentDate   core.Date
	ItemType      core.LineItemType
	ItemID        int64
	LineItemDate  core.Date
	AmountApplied decimal.Decimal
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		AppendRows(ctx context.Context, rows []LedgerRow) (rowRef string, err error)
	}

	// LedgerReader lists the settlement messages already present in the
	// ledger, so a redelivered message is not exported twice.
	LedgerReader interface {
		ExportedMessageIDs(ctx context.Context) (map[string]struct{}, error)
	}

	// SummaryWriter replaces the debt overview tab.
	SummaryWriter interface {
		WriteSummaries(ctx context.Context, summaries []core.DebtSummary, at time.Time) error
	}

	Exporter interface {
		LedgerWriter
		LedgerReader
		SummaryWriter
	}
)
