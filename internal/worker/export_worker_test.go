package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/allocation"
	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/services"
	"saldo/internal/sheets"
	sheetsmem "saldo/internal/sheets/memory"
	"saldo/internal/store/memory"
)

type capturePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.SettlementCommittedMessage
}

func (p *capturePublisher) PublishSettlementCommitted(_ context.Context, msg *amqp.SettlementCommittedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

// committed registers a payment that settles one work item and returns the
// published event.
func committed(t *testing.T) (*services.LedgerService, *amqp.SettlementCommittedMessage) {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	c, err := s.CreateClient(ctx, core.Client{Name: "Ana", HourlyRate: decimal.NewFromInt(20)})
	require.NoError(t, err)
	_, err = s.CreateWorkItem(ctx, core.WorkItem{ClientID: c.ID, Date: core.NewDate(2024, 1, 1), Hours: decimal.NewFromInt(3)})
	require.NoError(t, err)
	_, err = s.CreateMaterialItem(ctx, core.MaterialItem{ClientID: c.ID, Date: core.NewDate(2024, 1, 2), Description: "abono", Cost: decimal.NewFromInt(15)})
	require.NoError(t, err)

	pub := &capturePublisher{}
	svc := services.NewLedgerService(s, pub)
	_, err = svc.RegisterPayment(ctx, core.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(70), Date: core.NewDate(2024, 2, 1)}, allocation.PolicyFIFO, nil)
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)
	return svc, pub.msgs[0]
}

func TestHandleSettlementMessageExportsRows(t *testing.T) {
	svc, msg := committed(t)
	exporter := sheetsmem.New()
	w := NewExportWorker(svc, exporter)

	require.NoError(t, w.HandleSettlementMessage(context.Background(), msg))

	rows := exporter.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, msg.MessageID, rows[0].MessageID)
	assert.Equal(t, "Ana", rows[0].ClientName)
	assert.Equal(t, core.LineItemWork, rows[0].ItemType)
	assert.Equal(t, "2024-01-01", rows[0].LineItemDate.String())
	assert.Equal(t, "2024-02-01", rows[0].PaymentDate.String())
	assert.True(t, rows[0].AmountApplied.Equal(decimal.NewFromInt(60)))
}

func TestHandleSettlementMessageIsIdempotent(t *testing.T) {
	svc, msg := committed(t)
	exporter := sheetsmem.New()

	require.NoError(t, NewExportWorker(svc, exporter).HandleSettlementMessage(context.Background(), msg))

	// a fresh worker learns what is exported from the ledger itself
	w := NewExportWorker(svc, exporter)
	require.NoError(t, w.HandleSettlementMessage(context.Background(), msg))
	require.NoError(t, w.HandleSettlementMessage(context.Background(), msg))
	assert.Len(t, exporter.Rows(), 1)
}

func TestHandleSettlementMessageFallsBackToAnnouncedValues(t *testing.T) {
	svc, msg := committed(t)
	require.NoError(t, svc.Store().DeletePayment(context.Background(), msg.PaymentID))

	exporter := sheetsmem.New()
	require.NoError(t, NewExportWorker(svc, exporter).HandleSettlementMessage(context.Background(), msg))

	rows := exporter.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-01", rows[0].LineItemDate.String())
	assert.True(t, rows[0].AmountApplied.Equal(decimal.NewFromInt(60)))
}

func TestHandleSettlementMessageSkipsUnknownTypes(t *testing.T) {
	svc, msg := committed(t)
	msg.Items = []amqp.SettledItem{{ItemID: 99, Type: "labour"}}

	exporter := sheetsmem.New()
	require.NoError(t, NewExportWorker(svc, exporter).HandleSettlementMessage(context.Background(), msg))
	assert.Empty(t, exporter.Rows())
}

type failingExporter struct {
	*sheetsmem.Store
	appendErr error
	idsErr    error
}

func (f *failingExporter) AppendRows(ctx context.Context, rows []sheets.LedgerRow) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	return f.Store.AppendRows(ctx, rows)
}

func (f *failingExporter) ExportedMessageIDs(ctx context.Context) (map[string]struct{}, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.Store.ExportedMessageIDs(ctx)
}

func TestHandleSettlementMessageErrorsRequeue(t *testing.T) {
	svc, msg := committed(t)
	boom := errors.New("quota exceeded")

	exporter := &failingExporter{Store: sheetsmem.New(), appendErr: boom}
	w := NewExportWorker(svc, exporter)
	assert.ErrorIs(t, w.HandleSettlementMessage(context.Background(), msg), boom)

	// not marked as exported, so the redelivery goes through
	exporter.appendErr = nil
	require.NoError(t, w.HandleSettlementMessage(context.Background(), msg))
	assert.Len(t, exporter.Rows(), 1)

	exporter = &failingExporter{Store: sheetsmem.New(), idsErr: boom}
	assert.ErrorIs(t, NewExportWorker(svc, exporter).HandleSettlementMessage(context.Background(), msg), boom)
}

func TestStartupCheckWritesOverview(t *testing.T) {
	svc, _ := committed(t)
	exporter := sheetsmem.New()
	w := NewExportWorker(svc, exporter)
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return at }

	require.NoError(t, w.StartupCheck(context.Background()))

	summaries, when := exporter.Summaries()
	require.Len(t, summaries, 1)
	// 15 of material outstanding less 10 of credit
	assert.True(t, summaries[0].TotalDebt.Equal(decimal.NewFromInt(5)))
	assert.True(t, when.Equal(at))
}

func TestSummaryRefresherLifecycle(t *testing.T) {
	svc, _ := committed(t)
	exporter := sheetsmem.New()
	r := NewSummaryRefresher(NewExportWorker(svc, exporter), 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, r.Start(ctx))
	assert.True(t, r.IsRunning())
	assert.Error(t, r.Start(ctx))

	assert.Eventually(t, func() bool {
		s, _ := exporter.Summaries()
		return len(s) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, r.Stop(ctx))
	assert.False(t, r.IsRunning())
	require.NoError(t, r.Stop(ctx))
}

func TestSummaryRefresherRestarts(t *testing.T) {
	svc, _ := committed(t)
	r := NewSummaryRefresher(NewExportWorker(svc, sheetsmem.New()), time.Millisecond)
	ctx := context.Background()

	// each loop closes the channels it was started with, so a quick restart
	// never races the previous loop under -race
	for i := 0; i < 20; i++ {
		require.NoError(t, r.Start(ctx))
		require.NoError(t, r.Stop(ctx))
	}
	assert.False(t, r.IsRunning())
}
