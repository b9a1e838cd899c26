package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"saldo/internal/core"
	"saldo/internal/sheets"
)

var _ sheets.Exporter = (*Store)(nil)

// Store keeps exported rows in memory.
type Store struct {
	mu        sync.Mutex
	rows      []sheets.LedgerRow
	summaries []core.DebtSummary
	writtenAt time.Time
}

func New() *Store {
	return &Store{}
}

// AppendRows stores the rows and returns a synthetic row reference.
func (s *Store) AppendRows(_ context.Context, rows []sheets.LedgerRow) (string, error) {
	if len(rows) == 0 {
		return "", errors.New("no rows to append")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.rows) + 1
	s.rows = append(s.rows, rows...)
	return fmt.Sprintf("mem:%d-%d", first, len(s.rows)), nil
}

func (s *Store) ExportedMessageIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.rows))
	for _, r := range s.rows {
		out[r.MessageID] = struct{}{}
	}
	return out, nil
}

func (s *Store) WriteSummaries(_ context.Context, summaries []core.DebtSummary, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append([]core.DebtSummary(nil), summaries...)
	s.writtenAt = at
	return nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.LedgerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.LedgerRow(nil), s.rows...)
}

// Summaries returns the last overview written and when.
func (s *Store) Summaries() ([]core.DebtSummary, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DebtSummary(nil), s.summaries...), s.writtenAt
}
