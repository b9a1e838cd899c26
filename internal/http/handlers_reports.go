package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// handleAllDebts is the book-wide debt view, one summary per client.
func (s *Server) handleAllDebts(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.ComputeAllSummaries(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]debtSummaryDTO, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, toDebtSummaryDTO(sum))
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) handleClientDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.svc.ComputeDebtSummary(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtSummaryDTO(sum))
}

func (s *Server) handlePendingItems(w http.ResponseWriter, r *http.Request) {
	s.writeCandidates(w, r, "id")
}

// handleIncome returns payments received per month. ?year defaults to the
// current year.
func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			writeError(w, r, fmt.Errorf("%w: year %q", errInvalidInput, v))
			return
		}
		year = y
	}

	key := strconv.Itoa(year)
	months, ok := s.incomeCache.Get(key)
	if !ok {
		var err error
		months, err = s.svc.MonthlyIncome(r.Context(), year)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.incomeCache.Set(key, months)
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(year, months))
}
