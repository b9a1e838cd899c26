package http

import (
	"log/slog"
	"net/http"

	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/settlement"
)

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "clienteId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := s.svc.Store().ListPayments(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]paymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, list(out))
}

// handleCreatePayment registers a payment and settles items with it in one
// call. The policy defaults to manual; a manual payment without a selection
// is kept as credit.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate("fecha", req.Fecha)
	if err != nil {
		writeError(w, r, err)
		return
	}
	policy, err := parsePolicy(req.Politica)
	if err != nil {
		writeError(w, r, err)
		return
	}
	keys, err := parseSelection(req.Seleccion)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	out, err := s.svc.RegisterPayment(ctx, core.Payment{
		ClientID: req.ClienteID,
		Amount:   amount(req.Cantidad),
		Date:     date,
		Notes:    req.Observaciones,
	}, policy, keys)
	if out.Payment.ID != 0 {
		s.incomeCache.Purge()
	}
	if err != nil {
		if out.Payment.ID != 0 {
			s.writeCommitFailure(w, r, out.Result, err)
			return
		}
		writeError(w, r, err)
		return
	}

	s.logCommit(r, "Payment registered", out.Payment, policy.String(), out.Result)
	writeJSON(w, http.StatusCreated, paymentOutcomeDTO{
		Pago:       toPaymentDTO(out.Payment),
		Asignacion: toDecisionDTO(out.Decision),
		Resultado:  toResultDTO(out.Result),
	})
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updatePaymentRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	p, err := s.svc.Store().GetPayment(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Cantidad != nil {
		p.Amount = amount(req.Cantidad)
	}
	if req.Fecha != nil {
		if p.Date, err = parseDate("fecha", *req.Fecha); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Observaciones != nil {
		p.Notes = *req.Observaciones
	}
	if err := s.svc.Store().UpdatePayment(ctx, p); err != nil {
		writeError(w, r, err)
		return
	}
	s.incomeCache.Purge()
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

// handleDeletePayment removes the payment and its allocations. Items it
// settled keep their flags; the debt view recomputes credit from what is left.
func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Store().DeletePayment(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.incomeCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

// writeCommitFailure answers a commit that failed after it started writing.
// Rejections that happen before any write keep their own status.
func (s *Server) writeCommitFailure(w http.ResponseWriter, r *http.Request, res settlement.Result, err error) {
	if res.SettledCount == 0 && res.Failed == 0 {
		if status, _ := statusFor(err); status != http.StatusInternalServerError {
			writeError(w, r, err)
			return
		}
	}
	log.FromContext(r.Context()).LogFields(r.Context(), slog.LevelError, "Settlement partially applied",
		log.NewFields().
			WithComponent(log.ComponentSettlement).
			WithError(err, log.ErrorTypePartial))
	writeJSON(w, http.StatusBadGateway, partialCommitResponse{
		resultDTO: toResultDTO(res),
		Error:     err.Error(),
	})
}

func (s *Server) logCommit(r *http.Request, msg string, p core.Payment, policy string, res settlement.Result) {
	f := log.NewFields().
		WithOperation(log.OpRegister).
		WithPayment(p.ClientID, p.ID, p.Amount, policy)
	f[log.FieldSettled] = res.SettledCount
	log.FromContext(r.Context()).LogFields(r.Context(), slog.LevelInfo, msg, f)
}
