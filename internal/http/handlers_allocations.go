package http

import (
	"net/http"
	"strings"

	"saldo/internal/allocation"
)

func (s *Server) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clienteId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	if _, err := s.svc.Store().GetClient(ctx, clientID); err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.svc.ListAllocations(ctx, clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]allocationDTO, 0, len(rows))
	for _, a := range rows {
		out = append(out, toAllocationDTO(a))
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	s.writeCandidates(w, r, "clienteId")
}

func (s *Server) writeCandidates(w http.ResponseWriter, r *http.Request, param string) {
	clientID, err := pathID(r, param)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	set, err := s.svc.ComputeAllocationCandidates(ctx, clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.svc.AvailableBalance(ctx, clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidatesDTO{
		ClienteID:       clientID,
		Trabajos:        toCandidateDTOs(set.Work),
		Materiales:      toCandidateDTOs(set.Material),
		Total:           money(set.Total()),
		SaldoDisponible: money(balance),
	})
}

// handleProposal previews a decision without writing anything. The manual
// selection comes as ?seleccion=trabajo:3,material:7.
func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clienteId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	policy, err := parsePolicy(r.URL.Query().Get("politica"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	keys, err := parseSelectionQuery(r.URL.Query().Get("seleccion"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.svc.ProposeAllocation(r.Context(), clientID, policy, keys)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDecisionDTO(d))
}

// handleAllocate settles items against an existing payment's client balance.
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := s.decode(w, r, &req); err != nil {
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
	payment, err := s.svc.Store().GetPayment(ctx, req.PagoID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.svc.ProposeAllocation(ctx, payment.ClientID, policy, keys)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.CommitAllocation(ctx, payment.ID, d)
	if err != nil {
		s.writeCommitFailure(w, r, res, err)
		return
	}

	s.logCommit(r, "Allocation committed", payment, policy.String(), res)
	writeJSON(w, http.StatusOK, struct {
		Asignacion decisionDTO `json:"asignacion"`
		Resultado  resultDTO   `json:"resultado"`
	}{toDecisionDTO(d), toResultDTO(res)})
}

func parseSelectionQuery(q string) ([]allocation.Key, error) {
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}
	var sel []selectionDTO
	for _, part := range strings.Split(q, ",") {
		tipo, rawID, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, errInvalidSelection(part)
		}
		id, err := parsePositiveID(rawID)
		if err != nil {
			return nil, errInvalidSelection(part)
		}
		sel = append(sel, selectionDTO{ID: id, Tipo: tipo})
	}
	return parseSelection(sel)
}
