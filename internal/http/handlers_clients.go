package http

import (
	"net/http"
	"sort"

	"saldo/internal/core"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.svc.Store().ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]clientDTO, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientDTO(c))
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Store().GetClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Store().CreateClient(r.Context(), core.Client{
		Name:       req.Nombre,
		HourlyRate: amount(req.PrecioHora),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: c.ID})
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateClientRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Store().GetClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Nombre != nil {
		c.Name = *req.Nombre
	}
	if req.PrecioHora != nil {
		c.HourlyRate = amount(req.PrecioHora)
	}
	if err := s.svc.Store().UpdateClient(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Store().DeleteClient(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.incomeCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

// handleReorderClients takes {id, orden} pairs and stores the ids in orden order.
func (s *Server) handleReorderClients(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sort.SliceStable(req.Ordenes, func(i, j int) bool {
		return req.Ordenes[i].Orden < req.Ordenes[j].Orden
	})
	ids := make([]int64, 0, len(req.Ordenes))
	for _, o := range req.Ordenes {
		ids = append(ids, o.ID)
	}
	if err := s.svc.Store().ReorderClients(r.Context(), ids); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
