package http

import (
	"net/http"

	"saldo/internal/core"
	"saldo/internal/store"
)

func (s *Server) handleListWorkItems(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "clienteId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.svc.Store().ListWorkItems(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]workItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toWorkItemDTO(it))
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) handleCreateWorkItem(w http.ResponseWriter, r *http.Request) {
	var req createWorkItemRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate("fecha", req.Fecha)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.svc.Store().CreateWorkItem(r.Context(), core.WorkItem{
		ClientID: req.ClienteID,
		Date:     date,
		Hours:    *req.Horas,
		Paid:     req.Pagado,
		Settled:  req.Cuadrado,
		Notes:    req.Observaciones,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: item.ID})
}

// handleUpdateWorkItem applies a partial update. A body carrying only the
// status flags goes through the flag patch; anything else rewrites the item.
func (s *Server) handleUpdateWorkItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateWorkItemRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	item, err := s.svc.Store().GetWorkItem(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	patch := store.ItemPatch{Paid: req.Pagado, Settled: req.Cuadrado}
	item.Paid, item.Settled = patch.Apply(item.Paid, item.Settled)
	if req.Fecha != nil {
		if item.Date, err = parseDate("fecha", *req.Fecha); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Horas != nil {
		item.Hours = *req.Horas
	}
	if req.Observaciones != nil {
		item.Notes = *req.Observaciones
	}
	if err := item.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if req.flagsOnly() {
		err = s.svc.Store().UpdateWorkItem(ctx, id, patch)
	} else {
		err = s.svc.Store().EditWorkItem(ctx, item)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkItemDTO(item))
}

func (s *Server) handleDeleteWorkItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Store().DeleteWorkItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "clienteId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.svc.Store().ListMaterialItems(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]materialDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toMaterialDTO(it))
	}
	writeJSON(w, http.StatusOK, list(out))
}

func (s *Server) handleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req createMaterialRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate("fecha", req.Fecha)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.svc.Store().CreateMaterialItem(r.Context(), core.MaterialItem{
		ClientID:    req.ClienteID,
		Date:        date,
		Description: req.Descripcion,
		Cost:        amount(req.Coste),
		Paid:        req.Pagado,
		Settled:     req.Cuadrado,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: item.ID})
}

func (s *Server) handleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateMaterialRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	item, err := s.svc.Store().GetMaterialItem(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	patch := store.ItemPatch{Paid: req.Pagado, Settled: req.Cuadrado}
	item.Paid, item.Settled = patch.Apply(item.Paid, item.Settled)
	if req.Fecha != nil {
		if item.Date, err = parseDate("fecha", *req.Fecha); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Descripcion != nil {
		item.Description = *req.Descripcion
	}
	if req.Coste != nil {
		item.Cost = amount(req.Coste)
	}
	if err := item.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if req.flagsOnly() {
		err = s.svc.Store().UpdateMaterialItem(ctx, id, patch)
	} else {
		err = s.svc.Store().EditMaterialItem(ctx, item)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMaterialDTO(item))
}

func (s *Server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Store().DeleteMaterialItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
