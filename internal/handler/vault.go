package handler

import (
	"errors"
	"net/http"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/service"
)

// VaultHandler handles HTTP requests for vault entry operations.
type VaultHandler struct {
	service *service.VaultService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(svc *service.VaultService) *VaultHandler {
	return &VaultHandler{service: svc}
}

// HandleCreateEntry handles POST /api/v1/vault requests.
func (h *VaultHandler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req model.VaultEntryRequest
	if !decodeJSON(w, r, 1<<20, &req) {
		return
	}

	resp, err := h.service.CreateEntry(r.Context(), p, req)
	if err != nil {
		writeEntryError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleListEntries handles GET /api/v1/vault requests.
func (h *VaultHandler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListEntries(r.Context(), p)
	if err != nil {
		writeEntryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleGetEntry handles GET /api/v1/vault/{entry_id} requests.
func (h *VaultHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := idParam(r, "entry_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	resp, err := h.service.GetEntry(r.Context(), p, id)
	if err != nil {
		writeEntryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdateEntry handles PUT /api/v1/vault/{entry_id} requests.
func (h *VaultHandler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := idParam(r, "entry_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	var req model.VaultEntryRequest
	if !decodeJSON(w, r, 1<<20, &req) {
		return
	}

	resp, err := h.service.UpdateEntry(r.Context(), p, id, req)
	if err != nil {
		writeEntryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDeleteEntry handles DELETE /api/v1/vault/{entry_id} requests.
func (h *VaultHandler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := idParam(r, "entry_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	if err := h.service.DeleteEntry(r.Context(), p, id); err != nil {
		writeEntryError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleStats handles GET /api/v1/vault/stats requests.
func (h *VaultHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), p)
	if err != nil {
		writeSessionOrServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeEntryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTitleRequired), errors.Is(err, service.ErrEntryPassword):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrEntryUnreadable):
		writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
	default:
		writeSessionOrServerError(w, err)
	}
}
