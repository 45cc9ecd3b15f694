package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/service"
)

// ShareHandler handles share link creation, redemption and revocation.
type ShareHandler struct {
	service *service.ShareService
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(svc *service.ShareService) *ShareHandler {
	return &ShareHandler{service: svc}
}

// HandleCreateShare handles POST /api/v1/vault/{entry_id}/share requests.
func (h *ShareHandler) HandleCreateShare(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := idParam(r, "entry_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	var req model.ShareRequest
	if !decodeJSON(w, r, 1<<10, &req) {
		return
	}

	resp, err := h.service.CreateShare(r.Context(), p, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidValidity):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrEntryNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrEntryUnreadable):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeSessionOrServerError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleListShares handles GET /api/v1/vault/{entry_id}/shares requests.
func (h *ShareHandler) HandleListShares(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := idParam(r, "entry_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	shares, err := h.service.ListShares(r.Context(), p, id)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeSessionOrServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"shares": shares})
}

// HandleRevokeShare handles DELETE /api/v1/shares/{uuid} requests.
func (h *ShareHandler) HandleRevokeShare(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	err := h.service.RevokeShare(r.Context(), p, chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, service.ErrShareNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeSessionOrServerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRedeemShare handles GET /share/{uuid}/{token}. It is public; the token is the credential.
func (h *ShareHandler) HandleRedeemShare(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")

	resp, err := h.service.RedeemShare(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, service.ErrShareUnavailable) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
