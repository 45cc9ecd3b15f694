package handler

import (
	"errors"
	"net/http"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/service"
)

// GeneratorHandler handles HTTP requests for password generation.
type GeneratorHandler struct {
	service *service.GeneratorService
}

// NewGeneratorHandler creates a new GeneratorHandler.
func NewGeneratorHandler(svc *service.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: svc}
}

// HandleGenerate handles POST /api/v1/generate requests. An empty body uses the defaults.
func (h *GeneratorHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, 1<<20, &req) {
		return
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func isValidationError(err error) bool {
	return errors.Is(err, crypto.ErrLengthTooShort) ||
		errors.Is(err, crypto.ErrLengthTooLong) ||
		errors.Is(err, crypto.ErrNoCharacterTypes) ||
		errors.Is(err, crypto.ErrLengthInsufficient) ||
		errors.Is(err, crypto.ErrBatchSize)
}
