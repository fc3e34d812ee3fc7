package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"gymlog/internal/models"
	"gymlog/internal/services"
	"gymlog/internal/store"
)

// ProteinHandler serves the older single-counter protein tracker. Entries
// are keyed by date only.
type ProteinHandler struct {
	protein *store.ProteinStore
	logger  *zap.Logger
}

func NewProteinHandler(protein *store.ProteinStore, logger *zap.Logger) *ProteinHandler {
	return &ProteinHandler{protein: protein, logger: logger}
}

func (h *ProteinHandler) GetProtein(w http.ResponseWriter, r *http.Request) {
	dateKey := r.URL.Query().Get("dateKey")
	if dateKey == "" {
		writeError(w, http.StatusBadRequest, "dateKey is required")
		return
	}
	if err := services.ValidateDateKey(dateKey); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.protein.Get(r.Context(), dateKey)
	if err != nil {
		writeFailure(w, r, h.logger, "get protein", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *ProteinHandler) SaveProtein(w http.ResponseWriter, r *http.Request) {
	var req proteinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.DateKey == "" {
		writeError(w, http.StatusBadRequest, "dateKey is required")
		return
	}
	if err := services.ValidateDateKey(req.DateKey); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.protein.Put(r.Context(), models.ProteinEntry{
		DateKey:         req.DateKey,
		ProteinGoal:     looseNumber(req.ProteinGoal),
		ProteinConsumed: looseNumber(req.ProteinConsumed),
	})
	if err != nil {
		writeFailure(w, r, h.logger, "save protein", err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
