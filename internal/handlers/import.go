package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gymlog/internal/middleware"
	"gymlog/internal/models"
	"gymlog/internal/services"
	"gymlog/internal/store"
)

type ImportHandler struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewImportHandler(s *store.Store, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{store: s, logger: logger, now: time.Now}
}

// ImportHistory godoc
// @Summary Import locally kept history
// @Description Receives a profile and/or a list of daily logs kept on the device and upserts them for the userKey in one transaction
// @Tags diet
// @Accept json
// @Produce json
// @Param data body importRequest true "History to import"
// @Success 201 {object} importResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /diet-entry/import [post]
func (h *ImportHandler) ImportHistory(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.UserKey == "" {
		writeError(w, http.StatusBadRequest, "userKey is required")
		return
	}
	if len(req.Entries) == 0 && req.Profile == nil {
		writeError(w, http.StatusBadRequest, "no entries or profile provided")
		return
	}
	if !middleware.UserKeyAllowed(r, req.UserKey) {
		forbidden(w)
		return
	}

	var profile *models.DietProfile
	if req.Profile != nil {
		p, err := services.SanitizeProfile(*req.Profile)
		if err != nil {
			writeFailure(w, r, h.logger, "sanitize profile", err)
			return
		}
		profile = &p
	}

	now := h.now().UTC()
	seen := make(map[string]bool, len(req.Entries))
	logs := make([]models.DailyDietLog, 0, len(req.Entries))
	for i, in := range req.Entries {
		in.UserKey = req.UserKey
		log, err := services.SanitizeEntry(in, now, uuid.NewString)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("entries[%d]: %v", i, err))
			return
		}
		if seen[log.DateKey] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("entries[%d]: duplicate dateKey %s", i, log.DateKey))
			return
		}
		seen[log.DateKey] = true
		logs = append(logs, log)
	}

	if err := h.store.Import(r.Context(), req.UserKey, profile, logs); err != nil {
		writeFailure(w, r, h.logger, "import history", err)
		return
	}
	h.logger.Info("history imported",
		zap.Int("entries", len(logs)),
		zap.Bool("profile", profile != nil),
	)
	writeJSON(w, http.StatusCreated, importResponse{Imported: len(logs)})
}
