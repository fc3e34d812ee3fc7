package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"gymlog/internal/middleware"
	"gymlog/internal/services"
	"gymlog/internal/store"
)

type ProfileHandler struct {
	profiles *store.ProfileStore
	logger   *zap.Logger
}

func NewProfileHandler(profiles *store.ProfileStore, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// GetProfile godoc
// @Summary Get diet profile
// @Description Returns the stored profile for a userKey, or null when none was saved
// @Tags diet
// @Produce json
// @Param userKey query string true "Anonymous user key"
// @Success 200 {object} profileResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /diet-entry/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userKey := r.URL.Query().Get("userKey")
	if userKey == "" {
		writeError(w, http.StatusBadRequest, "userKey is required")
		return
	}
	if !middleware.UserKeyAllowed(r, userKey) {
		forbidden(w)
		return
	}
	p, err := h.profiles.Get(r.Context(), userKey)
	if err != nil {
		writeFailure(w, r, h.logger, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p})
}

// SaveProfile godoc
// @Summary Save diet profile
// @Description Sanitizes and upserts the profile, returning the stored form
// @Tags diet
// @Accept json
// @Produce json
// @Param data body profileRequest true "userKey and profile"
// @Success 200 {object} profileResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /diet-entry/profile [post]
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.UserKey == "" || req.Profile == nil {
		writeError(w, http.StatusBadRequest, "userKey and profile are required")
		return
	}
	if !middleware.UserKeyAllowed(r, req.UserKey) {
		forbidden(w)
		return
	}
	p, err := services.SanitizeProfile(*req.Profile)
	if err != nil {
		writeFailure(w, r, h.logger, "sanitize profile", err)
		return
	}
	if err := h.profiles.Upsert(r.Context(), req.UserKey, p); err != nil {
		writeFailure(w, r, h.logger, "save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: &p})
}
