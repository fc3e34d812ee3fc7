package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gymlog/internal/middleware"
)

const userKeyTokenTTL = 365 * 24 * time.Hour

type UserKeyHandler struct {
	guard  *middleware.UserKeyGuard
	logger *zap.Logger
}

func NewUserKeyHandler(guard *middleware.UserKeyGuard, logger *zap.Logger) *UserKeyHandler {
	return &UserKeyHandler{guard: guard, logger: logger}
}

// MintUserKey godoc
// @Summary Create an anonymous user key
// @Description Returns a fresh userKey, plus a signed token for it when token signing is configured
// @Tags auth
// @Produce json
// @Success 200 {object} userKeyResponse
// @Failure 500 {object} errorResponse
// @Router /user-key [post]
func (h *UserKeyHandler) MintUserKey(w http.ResponseWriter, r *http.Request) {
	resp := userKeyResponse{UserKey: uuid.NewString()}
	if h.guard.Enabled() {
		token, err := h.guard.Issue(resp.UserKey, userKeyTokenTTL)
		if err != nil {
			writeFailure(w, r, h.logger, "sign user key", err)
			return
		}
		resp.Token = token
	}
	writeJSON(w, http.StatusOK, resp)
}
