package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gymlog/internal/services"
)

// maxBodyBytes caps JSON bodies. Screenshots arrive as data URLs, so the
// limit is sized for an image rather than a form.
const maxBodyBytes = 12 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeFailure maps validation errors to 400 and logs anything else as a
// 500 without leaking the cause.
func writeFailure(w http.ResponseWriter, r *http.Request, logger *zap.Logger, op string, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	logger.Error(op+" failed",
		zap.Error(err),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
	writeError(w, http.StatusInternalServerError, "Server error")
}

func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "userKey does not match token")
}
