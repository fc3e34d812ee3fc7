package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"gymlog/internal/services"
)

const (
	msgNoImage      = "No image provided."
	msgNotPlan      = "This doesn't look like a weekly workout schedule. Try uploading a clear screenshot."
	msgParseFailure = "Parsing failed. Upload a clear screenshot."
)

type PlanHandler struct {
	parser *services.PlanParser
	logger *zap.Logger
}

func NewPlanHandler(parser *services.PlanParser, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{parser: parser, logger: logger}
}

// ParseImage godoc
// @Summary Parse a workout plan screenshot
// @Description Reads a weekly schedule from an image data URL and returns a normalized plan. Images that are not schedules return ok=false.
// @Tags workout
// @Accept json
// @Produce json
// @Param data body parseImageRequest true "Image as data URL"
// @Success 200 {object} parseImageResponse
// @Failure 400 {object} parseImageResponse
// @Failure 500 {object} parseImageResponse
// @Router /parse-image [post]
func (h *PlanHandler) ParseImage(w http.ResponseWriter, r *http.Request) {
	var req parseImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, parseImageResponse{OK: false, Message: "invalid body"})
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeJSON(w, http.StatusBadRequest, parseImageResponse{OK: false, Message: msgNoImage})
		return
	}

	plan, err := h.parser.Parse(r.Context(), req.Image)
	if errors.Is(err, services.ErrNotPlan) {
		writeJSON(w, http.StatusOK, parseImageResponse{OK: false, Message: msgNotPlan})
		return
	}
	if err != nil {
		h.logger.Error("parse image failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, parseImageResponse{OK: false, Message: msgParseFailure})
		return
	}
	writeJSON(w, http.StatusOK, parseImageResponse{OK: true, Data: &plan})
}
