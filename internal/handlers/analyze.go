package handlers

import (
	"net/http"
	"strings"

	"gymlog/internal/services"
)

type AnalyzeHandler struct {
	analyzer *services.MealAnalyzer
}

func NewAnalyzeHandler(analyzer *services.MealAnalyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

// AnalyzeMeal godoc
// @Summary Estimate a meal's nutrients
// @Description Runs the description through the nutrition model. Vague or non-food input returns ok=false with feedback.
// @Tags diet
// @Accept json
// @Produce json
// @Param data body services.MealAnalysisRequest true "Meal description"
// @Success 200 {object} services.MealAnalysis
// @Failure 400 {object} errorResponse
// @Router /diet-entry/analyze [post]
func (h *AnalyzeHandler) AnalyzeMeal(w http.ResponseWriter, r *http.Request) {
	var req services.MealAnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.MealType != "" && !req.MealType.Valid() {
		writeError(w, http.StatusBadRequest, "mealType must be one of breakfast, lunch, dinner, snack")
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.Analyze(r.Context(), req))
}
