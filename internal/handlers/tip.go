package handlers

import (
	"net/http"

	"gymlog/internal/services"
)

type TipHandler struct {
	tipper *services.ExerciseTipper
}

func NewTipHandler(tipper *services.ExerciseTipper) *TipHandler {
	return &TipHandler{tipper: tipper}
}

// ExerciseTip answers {tip: null} whenever no tip could be produced; the
// client then shows its static text.
func (h *TipHandler) ExerciseTip(w http.ResponseWriter, r *http.Request) {
	tip, ok := h.tipper.Tip(r.Context(), r.URL.Query().Get("name"))
	if !ok {
		writeJSON(w, http.StatusOK, tipResponse{})
		return
	}
	writeJSON(w, http.StatusOK, tipResponse{Tip: &tip})
}
