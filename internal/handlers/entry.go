package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gymlog/internal/middleware"
	"gymlog/internal/services"
	"gymlog/internal/store"
)

type EntryHandler struct {
	entries  *store.EntryStore
	profiles *store.ProfileStore
	meals    *services.MealLogger
	logger   *zap.Logger
	now      func() time.Time
}

func NewEntryHandler(entries *store.EntryStore, profiles *store.ProfileStore, meals *services.MealLogger, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, profiles: profiles, meals: meals, logger: logger, now: time.Now}
}

// dayParams reads and checks the userKey/dateKey query pair shared by the
// read endpoints. It writes the error response itself.
func dayParams(w http.ResponseWriter, r *http.Request) (userKey, dateKey string, ok bool) {
	q := r.URL.Query()
	userKey, dateKey = q.Get("userKey"), q.Get("dateKey")
	if userKey == "" || dateKey == "" {
		writeError(w, http.StatusBadRequest, "dateKey and userKey are required")
		return "", "", false
	}
	if err := services.ValidateDateKey(dateKey); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	if !middleware.UserKeyAllowed(r, userKey) {
		forbidden(w)
		return "", "", false
	}
	return userKey, dateKey, true
}

// GetEntry godoc
// @Summary Get a day's diet log
// @Description Returns the stored log, or an empty default log when the day has no writes yet
// @Tags diet
// @Produce json
// @Param userKey query string true "Anonymous user key"
// @Param dateKey query string true "Local date (YYYY-MM-DD)"
// @Success 200 {object} models.DailyDietLog
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /diet-entry [get]
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userKey, dateKey, ok := dayParams(w, r)
	if !ok {
		return
	}
	log, err := h.entries.Get(r.Context(), userKey, dateKey)
	if err != nil {
		writeFailure(w, r, h.logger, "get diet entry", err)
		return
	}
	if log.UpdatedAt.IsZero() {
		log.UpdatedAt = h.now().UTC()
	}
	writeJSON(w, http.StatusOK, log)
}

// SaveEntry godoc
// @Summary Replace a day's diet log
// @Description Whole-record upsert. When revision is sent the write only succeeds if the stored log is still at that revision.
// @Tags diet
// @Accept json
// @Produce json
// @Param data body services.EntryInput true "Daily log"
// @Success 200 {object} saveEntryResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /diet-entry [post]
func (h *EntryHandler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	var in services.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if in.UserKey == "" || in.DateKey == "" {
		writeError(w, http.StatusBadRequest, "dateKey and userKey are required")
		return
	}
	if !middleware.UserKeyAllowed(r, in.UserKey) {
		forbidden(w)
		return
	}
	log, err := services.SanitizeEntry(in, h.now().UTC(), uuid.NewString)
	if err != nil {
		writeFailure(w, r, h.logger, "sanitize diet entry", err)
		return
	}
	rev, err := h.entries.Put(r.Context(), log, in.Revision)
	if errors.Is(err, store.ErrRevisionConflict) {
		writeError(w, http.StatusConflict, "entry was changed by another request; reload and retry")
		return
	}
	if err != nil {
		writeFailure(w, r, h.logger, "save diet entry", err)
		return
	}
	writeJSON(w, http.StatusOK, saveEntryResponse{OK: true, Revision: rev})
}

// LogMeal godoc
// @Summary Analyze and log a meal
// @Description Estimates nutrients for the description and merges the meal into the day's log. Rejected analyses are not stored.
// @Tags diet
// @Accept json
// @Produce json
// @Param data body services.LogMealRequest true "Meal"
// @Success 200 {object} services.LogMealResult
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /diet-entry/meals [post]
func (h *EntryHandler) LogMeal(w http.ResponseWriter, r *http.Request) {
	var req services.LogMealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if !middleware.UserKeyAllowed(r, req.UserKey) {
		forbidden(w)
		return
	}
	res, err := h.meals.Log(r.Context(), req)
	if err != nil {
		writeFailure(w, r, h.logger, "log meal", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteMeal removes one meal from a day's log.
func (h *EntryHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	userKey, dateKey, ok := dayParams(w, r)
	if !ok {
		return
	}
	log, err := h.meals.Delete(r.Context(), userKey, dateKey, chi.URLParam(r, "mealID"))
	if errors.Is(err, services.ErrMealNotFound) {
		writeError(w, http.StatusNotFound, "meal not found")
		return
	}
	if err != nil {
		writeFailure(w, r, h.logger, "delete meal", err)
		return
	}
	writeJSON(w, http.StatusOK, deleteMealResponse{OK: true, Entry: log})
}

// Summary totals a day against the user's profile targets.
func (h *EntryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userKey, dateKey, ok := dayParams(w, r)
	if !ok {
		return
	}
	log, err := h.entries.Get(r.Context(), userKey, dateKey)
	if err != nil {
		writeFailure(w, r, h.logger, "get diet entry", err)
		return
	}
	profile, err := h.profiles.Get(r.Context(), userKey)
	if err != nil {
		writeFailure(w, r, h.logger, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, services.Summarize(log, profile))
}
