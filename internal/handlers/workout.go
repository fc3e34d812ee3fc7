package handlers

import (
	"net/http"
	"strings"
	"time"

	"gymlog/internal/models"
	"gymlog/internal/services"
	"gymlog/internal/workout"
)

// WorkoutHandler exposes the default plan and the pure state transitions
// the client runs over its cached workout state.
type WorkoutHandler struct {
	now func() time.Time
}

func NewWorkoutHandler() *WorkoutHandler {
	return &WorkoutHandler{now: time.Now}
}

func (h *WorkoutHandler) today(sent string) (string, error) {
	if sent == "" {
		return h.now().Format(services.DateKeyLayout), nil
	}
	if err := services.ValidateDateKey(sent); err != nil {
		return "", &services.ValidationError{Field: "today", Message: "must be YYYY-MM-DD"}
	}
	return sent, nil
}

func (h *WorkoutHandler) DefaultPlan(w http.ResponseWriter, r *http.Request) {
	plan := workout.DefaultPlan()
	writeJSON(w, http.StatusOK, defaultPlanResponse{Plan: plan, Fingerprint: workout.Fingerprint(plan)})
}

// Reconcile godoc
// @Summary Reconcile cached workout state
// @Description Upgrades a cached copy of the default plan and resets completion on a new day
// @Tags workout
// @Accept json
// @Produce json
// @Param data body reconcileRequest true "Cached state"
// @Success 200 {object} models.WorkoutState
// @Failure 400 {object} errorResponse
// @Router /workout/reconcile [post]
func (h *WorkoutHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	today, err := h.today(req.Today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, workout.Reconcile(req.State, workout.DefaultPlan(), today))
}

// ApplyAction runs one client action (toggle, onboard, settings, reset)
// against the posted state and returns the new state.
func (h *WorkoutHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	var req workoutActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	today, err := h.today(req.Today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	canonical := workout.DefaultPlan()
	name := strings.TrimSpace(req.Name)

	var state models.WorkoutState
	switch req.Action {
	case "toggle":
		if req.ExerciseID == "" {
			writeError(w, http.StatusBadRequest, "exerciseId is required")
			return
		}
		state = workout.ToggleComplete(req.State, req.ExerciseID)
	case "onboard":
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		plan := canonical
		if req.Plan != nil {
			plan = *req.Plan
		}
		state = workout.CompleteOnboarding(name, plan, canonical, today, h.now())
	case "settings":
		state = workout.UpdateSettings(req.State, name, req.Plan, canonical, today, h.now())
	case "reset":
		state = workout.NewState(today)
	default:
		writeError(w, http.StatusBadRequest, "action must be one of toggle, onboard, settings, reset")
		return
	}
	writeJSON(w, http.StatusOK, state)
}
