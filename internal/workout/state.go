package workout

import (
	"time"

	"gymlog/internal/models"
)

// NewState is the state of a client that has never onboarded.
func NewState(today string) models.WorkoutState {
	return models.WorkoutState{
		CompletedExercises: []string{},
		LastResetDate:      &today,
	}
}

// Reconcile brings a cached state up to date. A cached copy of the default
// plan (it carries a fingerprint, or has the default plan's name) is swapped
// for the current canonical plan, and completion is cleared when that plan
// changed. Completion is also cleared on the first call of a new day.
func Reconcile(cached models.WorkoutState, canonical models.WorkoutPlan, today string) models.WorkoutState {
	state := cached
	state.CompletedExercises = append([]string{}, cached.CompletedExercises...)

	planWasDefault := false
	if cached.WorkoutPlan != nil {
		planWasDefault = cached.WorkoutPlanFingerprint != nil || cached.WorkoutPlan.PlanName == canonical.PlanName
	}
	if planWasDefault {
		fp := Fingerprint(canonical)
		changed := cached.WorkoutPlanFingerprint == nil || *cached.WorkoutPlanFingerprint != fp
		plan := clonePlan(canonical)
		state.WorkoutPlan = &plan
		state.WorkoutPlanFingerprint = &fp
		if changed {
			state.CompletedExercises = []string{}
		}
	}

	if cached.LastResetDate != nil && *cached.LastResetDate == today {
		return state
	}
	state.CompletedExercises = []string{}
	state.LastResetDate = &today
	return state
}

// ToggleComplete marks an exercise done, or undone when it already was.
func ToggleComplete(state models.WorkoutState, exerciseID string) models.WorkoutState {
	out := make([]string, 0, len(state.CompletedExercises)+1)
	found := false
	for _, id := range state.CompletedExercises {
		if id == exerciseID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		out = append(out, exerciseID)
	}
	state.CompletedExercises = out
	return state
}

// CompleteOnboarding starts a fresh state for a named user and chosen plan.
func CompleteOnboarding(name string, plan models.WorkoutPlan, canonical models.WorkoutPlan, today string, now time.Time) models.WorkoutState {
	p := clonePlan(plan)
	return models.WorkoutState{
		UserProfile:            &models.UserProfile{Name: name, JoinDate: now.UTC().Format(time.RFC3339)},
		WorkoutPlan:            &p,
		WorkoutPlanFingerprint: defaultFingerprint(&p, canonical),
		CompletedExercises:     []string{},
		LastResetDate:          &today,
	}
}

// UpdateSettings renames the user and/or swaps the plan. A state with
// neither a profile nor a plan is returned unchanged. A new plan clears
// completion.
func UpdateSettings(state models.WorkoutState, name string, plan *models.WorkoutPlan, canonical models.WorkoutPlan, today string, now time.Time) models.WorkoutState {
	if state.UserProfile == nil && state.WorkoutPlan == nil {
		return state
	}
	if name != "" {
		profile := models.UserProfile{Name: name, JoinDate: now.UTC().Format(time.RFC3339)}
		if state.UserProfile != nil {
			profile.JoinDate = state.UserProfile.JoinDate
		}
		state.UserProfile = &profile
	}
	if plan != nil {
		p := clonePlan(*plan)
		state.WorkoutPlan = &p
		state.WorkoutPlanFingerprint = defaultFingerprint(&p, canonical)
		state.CompletedExercises = []string{}
		state.LastResetDate = &today
	}
	return state
}
