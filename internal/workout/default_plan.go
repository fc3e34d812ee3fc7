package workout

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gymlog/internal/models"
	"gymlog/internal/services"
)

//go:embed default_plan.json
var defaultPlanJSON []byte

var (
	defaultOnce sync.Once
	defaultPlan models.WorkoutPlan
	defaultErr  error
)

// DefaultPlan returns a copy of the built-in plan, normalized the same way
// as a parsed screenshot.
func DefaultPlan() models.WorkoutPlan {
	defaultOnce.Do(func() {
		var raw map[string]interface{}
		if err := json.Unmarshal(defaultPlanJSON, &raw); err != nil {
			defaultErr = fmt.Errorf("decode default plan: %w", err)
			return
		}
		defaultPlan, defaultErr = services.NormalizePlan(raw)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return clonePlan(defaultPlan)
}

func clonePlan(p models.WorkoutPlan) models.WorkoutPlan {
	out := models.WorkoutPlan{
		PlanName: p.PlanName,
		Schedule: make(models.Schedule, len(p.Schedule)),
		Workouts: make(map[string][]models.WorkoutExercise, len(p.Workouts)),
	}
	for k, v := range p.Schedule {
		out.Schedule[k] = v
	}
	for k, v := range p.Workouts {
		exercises := make([]models.WorkoutExercise, len(v))
		copy(exercises, v)
		out.Workouts[k] = exercises
	}
	return out
}
