package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gymlog/internal/models"
)

const (
	fallbackWeightKg      = 70
	fallbackHeightCm      = 170
	fallbackProteinTarget = 120
	minCalorieTarget      = 1200
)

// ValidationError names the offending field and maps to a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ProfileInput is the loosely typed profile a client posts. Numbers may
// arrive as strings or be missing entirely.
type ProfileInput struct {
	Goal          string          `json:"goal"`
	WeightKg      json.RawMessage `json:"weightKg"`
	HeightCm      json.RawMessage `json:"heightCm"`
	HeightText    string          `json:"heightText"`
	ProteinTarget json.RawMessage `json:"proteinTarget"`
}

// SanitizeProfile validates the goal and coerces every numeric field to a
// finite positive value. Applying it to its own output is a no-op.
func SanitizeProfile(in ProfileInput) (models.DietProfile, error) {
	goal := models.Goal(strings.TrimSpace(in.Goal))
	if !goal.Valid() {
		return models.DietProfile{}, &ValidationError{Field: "goal", Message: "must be one of weight_loss, weight_gain, muscle_gain, muscle_loss"}
	}

	weight := positiveOr(in.WeightKg, fallbackWeightKg)
	height := positiveOr(in.HeightCm, fallbackHeightCm)
	protein := models.RoundNutrient(positiveOr(in.ProteinTarget, fallbackProteinTarget))
	if protein <= 0 {
		protein = fallbackProteinTarget
	}

	heightText := strings.TrimSpace(in.HeightText)
	if heightText == "" {
		heightText = strconv.FormatFloat(height, 'f', -1, 64) + " cm"
	}

	return models.DietProfile{
		Goal:          goal,
		WeightKg:      weight,
		HeightCm:      height,
		HeightText:    heightText,
		ProteinTarget: protein,
	}, nil
}

// positiveOr accepts a JSON number or a string holding only a number.
// Values outside (0, models.MaxRounded) yield the fallback.
func positiveOr(raw json.RawMessage, fallback float64) float64 {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return fallback
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return fallback
		}
		f = parsed
	default:
		return fallback
	}
	if !inRange(f) {
		return fallback
	}
	return f
}

func inRange(f float64) bool {
	return !math.IsNaN(f) && f > 0 && f < models.MaxRounded
}

var proteinFactor = map[models.Goal]float64{
	models.GoalWeightLoss: 1.6,
	models.GoalWeightGain: 1.8,
	models.GoalMuscleGain: 2.0,
	models.GoalMuscleLoss: 1.8,
}

// ProteinTargetFor suggests a daily protein target in grams from body
// weight and goal.
func ProteinTargetFor(weightKg float64, goal models.Goal) int {
	factor, ok := proteinFactor[goal]
	if !ok {
		factor = 1.6
	}
	if !inRange(weightKg) {
		weightKg = fallbackWeightKg
	}
	return models.RoundNutrient(weightKg * factor)
}

var calorieModifier = map[models.Goal]float64{
	models.GoalWeightLoss: -400,
	models.GoalWeightGain: 400,
	models.GoalMuscleGain: 250,
	models.GoalMuscleLoss: -200,
}

// CalorieTargetFor is a maintenance estimate of 30 kcal/kg adjusted for
// the goal, never below 1200. Out-of-range weights count as 70 kg.
func CalorieTargetFor(p models.DietProfile) int {
	weight := p.WeightKg
	if !inRange(weight) {
		weight = fallbackWeightKg
	}
	kcal := models.RoundNutrient(weight*30 + calorieModifier[p.Goal])
	if kcal < minCalorieTarget {
		return minCalorieTarget
	}
	return kcal
}

type Targets struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// MacroTargets splits the calorie target: 40% carbs, 25% fat, protein from
// the profile.
func MacroTargets(p models.DietProfile) Targets {
	kcal := CalorieTargetFor(p)
	return Targets{
		Calories: kcal,
		Protein:  p.ProteinTarget,
		Carbs:    int(math.Round(float64(kcal) * 0.40 / 4)),
		Fat:      int(math.Round(float64(kcal) * 0.25 / 9)),
	}
}

func (t Targets) String() string {
	return fmt.Sprintf("%d kcal, %dg protein, %dg carbs, %dg fat", t.Calories, t.Protein, t.Carbs, t.Fat)
}
