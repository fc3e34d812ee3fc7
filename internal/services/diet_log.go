package services

import (
	"encoding/json"
	"fmt"
	"time"

	"gymlog/internal/models"
	"gymlog/internal/store"
)

const DateKeyLayout = "2006-01-02"

// EntryInput is a posted daily log before coercion.
type EntryInput struct {
	DateKey         string          `json:"dateKey"`
	UserKey         string          `json:"userKey"`
	Meals           json.RawMessage `json:"meals"`
	ProteinGoal     json.RawMessage `json:"proteinGoal"`
	HydrationLiters json.RawMessage `json:"hydrationLiters"`
	Revision        *int            `json:"revision,omitempty"`
}

// ValidateDateKey requires a calendar date in YYYY-MM-DD form.
func ValidateDateKey(dateKey string) error {
	if dateKey == "" {
		return &ValidationError{Field: "dateKey", Message: "is required"}
	}
	if _, err := time.Parse(DateKeyLayout, dateKey); err != nil {
		return &ValidationError{Field: "dateKey", Message: "must be YYYY-MM-DD"}
	}
	return nil
}

// SanitizeEntry coerces a posted log. A meals value that is not a list is
// treated as empty; non-numeric goals fall back to the defaults. Meals
// without an id get one from newID and meals without a timestamp get now.
func SanitizeEntry(in EntryInput, now time.Time, newID func() string) (models.DailyDietLog, error) {
	if in.UserKey == "" {
		return models.DailyDietLog{}, &ValidationError{Field: "userKey", Message: "is required"}
	}
	if err := ValidateDateKey(in.DateKey); err != nil {
		return models.DailyDietLog{}, err
	}

	var rawMeals []json.RawMessage
	if err := json.Unmarshal(in.Meals, &rawMeals); err != nil {
		rawMeals = nil
	}
	meals := make([]models.MealEntry, 0, len(rawMeals))
	for i, raw := range rawMeals {
		var m models.MealEntry
		if err := json.Unmarshal(raw, &m); err != nil {
			return models.DailyDietLog{}, &ValidationError{Field: fmt.Sprintf("meals[%d]", i), Message: "is not a valid meal"}
		}
		if !m.MealType.Valid() {
			return models.DailyDietLog{}, &ValidationError{Field: fmt.Sprintf("meals[%d].mealType", i), Message: "must be one of breakfast, lunch, dinner, snack"}
		}
		if m.ID == "" {
			m.ID = newID()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.Confidence != "" {
			m.Confidence, _ = models.ParseConfidence(string(m.Confidence))
		}
		meals = append(meals, m)
	}

	goal := store.DefaultProteinGoal
	if v, ok := jsonNumber(in.ProteinGoal); ok && v > 0 && v < models.MaxRounded {
		if g := models.RoundNutrient(v); g > 0 {
			goal = g
		}
	}
	hydration := store.DefaultHydrationLiters
	if v, ok := jsonNumber(in.HydrationLiters); ok && v >= 0 {
		hydration = v
	}

	return models.DailyDietLog{
		UserKey:         in.UserKey,
		DateKey:         in.DateKey,
		Meals:           meals,
		ProteinGoal:     goal,
		HydrationLiters: hydration,
	}, nil
}

// jsonNumber reports a value only when raw is a JSON number.
func jsonNumber(raw json.RawMessage) (float64, bool) {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// AddMeal puts the meal first, since logs are kept newest first.
func AddMeal(log models.DailyDietLog, meal models.MealEntry) models.DailyDietLog {
	meals := make([]models.MealEntry, 0, len(log.Meals)+1)
	meals = append(meals, meal)
	log.Meals = append(meals, log.Meals...)
	return log
}

// ReplaceMeal swaps the meal with the same id in place, keeping the
// original createdAt. It reports false when no meal has that id.
func ReplaceMeal(log models.DailyDietLog, meal models.MealEntry) (models.DailyDietLog, bool) {
	for i, m := range log.Meals {
		if m.ID != meal.ID {
			continue
		}
		meals := make([]models.MealEntry, len(log.Meals))
		copy(meals, log.Meals)
		meal.CreatedAt = m.CreatedAt
		meals[i] = meal
		log.Meals = meals
		return log, true
	}
	return log, false
}

// UpsertMeal replaces by id when present, otherwise adds.
func UpsertMeal(log models.DailyDietLog, meal models.MealEntry) models.DailyDietLog {
	if updated, ok := ReplaceMeal(log, meal); ok {
		return updated
	}
	return AddMeal(log, meal)
}

func DeleteMeal(log models.DailyDietLog, id string) (models.DailyDietLog, bool) {
	meals := make([]models.MealEntry, 0, len(log.Meals))
	found := false
	for _, m := range log.Meals {
		if m.ID == id {
			found = true
			continue
		}
		meals = append(meals, m)
	}
	log.Meals = meals
	return log, found
}

func Totals(meals []models.MealEntry) models.Nutrients {
	var total models.Nutrients
	for _, m := range meals {
		total = total.Add(m.Nutrients)
	}
	return total
}

type DaySummary struct {
	DateKey                string           `json:"dateKey"`
	MealCount              int              `json:"mealCount"`
	Totals                 models.Nutrients `json:"totals"`
	ProteinGoal            int              `json:"proteinGoal"`
	ProteinRemaining       int              `json:"proteinRemaining"`
	HydrationLiters        float64          `json:"hydrationLiters"`
	Targets                *Targets         `json:"targets"`
	Remaining              *Targets         `json:"remaining"`
	SuggestedProteinTarget *int             `json:"suggestedProteinTarget"`
}

// Summarize totals a day and, when a profile exists, compares it with the
// profile's targets. Remaining values go negative once a target is passed.
func Summarize(log models.DailyDietLog, profile *models.DietProfile) DaySummary {
	totals := Totals(log.Meals)
	s := DaySummary{
		DateKey:          log.DateKey,
		MealCount:        len(log.Meals),
		Totals:           totals,
		ProteinGoal:      log.ProteinGoal,
		ProteinRemaining: log.ProteinGoal - totals.Protein,
		HydrationLiters:  log.HydrationLiters,
	}
	if profile == nil {
		return s
	}
	t := MacroTargets(*profile)
	s.Targets = &t
	s.Remaining = &Targets{
		Calories: t.Calories - totals.Calories,
		Protein:  t.Protein - totals.Protein,
		Carbs:    t.Carbs - totals.Carbs,
		Fat:      t.Fat - totals.Fat,
	}
	suggested := ProteinTargetFor(profile.WeightKg, profile.Goal)
	s.SuggestedProteinTarget = &suggested
	return s
}
