package models

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Goal string

const (
	GoalWeightLoss Goal = "weight_loss"
	GoalWeightGain Goal = "weight_gain"
	GoalMuscleGain Goal = "muscle_gain"
	GoalMuscleLoss Goal = "muscle_loss"
)

func (g Goal) Valid() bool {
	switch g {
	case GoalWeightLoss, GoalWeightGain, GoalMuscleGain, GoalMuscleLoss:
		return true
	}
	return false
}

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence accepts any casing and surrounding whitespace.
func ParseConfidence(s string) (Confidence, bool) {
	c := Confidence(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c, true
	}
	return "", false
}

type DietProfile struct {
	Goal          Goal    `json:"goal"`
	WeightKg      float64 `json:"weightKg"`
	HeightCm      float64 `json:"heightCm"`
	HeightText    string  `json:"heightText"`
	ProteinTarget int     `json:"proteinTarget"`
}

// Nutrients is always stored as non-negative whole numbers. Decoding
// rounds fractional input and floors negative or missing values to 0.
type Nutrients struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

func (n *Nutrients) UnmarshalJSON(data []byte) error {
	var raw struct {
		Calories FlexNumber `json:"calories"`
		Protein  FlexNumber `json:"protein"`
		Carbs    FlexNumber `json:"carbs"`
		Fat      FlexNumber `json:"fat"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Nutrients{
		Calories: RoundNutrient(float64(raw.Calories)),
		Protein:  RoundNutrient(float64(raw.Protein)),
		Carbs:    RoundNutrient(float64(raw.Carbs)),
		Fat:      RoundNutrient(float64(raw.Fat)),
	}
	return nil
}

func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
	}
}

// MaxRounded is the largest value RoundNutrient returns.
const MaxRounded = math.MaxInt32

// RoundNutrient rounds to the nearest integer, maps negative or
// non-finite values to 0 and caps the result at MaxRounded.
func RoundNutrient(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v >= MaxRounded {
		return MaxRounded
	}
	return int(math.Round(v))
}

// FlexNumber decodes a JSON number, a numeric string ("12", "12.5g") or
// null. Anything unparseable decodes to 0.
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = FlexNumber(leadingNumber(str))
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexNumber(v)
	return nil
}

func leadingNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	// exponent: e or E, optional sign, at least one digit
	if end > 0 && end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		i := end + 1
		if i < len(s) && (s[i] == '-' || s[i] == '+') {
			i++
		}
		digits := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i > digits {
			end = i
		}
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

type MealEntry struct {
	ID          string     `json:"id"`
	MealType    MealType   `json:"mealType"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	Notes       string     `json:"notes,omitempty"`
	Confidence  Confidence `json:"confidence,omitempty"`
	Nutrients   Nutrients  `json:"nutrients"`
}

type DailyDietLog struct {
	UserKey         string      `json:"userKey"`
	DateKey         string      `json:"dateKey"`
	Meals           []MealEntry `json:"meals"`
	ProteinGoal     int         `json:"proteinGoal"`
	HydrationLiters float64     `json:"hydrationLiters"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Revision        int         `json:"revision"`
}

type ProteinEntry struct {
	DateKey         string  `json:"dateKey"`
	ProteinGoal     float64 `json:"proteinGoal"`
	ProteinConsumed float64 `json:"proteinConsumed"`
}

// Weekdays is the canonical schedule key set, in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Schedule maps weekday name to workout block name. It marshals in
// Monday..Sunday order rather than alphabetically.
type Schedule map[string]string

func (s Schedule) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	write := func(k, v string) error {
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
		return nil
	}
	seen := make(map[string]bool, len(Weekdays))
	for _, d := range Weekdays {
		if v, ok := s[d]; ok {
			seen[d] = true
			if err := write(d, v); err != nil {
				return nil, err
			}
		}
	}
	var extra []string
	for k := range s {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		if err := write(k, s[k]); err != nil {
			return nil, err
		}
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

type WorkoutExercise struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Reps     string   `json:"reps"`
	Sets     string   `json:"sets"`
	Category string   `json:"category,omitempty"`
	Note     *string  `json:"note"`
	Tips     []string `json:"tips,omitempty"`
	Image    []string `json:"image,omitempty"`
	Video    []string `json:"video,omitempty"`
	Impact   []string `json:"impact,omitempty"`
}

type WorkoutPlan struct {
	PlanName string                       `json:"planName"`
	Schedule Schedule                     `json:"schedule"`
	Workouts map[string][]WorkoutExercise `json:"workouts"`
}

type UserProfile struct {
	Name     string `json:"name"`
	JoinDate string `json:"joinDate"`
}

// WorkoutState is the browser-cached workout view state.
type WorkoutState struct {
	UserProfile            *UserProfile `json:"userProfile"`
	WorkoutPlan            *WorkoutPlan `json:"workoutPlan"`
	WorkoutPlanFingerprint *string      `json:"workoutPlanFingerprint"`
	CompletedExercises     []string     `json:"completedExercises"`
	LastResetDate          *string      `json:"lastResetDate"`
}
