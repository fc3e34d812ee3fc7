package handlers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gymlog/internal/models"
	"gymlog/internal/services"
)

type profileRequest struct {
	UserKey string                 `json:"userKey"`
	Profile *services.ProfileInput `json:"profile"`
}

type profileResponse struct {
	Profile *models.DietProfile `json:"profile"`
}

type saveEntryResponse struct {
	OK       bool `json:"ok"`
	Revision int  `json:"revision"`
}

type deleteMealResponse struct {
	OK    bool                `json:"ok"`
	Entry models.DailyDietLog `json:"entry"`
}

type importRequest struct {
	UserKey string                 `json:"userKey"`
	Profile *services.ProfileInput `json:"profile"`
	Entries []services.EntryInput  `json:"entries"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

type proteinRequest struct {
	DateKey         string          `json:"dateKey"`
	ProteinGoal     json.RawMessage `json:"proteinGoal"`
	ProteinConsumed json.RawMessage `json:"proteinConsumed"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type parseImageRequest struct {
	Image string `json:"image"`
}

type parseImageResponse struct {
	OK      bool                `json:"ok"`
	Data    *models.WorkoutPlan `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
}

type defaultPlanResponse struct {
	Plan        models.WorkoutPlan `json:"plan"`
	Fingerprint string             `json:"fingerprint"`
}

type reconcileRequest struct {
	State models.WorkoutState `json:"state"`
	Today string              `json:"today"`
}

type workoutActionRequest struct {
	State      models.WorkoutState `json:"state"`
	Action     string              `json:"action"`
	ExerciseID string              `json:"exerciseId"`
	Name       string              `json:"name"`
	Plan       *models.WorkoutPlan `json:"plan"`
	Today      string              `json:"today"`
}

type tipResponse struct {
	Tip *string `json:"tip"`
}

type userKeyResponse struct {
	UserKey string `json:"userKey"`
	Token   string `json:"token,omitempty"`
}

// looseNumber coerces a JSON value the way a browser's Number(x) || 0
// would: numbers pass, numeric strings parse, true is 1, everything else
// is 0.
func looseNumber(raw json.RawMessage) float64 {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 0
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
