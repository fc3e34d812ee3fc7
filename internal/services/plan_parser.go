package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gymlog/internal/ai"
	"gymlog/internal/models"
)

const (
	DefaultPlanName = "My Workout Plan"
	RestDay         = "Rest Day"
	DefaultReps     = "10–15"
	DefaultSets     = "2–3"
	defaultExercise = "Exercise"
)

// ErrNotPlan is returned when the model says the image is not a weekly
// workout schedule.
var ErrNotPlan = errors.New("image is not a workout plan")

const planPrompt = `
Identify if this image is a WORKOUT SCHEDULE or not.

If YES → return EXACT JSON format:

{
  "planName": "string",
  "schedule": {
    "Monday": "Lower Body",
    "Tuesday": "Upper Body",
    "Wednesday": "Cardio & Abs",
    "Thursday": "Lower Body",
    "Friday": "Upper Body",
    "Saturday": "Cardio & Abs",
    "Sunday": "Rest Day"
  },
  "workouts": {
    "Lower Body": [
      {"name":"...", "reps":"...", "sets":"...", "note":"..."}
    ]
  }
}

If you cannot identify a weekly plan → return ONLY:
{"error":"NOT_PLAN"}
`

type PlanParser struct {
	ai     Completer
	model  string
	logger *zap.Logger
}

func NewPlanParser(c Completer, model string, logger *zap.Logger) *PlanParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanParser{ai: c, model: model, logger: logger}
}

// Parse sends the image (a data URL or https URL) to the vision model and
// returns a normalized plan.
func (p *PlanParser) Parse(ctx context.Context, image string) (models.WorkoutPlan, error) {
	content, err := p.ai.Complete(ctx, ai.CompletionRequest{
		Model:       p.model,
		Messages:    []ai.Message{ai.UserTextWithImage(planPrompt, image)},
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return models.WorkoutPlan{}, fmt.Errorf("vision call: %w", err)
	}
	raw, err := ParsePlanResponse(content)
	if err != nil {
		return models.WorkoutPlan{}, err
	}
	plan, err := NormalizePlan(raw)
	if err != nil {
		p.logger.Warn("plan reply has unexpected shape", zap.Error(err))
		return models.WorkoutPlan{}, err
	}
	return plan, nil
}

// ParsePlanResponse decodes the model reply into a generic object and
// checks for the NOT_PLAN sentinel.
func ParsePlanResponse(content string) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(ai.CleanJSON(content)), &raw); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode plan: reply is null")
	}
	if e, ok := raw["error"].(string); ok && strings.EqualFold(strings.TrimSpace(e), "NOT_PLAN") {
		return nil, ErrNotPlan
	}
	return raw, nil
}

// NormalizePlan completes and repairs a decoded plan so that all seven
// weekdays are scheduled, every scheduled block has a workouts entry and
// every exercise is a full object with an id unique within its block.
func NormalizePlan(raw map[string]interface{}) (models.WorkoutPlan, error) {
	plan := models.WorkoutPlan{
		PlanName: DefaultPlanName,
		Schedule: models.Schedule{},
		Workouts: map[string][]models.WorkoutExercise{},
	}
	if name, ok := raw["planName"].(string); ok && strings.TrimSpace(name) != "" {
		plan.PlanName = strings.TrimSpace(name)
	}

	schedule, _ := raw["schedule"].(map[string]interface{})
	for _, day := range models.Weekdays {
		block, _ := schedule[day].(string)
		block = strings.TrimSpace(block)
		if block == "" {
			block = RestDay
		}
		plan.Schedule[day] = block
	}

	var workouts map[string]interface{}
	switch w := raw["workouts"].(type) {
	case nil:
	case map[string]interface{}:
		workouts = w
	default:
		return models.WorkoutPlan{}, fmt.Errorf("workouts: expected object, got %T", w)
	}

	for block, items := range workouts {
		list, ok := items.([]interface{})
		if !ok {
			return models.WorkoutPlan{}, fmt.Errorf("workouts[%q]: expected list, got %T", block, items)
		}
		exercises, err := normalizeBlock(block, list)
		if err != nil {
			return models.WorkoutPlan{}, err
		}
		plan.Workouts[block] = exercises
	}
	for _, block := range plan.Schedule {
		if _, ok := plan.Workouts[block]; !ok {
			plan.Workouts[block] = []models.WorkoutExercise{}
		}
	}
	return plan, nil
}

func normalizeBlock(block string, items []interface{}) ([]models.WorkoutExercise, error) {
	slug := Slugify(block)
	out := make([]models.WorkoutExercise, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		synthID := fmt.Sprintf("%s-%d", slug, i+1)
		ex := models.WorkoutExercise{ID: synthID, Name: defaultExercise, Reps: DefaultReps, Sets: DefaultSets}

		switch v := item.(type) {
		case string:
			if name := strings.TrimSpace(v); name != "" {
				ex.Name = name
			}
		case map[string]interface{}:
			if id := displayString(v["id"]); id != "" {
				ex.ID = id
			}
			if name := displayString(v["name"]); name != "" {
				ex.Name = name
			}
			if reps := displayString(v["reps"]); reps != "" {
				ex.Reps = reps
			}
			if sets := displayString(v["sets"]); sets != "" {
				ex.Sets = sets
			}
			if note, ok := v["note"].(string); ok && strings.TrimSpace(note) != "" {
				n := strings.TrimSpace(note)
				ex.Note = &n
			}
			ex.Category, _ = v["category"].(string)
			ex.Tips = stringList(v["tips"])
			ex.Image = stringList(v["image"])
			ex.Video = stringList(v["video"])
			ex.Impact = stringList(v["impact"])
		default:
			return nil, fmt.Errorf("workouts[%q][%d]: expected string or object, got %T", block, i, item)
		}

		if seen[ex.ID] {
			ex.ID = uniqueID(synthID, seen)
		}
		seen[ex.ID] = true
		out = append(out, ex)
	}
	return out, nil
}

func uniqueID(base string, seen map[string]bool) string {
	if !seen[base] {
		return base
	}
	for n := 2; ; n++ {
		id := base + "-" + strconv.Itoa(n)
		if !seen[id] {
			return id
		}
	}
}

// displayString renders strings and numbers; anything else is "".
func displayString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return []string{t}
		}
	case []interface{}:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of other characters into a
// single hyphen. An empty result becomes "block".
func Slugify(s string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "block"
	}
	return slug
}
