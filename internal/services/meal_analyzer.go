package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gymlog/internal/ai"
	"gymlog/internal/models"
)

// Completer is the slice of the AI client the services need.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (string, error)
}

const (
	feedbackUnreachable = "Couldn't reach the analysis service. Please try again."
	feedbackUnreadable  = "Couldn't understand that meal. Try describing it with portions, e.g. \"2 rotis and a bowl of dal\"."
	feedbackNotFood     = "That doesn't look like food."
	feedbackLowConf     = "Not sure about that one. Add portion sizes or ingredients and try again."
)

type MealAnalysisRequest struct {
	Description string          `json:"description"`
	MealType    models.MealType `json:"mealType"`
	Goal        models.Goal     `json:"goal"`
}

// MealAnalysis is either an accepted estimate (OK) or a rejection carrying
// only Feedback.
type MealAnalysis struct {
	OK         bool              `json:"ok"`
	Nutrients  *models.Nutrients `json:"nutrients,omitempty"`
	Confidence models.Confidence `json:"confidence,omitempty"`
	Feedback   string            `json:"feedback,omitempty"`
}

// MealEstimate is the model's answer after parsing, before gating.
type MealEstimate struct {
	IsFood       bool
	Nutrients    models.Nutrients
	HasNutrients bool
	Confidence   string
	Feedback     string
}

type MealAnalyzer struct {
	ai     Completer
	model  string
	logger *zap.Logger
}

func NewMealAnalyzer(c Completer, model string, logger *zap.Logger) *MealAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealAnalyzer{ai: c, model: model, logger: logger}
}

// Analyze never returns an error: every failure becomes a rejection with
// user-facing feedback.
func (a *MealAnalyzer) Analyze(ctx context.Context, req MealAnalysisRequest) MealAnalysis {
	content, err := a.ai.Complete(ctx, ai.CompletionRequest{
		Model: a.model,
		Messages: []ai.Message{
			{Role: "system", Content: "You are a nutrition estimator. Reply with a single JSON object and nothing else."},
			ai.UserText(BuildMealPrompt(req)),
		},
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		a.logger.Warn("meal analysis call failed", zap.Error(err), zap.String("meal_type", string(req.MealType)))
		return MealAnalysis{OK: false, Feedback: feedbackUnreachable}
	}

	est, err := ParseMealEstimate(content)
	if err != nil {
		a.logger.Warn("meal analysis reply unreadable", zap.Error(err))
		return MealAnalysis{OK: false, Feedback: feedbackUnreadable}
	}
	return GateEstimate(est)
}

// BuildMealPrompt renders the constrained estimation prompt.
func BuildMealPrompt(req MealAnalysisRequest) string {
	mealType := string(req.MealType)
	if mealType == "" {
		mealType = "unspecified"
	}
	goal := strings.ReplaceAll(string(req.Goal), "_", " ")
	if goal == "" {
		goal = "general health"
	}
	return fmt.Sprintf(`Estimate the nutrition of this %s for someone whose goal is %s.

Meal description: %q

Return EXACT JSON:
{
  "isFood": true,
  "nutrients": {"calories": 0, "protein": 0, "carbs": 0, "fat": 0},
  "confidence": "low" | "medium" | "high",
  "feedback": "one short sentence"
}

Rules:
- calories in kcal; protein, carbs and fat in grams; whole numbers only.
- If the description is not food or drink, set "isFood": false and explain in "feedback".
- Use "low" confidence when the portion or dish is too vague to estimate.
- "feedback" is one practical tip tied to the goal, under 20 words.`, mealType, goal, req.Description)
}

// ParseMealEstimate reads an untrusted model reply. Nutrients may be nested
// under "nutrients" or sit at the top level, as numbers or numeric strings.
func ParseMealEstimate(content string) (MealEstimate, error) {
	cleaned := []byte(ai.CleanJSON(content))
	var raw struct {
		IsFood     *bool             `json:"isFood"`
		Nutrients  *models.Nutrients `json:"nutrients"`
		Calories   json.RawMessage   `json:"calories"`
		Protein    json.RawMessage   `json:"protein"`
		Carbs      json.RawMessage   `json:"carbs"`
		Fat        json.RawMessage   `json:"fat"`
		Confidence interface{}       `json:"confidence"`
		Feedback   interface{}       `json:"feedback"`
	}
	if err := json.Unmarshal(cleaned, &raw); err != nil {
		return MealEstimate{}, fmt.Errorf("decode meal estimate: %w", err)
	}

	est := MealEstimate{IsFood: true}
	if raw.IsFood != nil {
		est.IsFood = *raw.IsFood
	}
	if s, ok := raw.Confidence.(string); ok {
		est.Confidence = s
	}
	if s, ok := raw.Feedback.(string); ok {
		est.Feedback = strings.TrimSpace(s)
	}

	switch {
	case raw.Nutrients != nil:
		est.Nutrients = *raw.Nutrients
		est.HasNutrients = true
	case raw.Calories != nil || raw.Protein != nil || raw.Carbs != nil || raw.Fat != nil:
		// Nutrients decodes the four keys it knows and ignores the rest.
		if err := json.Unmarshal(cleaned, &est.Nutrients); err != nil {
			return MealEstimate{}, fmt.Errorf("decode flat nutrients: %w", err)
		}
		est.HasNutrients = true
	}
	return est, nil
}

// GateEstimate applies the acceptance rules: the reply must be food with a
// medium or high confidence.
func GateEstimate(est MealEstimate) MealAnalysis {
	if !est.IsFood {
		return MealAnalysis{OK: false, Feedback: orDefault(est.Feedback, feedbackNotFood)}
	}
	conf, ok := models.ParseConfidence(est.Confidence)
	if !ok || conf == models.ConfidenceLow {
		return MealAnalysis{OK: false, Confidence: conf, Feedback: orDefault(est.Feedback, feedbackLowConf)}
	}
	if !est.HasNutrients {
		return MealAnalysis{OK: false, Feedback: feedbackUnreadable}
	}
	n := est.Nutrients
	return MealAnalysis{OK: true, Nutrients: &n, Confidence: conf, Feedback: est.Feedback}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
