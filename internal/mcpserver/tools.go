package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"gymlog/internal/models"
	"gymlog/internal/services"
	"gymlog/internal/store"
)

// Tools holds what the tool handlers read from.
type Tools struct {
	Store    *store.Store
	Analyzer *services.MealAnalyzer
	Logger   *zap.Logger
}

type AnalyzeMealInput struct {
	Description string `json:"description" jsonschema:"What was eaten, ideally with portions"`
	MealType    string `json:"mealType,omitempty" jsonschema:"breakfast, lunch, dinner or snack"`
	Goal        string `json:"goal,omitempty" jsonschema:"weight_loss, weight_gain, muscle_gain or muscle_loss"`
}

type DailyLogInput struct {
	UserKey string `json:"userKey" jsonschema:"Anonymous user key"`
	DateKey string `json:"dateKey" jsonschema:"Local date as YYYY-MM-DD"`
}

type ProfileInput struct {
	UserKey string `json:"userKey" jsonschema:"Anonymous user key"`
}

type NormalizePlanInput struct {
	Plan map[string]any `json:"plan" jsonschema:"Plan object with planName, schedule and workouts"`
}

func (t *Tools) AnalyzeMeal(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeMealInput) (*mcp.CallToolResult, any, error) {
	desc := strings.TrimSpace(input.Description)
	if desc == "" {
		return toolError("description is required"), nil, nil
	}
	mealType := models.MealType(input.MealType)
	if mealType != "" && !mealType.Valid() {
		return toolError("mealType must be one of breakfast, lunch, dinner, snack"), nil, nil
	}
	res := t.Analyzer.Analyze(ctx, services.MealAnalysisRequest{
		Description: desc,
		MealType:    mealType,
		Goal:        models.Goal(input.Goal),
	})
	return toolJSON(res)
}

func (t *Tools) GetDailyLog(ctx context.Context, _ *mcp.CallToolRequest, input DailyLogInput) (*mcp.CallToolResult, any, error) {
	if input.UserKey == "" {
		return toolError("userKey is required"), nil, nil
	}
	if err := services.ValidateDateKey(input.DateKey); err != nil {
		return toolError("%v", err), nil, nil
	}
	log, err := t.Store.Entries.Get(ctx, input.UserKey, input.DateKey)
	if err != nil {
		t.Logger.Error("mcp get_daily_log failed", zap.Error(err))
		return toolError("Failed to load daily log"), nil, nil
	}
	return toolJSON(log)
}

func (t *Tools) GetProfile(ctx context.Context, _ *mcp.CallToolRequest, input ProfileInput) (*mcp.CallToolResult, any, error) {
	if input.UserKey == "" {
		return toolError("userKey is required"), nil, nil
	}
	p, err := t.Store.Profiles.Get(ctx, input.UserKey)
	if err != nil {
		t.Logger.Error("mcp get_profile failed", zap.Error(err))
		return toolError("Failed to load profile"), nil, nil
	}
	return toolJSON(struct {
		Profile *models.DietProfile `json:"profile"`
	}{p})
}

func (t *Tools) NormalizeWorkoutPlan(_ context.Context, _ *mcp.CallToolRequest, input NormalizePlanInput) (*mcp.CallToolResult, any, error) {
	if input.Plan == nil {
		return toolError("plan is required"), nil, nil
	}
	plan, err := services.NormalizePlan(input.Plan)
	if err != nil {
		return toolError("Plan has an unexpected shape: %v", err), nil, nil
	}
	return toolJSON(plan)
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
