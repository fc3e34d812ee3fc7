// Package mcpserver exposes the diet and plan services as MCP tools so an
// assistant can read a user's day or check a meal without the web client.
package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"gymlog/internal/services"
	"gymlog/internal/store"
)

const serverName = "gymlog"

// New creates an MCP server with every tool registered.
func New(s *store.Store, analyzer *services.MealAnalyzer, version string, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tools{Store: s, Analyzer: analyzer, Logger: logger}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_meal",
		Description: "Estimate calories, protein, carbs and fat for a meal description. Vague or non-food input is rejected with feedback.",
	}, t.AnalyzeMeal)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_daily_log",
		Description: "Get one day's diet log (meals, protein goal, hydration) for a userKey",
	}, t.GetDailyLog)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the saved diet profile for a userKey, or null",
	}, t.GetProfile)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "normalize_workout_plan",
		Description: "Repair a loosely shaped weekly workout plan into the canonical shape with all seven weekdays",
	}, t.NormalizeWorkoutPlan)

	return srv
}
