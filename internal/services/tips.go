package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gymlog/internal/ai"
)

type ExerciseTipper struct {
	ai     Completer
	model  string
	logger *zap.Logger
}

func NewExerciseTipper(c Completer, model string, logger *zap.Logger) *ExerciseTipper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExerciseTipper{ai: c, model: model, logger: logger}
}

// Tip returns three short beginner bullets for an exercise. Any failure,
// including a missing API key, yields ok=false.
func (t *ExerciseTipper) Tip(ctx context.Context, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	content, err := t.ai.Complete(ctx, ai.CompletionRequest{
		Model: t.model,
		Messages: []ai.Message{ai.UserText(fmt.Sprintf(`Give exactly 3 beginner-friendly bullet tips for the exercise %q.
Each bullet must:
- use 5-10 super simple words (with 1-2 emoji).
- mention the machine or body position if it matters.
- explain the action in everyday language.
Return plain text with each bullet on its own line starting with "- ". No intro or outro.`, name))},
		Temperature:         0.4,
		MaxCompletionTokens: 150,
	})
	if err != nil {
		t.logger.Debug("exercise tip unavailable", zap.String("exercise", name), zap.Error(err))
		return "", false
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", false
	}
	return content, true
}
