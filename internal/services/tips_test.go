package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExerciseTip(t *testing.T) {
	fc := reply("- Sit tall on the bench 🪑\n- Push up slowly 💪\n- Breathe out on effort 😮‍💨\n")
	tip, ok := NewExerciseTipper(fc, "tip-model", nil).Tip(context.Background(), "Shoulder Press")
	if !ok || strings.Count(tip, "- ") != 3 || strings.HasSuffix(tip, "\n") {
		t.Errorf("tip = %q, %v", tip, ok)
	}
	call := fc.calls[0]
	if call.Temperature != 0.4 || call.MaxCompletionTokens != 150 || call.JSONMode {
		t.Errorf("request = %+v", call)
	}
	if !strings.Contains(call.Messages[0].Content.(string), `"Shoulder Press"`) {
		t.Error("prompt does not name the exercise")
	}
}

func TestExerciseTipFailures(t *testing.T) {
	if _, ok := NewExerciseTipper(&fakeCompleter{err: errors.New("boom")}, "m", nil).Tip(context.Background(), "Squat"); ok {
		t.Error("provider error produced a tip")
	}
	if _, ok := NewExerciseTipper(reply("  "), "m", nil).Tip(context.Background(), "Squat"); ok {
		t.Error("blank reply produced a tip")
	}
	fc := reply("x")
	if _, ok := NewExerciseTipper(fc, "m", nil).Tip(context.Background(), " "); ok || len(fc.calls) != 0 {
		t.Error("blank exercise name should not call the provider")
	}
}
