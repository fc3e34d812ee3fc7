package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gymlog/internal/ai"
	"gymlog/internal/models"
)

func decodeRaw(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	raw, err := ParsePlanResponse(s)
	if err != nil {
		t.Fatalf("ParsePlanResponse: %v", err)
	}
	return raw
}

func checkPlanInvariants(t *testing.T, plan models.WorkoutPlan) {
	t.Helper()
	if len(plan.Schedule) != 7 {
		t.Errorf("schedule has %d keys, want 7", len(plan.Schedule))
	}
	for _, d := range models.Weekdays {
		block, ok := plan.Schedule[d]
		if !ok || block == "" {
			t.Errorf("schedule[%s] = %q", d, block)
		}
		if _, ok := plan.Workouts[block]; !ok {
			t.Errorf("schedule[%s] references missing block %q", d, block)
		}
	}
	for block, exercises := range plan.Workouts {
		ids := map[string]bool{}
		for _, ex := range exercises {
			if ex.ID == "" || ex.Name == "" || ex.Reps == "" || ex.Sets == "" {
				t.Errorf("%s: incomplete exercise %+v", block, ex)
			}
			if ids[ex.ID] {
				t.Errorf("%s: duplicate id %q", block, ex.ID)
			}
			ids[ex.ID] = true
		}
	}
}

func TestNormalizePlanUpgradesStringExercise(t *testing.T) {
	plan, err := NormalizePlan(decodeRaw(t, `{"workouts":{"Leg Day":["Squats"]}}`))
	if err != nil {
		t.Fatalf("NormalizePlan: %v", err)
	}
	got := plan.Workouts["Leg Day"]
	if len(got) != 1 {
		t.Fatalf("Leg Day = %+v", got)
	}
	ex := got[0]
	if ex.ID != "leg-day-1" || ex.Name != "Squats" || ex.Reps != "10–15" || ex.Sets != "2–3" || ex.Note != nil {
		t.Errorf("exercise = %+v", ex)
	}

	b, err := json.Marshal(ex)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"leg-day-1","name":"Squats","reps":"10–15","sets":"2–3","note":null}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
	checkPlanInvariants(t, plan)
}

func TestNormalizePlanCompletesSchedule(t *testing.T) {
	raw := decodeRaw(t, `{
		"planName": "  ",
		"schedule": {"Monday": "Push", "Tuesday": "", "Wednesday": 3, "Funday": "Pull"},
		"workouts": {"Push": [{"name": "Bench", "reps": 8, "sets": 4.5, "note": "slow"}], "Pull": ["Rows"]}
	}`)
	plan, err := NormalizePlan(raw)
	if err != nil {
		t.Fatalf("NormalizePlan: %v", err)
	}
	if plan.PlanName != "My Workout Plan" {
		t.Errorf("planName = %q", plan.PlanName)
	}
	if plan.Schedule["Monday"] != "Push" || plan.Schedule["Tuesday"] != RestDay || plan.Schedule["Wednesday"] != RestDay {
		t.Errorf("schedule = %v", plan.Schedule)
	}
	if _, ok := plan.Schedule["Funday"]; ok {
		t.Error("non-weekday key kept")
	}
	if rest, ok := plan.Workouts[RestDay]; !ok || len(rest) != 0 {
		t.Errorf("Rest Day workouts = %v, %v", rest, ok)
	}
	if _, ok := plan.Workouts["Pull"]; !ok {
		t.Error("unscheduled block from the reply was dropped")
	}

	bench := plan.Workouts["Push"][0]
	if bench.ID != "push-1" || bench.Reps != "8" || bench.Sets != "4.5" || bench.Note == nil || *bench.Note != "slow" {
		t.Errorf("bench = %+v", bench)
	}
	checkPlanInvariants(t, plan)
}

func TestNormalizePlanDeduplicatesIDs(t *testing.T) {
	plan, err := NormalizePlan(decodeRaw(t, `{"schedule":{"Monday":"Arms"},"workouts":{"Arms":[
		{"id":"curl","name":"Curl"},
		{"id":"curl","name":"Hammer Curl"},
		"Dips",
		{"id":"arms-3"},
		{}
	]}}`))
	if err != nil {
		t.Fatalf("NormalizePlan: %v", err)
	}
	arms := plan.Workouts["Arms"]
	ids := []string{}
	for _, ex := range arms {
		ids = append(ids, ex.ID)
	}
	want := []string{"curl", "arms-2", "arms-3", "arms-4", "arms-5"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
	if arms[3].Name != "Exercise" {
		t.Errorf("missing name not defaulted: %+v", arms[3])
	}
	checkPlanInvariants(t, plan)
}

func TestNormalizePlanRejectsBadShapes(t *testing.T) {
	for _, body := range []string{
		`{"workouts":{"Push":"Bench"}}`,
		`{"workouts":{"Push":null}}`,
		`{"workouts":{"Push":[null]}}`,
		`{"workouts":{"Push":[42]}}`,
		`{"workouts":["Push"]}`,
	} {
		if _, err := NormalizePlan(decodeRaw(t, body)); err == nil {
			t.Errorf("NormalizePlan(%s) succeeded, want error", body)
		}
	}
}

func TestNormalizePlanEmptyObject(t *testing.T) {
	plan, err := NormalizePlan(map[string]interface{}{})
	if err != nil {
		t.Fatalf("NormalizePlan: %v", err)
	}
	for _, d := range models.Weekdays {
		if plan.Schedule[d] != RestDay {
			t.Errorf("%s = %q", d, plan.Schedule[d])
		}
	}
	checkPlanInvariants(t, plan)
}

func TestParsePlanResponseSentinel(t *testing.T) {
	if _, err := ParsePlanResponse(`{"error":"NOT_PLAN"}`); !errors.Is(err, ErrNotPlan) {
		t.Errorf("err = %v, want ErrNotPlan", err)
	}
	if _, err := ParsePlanResponse(`not json`); err == nil || errors.Is(err, ErrNotPlan) {
		t.Errorf("garbage err = %v", err)
	}
	if _, err := ParsePlanResponse(`null`); err == nil {
		t.Error("null reply accepted")
	}
	for _, reply := range []string{`[{"planName":"x"}]`, "```json\n[{\"planName\":\"x\",\"schedule\":{}}]\n```"} {
		if _, err := ParsePlanResponse(reply); err == nil {
			t.Errorf("array reply %q accepted", reply)
		}
	}
}

func TestPlanParserParse(t *testing.T) {
	fc := reply(`{"planName":"PPL","schedule":{"Monday":"Push"},"workouts":{"Push":["Bench"]}}`)
	p := NewPlanParser(fc, "vision", nil)
	plan, err := p.Parse(context.Background(), "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.PlanName != "PPL" || plan.Workouts["Push"][0].ID != "push-1" {
		t.Errorf("plan = %+v", plan)
	}
	msg := fc.calls[0].Messages[0]
	parts, ok := msg.Content.([]ai.ContentPart)
	if !ok || len(parts) != 2 || parts[1].ImageURL.URL != "data:image/png;base64,AAAA" {
		t.Errorf("vision message = %+v", msg)
	}

	notPlan := NewPlanParser(reply(`{"error":"NOT_PLAN"}`), "vision", nil)
	if _, err := notPlan.Parse(context.Background(), "data:x"); !errors.Is(err, ErrNotPlan) {
		t.Errorf("err = %v, want ErrNotPlan", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Leg Day":        "leg-day",
		"Cardio & Abs":   "cardio-abs",
		"  --Push!! ":    "push",
		"Día 1":          "d-a-1",
		"!!!":            "block",
		"Upper/Lower v2": "upper-lower-v2",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
