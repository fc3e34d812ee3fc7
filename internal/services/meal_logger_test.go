package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymlog/internal/models"
	"gymlog/internal/store"
)

// memEntries is an in-memory EntryReadWriter with the same revision rules
// as the SQL store. beforePut runs once before the next Put, letting a test
// slip in a concurrent write.
type memEntries struct {
	logs      map[string]models.DailyDietLog
	beforePut func(m *memEntries)
	puts      int
}

func newMemEntries() *memEntries {
	return &memEntries{logs: map[string]models.DailyDietLog{}}
}

func (m *memEntries) Get(_ context.Context, userKey, dateKey string) (models.DailyDietLog, error) {
	if l, ok := m.logs[userKey+"|"+dateKey]; ok {
		return l, nil
	}
	return store.EmptyLog(userKey, dateKey), nil
}

func (m *memEntries) Put(_ context.Context, log models.DailyDietLog, expected *int) (int, error) {
	if hook := m.beforePut; hook != nil {
		m.beforePut = nil
		hook(m)
	}
	m.puts++
	key := log.UserKey + "|" + log.DateKey
	cur := m.logs[key]
	if expected != nil && *expected != cur.Revision {
		return 0, store.ErrRevisionConflict
	}
	log.Revision = cur.Revision + 1
	m.logs[key] = log
	return log.Revision, nil
}

const confidentEggs = `{"isFood":true,"nutrients":{"calories":210,"protein":18,"carbs":1,"fat":15},"confidence":"high","feedback":"Nice protein."}`

func newTestLogger(reply string, entries *memEntries) (*MealLogger, *fakeCompleter) {
	fc := &fakeCompleter{replies: []string{reply}}
	l := NewMealLogger(NewMealAnalyzer(fc, "m", nil), entries, nil)
	l.now = func() time.Time { return fixedNow }
	return l, fc
}

func TestLogMealAddsAnalyzedMeal(t *testing.T) {
	entries := newMemEntries()
	l, _ := newTestLogger(confidentEggs, entries)

	res, err := l.Log(context.Background(), LogMealRequest{UserKey: "u1", DateKey: "2025-03-01", Description: " 3 eggs ", MealType: models.MealBreakfast})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !res.OK || res.Meal == nil || res.Entry == nil {
		t.Fatalf("result = %+v", res)
	}
	if res.Meal.ID == "" || res.Meal.Description != "3 eggs" || res.Meal.Notes != "Nice protein." || res.Meal.Nutrients.Protein != 18 {
		t.Errorf("meal = %+v", res.Meal)
	}
	if res.Entry.Revision != 1 || len(res.Entry.Meals) != 1 {
		t.Errorf("entry = %+v", res.Entry)
	}
}

func TestLogMealLowConfidenceNeverStored(t *testing.T) {
	entries := newMemEntries()
	l, _ := newTestLogger(`{"isFood":true,"nutrients":{"calories":50,"protein":1,"carbs":1,"fat":1},"confidence":"low","feedback":"Too vague."}`, entries)

	res, err := l.Log(context.Background(), LogMealRequest{UserKey: "u1", DateKey: "2025-03-01", Description: "stuff", MealType: models.MealSnack})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if res.OK || res.Meal != nil || res.Feedback != "Too vague." {
		t.Errorf("result = %+v", res)
	}
	if entries.puts != 0 {
		t.Errorf("rejected analysis wrote the log %d times", entries.puts)
	}
}

func TestLogMealRemergesAfterConflict(t *testing.T) {
	entries := newMemEntries()
	entries.logs["u1|2025-03-01"] = models.DailyDietLog{UserKey: "u1", DateKey: "2025-03-01", Meals: []models.MealEntry{meal("old", 100)}, ProteinGoal: 120, Revision: 1}
	entries.beforePut = func(m *memEntries) {
		l := m.logs["u1|2025-03-01"]
		l.Meals = append([]models.MealEntry{meal("concurrent", 50)}, l.Meals...)
		l.Revision++
		m.logs["u1|2025-03-01"] = l
	}
	l, fc := newTestLogger(confidentEggs, entries)

	res, err := l.Log(context.Background(), LogMealRequest{UserKey: "u1", DateKey: "2025-03-01", Description: "eggs", MealType: models.MealBreakfast, MealID: "new"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if got := ids(res.Entry.Meals); got != "new,concurrent,old" {
		t.Errorf("meals after re-merge = %s", got)
	}
	if res.Entry.Revision != 3 {
		t.Errorf("revision = %d, want 3", res.Entry.Revision)
	}
	if len(fc.calls) != 1 {
		t.Errorf("analysis re-run on conflict: %d calls", len(fc.calls))
	}
}

func TestLogMealEditKeepsCreatedAt(t *testing.T) {
	entries := newMemEntries()
	orig := meal("m1", 100)
	orig.CreatedAt = fixedNow.Add(-5 * time.Hour)
	entries.logs["u1|2025-03-01"] = models.DailyDietLog{UserKey: "u1", DateKey: "2025-03-01", Meals: []models.MealEntry{meal("m2", 10), orig}, Revision: 4}
	l, _ := newTestLogger(confidentEggs, entries)

	res, err := l.Log(context.Background(), LogMealRequest{UserKey: "u1", DateKey: "2025-03-01", Description: "eggs", MealType: models.MealBreakfast, MealID: "m1"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if ids(res.Entry.Meals) != "m2,m1" {
		t.Errorf("order = %s", ids(res.Entry.Meals))
	}
	if !res.Meal.CreatedAt.Equal(orig.CreatedAt) || res.Meal.Nutrients.Calories != 210 {
		t.Errorf("edited meal = %+v", res.Meal)
	}
}

func TestLogMealValidation(t *testing.T) {
	l, _ := newTestLogger(confidentEggs, newMemEntries())
	for _, req := range []LogMealRequest{
		{DateKey: "2025-03-01", Description: "x", MealType: models.MealLunch},
		{UserKey: "u", DateKey: "bad", Description: "x", MealType: models.MealLunch},
		{UserKey: "u", DateKey: "2025-03-01", Description: "  ", MealType: models.MealLunch},
		{UserKey: "u", DateKey: "2025-03-01", Description: "x", MealType: "brunch"},
	} {
		var ve *ValidationError
		if _, err := l.Log(context.Background(), req); !errors.As(err, &ve) {
			t.Errorf("%+v: err = %v, want ValidationError", req, err)
		}
	}
}

func TestDeleteMealService(t *testing.T) {
	entries := newMemEntries()
	entries.logs["u1|2025-03-01"] = models.DailyDietLog{UserKey: "u1", DateKey: "2025-03-01", Meals: []models.MealEntry{meal("a", 1), meal("b", 2)}, Revision: 2}
	l, _ := newTestLogger(confidentEggs, entries)

	got, err := l.Delete(context.Background(), "u1", "2025-03-01", "a")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ids(got.Meals) != "b" || got.Revision != 3 {
		t.Errorf("after delete = %s rev %d", ids(got.Meals), got.Revision)
	}
	if _, err := l.Delete(context.Background(), "u1", "2025-03-01", "a"); !errors.Is(err, ErrMealNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
