package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gymlog/internal/crypto"
	"gymlog/internal/db"
	"gymlog/internal/models"
)

func newTestStore(t *testing.T, sealer *crypto.Sealer) *Store {
	t.Helper()
	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.RunMigrations(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(conn, sealer)
}

func intPtr(i int) *int { return &i }

func sampleLog(userKey, dateKey string) models.DailyDietLog {
	return models.DailyDietLog{
		UserKey: userKey,
		DateKey: dateKey,
		Meals: []models.MealEntry{
			{ID: "m2", MealType: models.MealDinner, Description: "rice and dal", CreatedAt: time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC), Confidence: models.ConfidenceHigh, Nutrients: models.Nutrients{Calories: 520, Protein: 18, Carbs: 90, Fat: 9}},
			{ID: "m1", MealType: models.MealBreakfast, Description: "3 eggs", CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), Notes: "scrambled", Confidence: models.ConfidenceMedium, Nutrients: models.Nutrients{Calories: 210, Protein: 18, Carbs: 1, Fat: 15}},
		},
		ProteinGoal:     140,
		HydrationLiters: 2.5,
	}
}

func TestProfileMissingReturnsNil(t *testing.T) {
	s := newTestStore(t, nil)
	p, err := s.Profiles.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}

func TestProfileUpsertReplaces(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	first := models.DietProfile{Goal: models.GoalMuscleGain, WeightKg: 70, HeightCm: 175, HeightText: "175 cm", ProteinTarget: 120}
	if err := s.Profiles.Upsert(ctx, "u1", first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second := models.DietProfile{Goal: models.GoalWeightLoss, WeightKg: 82.5, HeightCm: 180, HeightText: "5 ft 11 in", ProteinTarget: 150}
	if err := s.Profiles.Upsert(ctx, "u1", second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := s.Profiles.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || *got != second {
		t.Fatalf("Get = %+v, want %+v", got, second)
	}
}

func TestEntryGetDefaults(t *testing.T) {
	s := newTestStore(t, nil)
	got, err := s.Entries.Get(context.Background(), "u1", "2025-03-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Meals == nil || len(got.Meals) != 0 {
		t.Errorf("meals = %#v, want empty non-nil slice", got.Meals)
	}
	if got.ProteinGoal != 120 || got.HydrationLiters != 2 || got.Revision != 0 {
		t.Errorf("defaults = goal %d hydration %v revision %d", got.ProteinGoal, got.HydrationLiters, got.Revision)
	}
}

func TestEntryRoundTripPreservesOrder(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	in := sampleLog("u1", "2025-03-01")
	rev, err := s.Entries.Put(ctx, in, nil)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if rev != 1 {
		t.Errorf("first revision = %d, want 1", rev)
	}

	got, err := s.Entries.Get(ctx, "u1", "2025-03-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Meals) != 2 || got.Meals[0].ID != "m2" || got.Meals[1].ID != "m1" {
		t.Fatalf("meal order not preserved: %+v", got.Meals)
	}
	if got.Meals[1].Notes != "scrambled" || got.Meals[1].Nutrients != in.Meals[1].Nutrients {
		t.Errorf("meal fields changed: %+v", got.Meals[1])
	}
	if !got.Meals[0].CreatedAt.Equal(in.Meals[0].CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.Meals[0].CreatedAt, in.Meals[0].CreatedAt)
	}
	if got.ProteinGoal != 140 || got.HydrationLiters != 2.5 {
		t.Errorf("goal/hydration = %d/%v", got.ProteinGoal, got.HydrationLiters)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updatedAt not set")
	}

	rev, err = s.Entries.Put(ctx, in, nil)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if rev != 2 {
		t.Errorf("unguarded overwrite revision = %d, want 2", rev)
	}
}

func TestEntryRevisionGuard(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	log := sampleLog("u1", "2025-03-02")

	rev, err := s.Entries.Put(ctx, log, intPtr(0))
	if err != nil {
		t.Fatalf("create with revision 0: %v", err)
	}
	if rev != 1 {
		t.Fatalf("revision = %d, want 1", rev)
	}
	if _, err := s.Entries.Put(ctx, log, intPtr(0)); !errors.Is(err, ErrRevisionConflict) {
		t.Fatalf("second create err = %v, want ErrRevisionConflict", err)
	}

	log.Meals = log.Meals[:1]
	rev, err = s.Entries.Put(ctx, log, intPtr(1))
	if err != nil {
		t.Fatalf("guarded update: %v", err)
	}
	if rev != 2 {
		t.Fatalf("revision = %d, want 2", rev)
	}

	log.Meals = nil
	if _, err := s.Entries.Put(ctx, log, intPtr(1)); !errors.Is(err, ErrRevisionConflict) {
		t.Fatalf("stale update err = %v, want ErrRevisionConflict", err)
	}
	got, _ := s.Entries.Get(ctx, "u1", "2025-03-02")
	if len(got.Meals) != 1 {
		t.Errorf("stale write must not land; meals = %d", len(got.Meals))
	}
}

func TestEntrySealedAtRest(t *testing.T) {
	sealer, err := crypto.NewSealer(bytes.Repeat([]byte{3}, 32))
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	s := newTestStore(t, sealer)
	ctx := context.Background()
	if _, err := s.Entries.Put(ctx, sampleLog("u1", "2025-03-03"), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var raw string
	if err := s.db.Get(&raw, `SELECT meals FROM daily_logs WHERE user_key = 'u1'`); err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if strings.Contains(raw, "eggs") {
		t.Fatalf("meals stored in plaintext: %q", raw)
	}

	got, err := s.Entries.Get(ctx, "u1", "2025-03-03")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Meals) != 2 || got.Meals[1].Description != "3 eggs" {
		t.Errorf("decrypted meals = %+v", got.Meals)
	}
}

func TestProteinDefaultsAndPut(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	got, err := s.Protein.Get(ctx, "2025-03-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ProteinGoal != 120 || got.ProteinConsumed != 0 {
		t.Errorf("defaults = %+v", got)
	}

	if err := s.Protein.Put(ctx, models.ProteinEntry{DateKey: "2025-03-01", ProteinGoal: 150, ProteinConsumed: 42.5}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err = s.Protein.Get(ctx, "2025-03-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ProteinGoal != 150 || got.ProteinConsumed != 42.5 {
		t.Errorf("after put = %+v", got)
	}
}

func TestImportWritesProfileAndLogs(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	profile := &models.DietProfile{Goal: models.GoalWeightGain, WeightKg: 60, HeightCm: 168, HeightText: "168 cm", ProteinTarget: 108}
	logs := []models.DailyDietLog{sampleLog("ignored", "2025-02-27"), sampleLog("ignored", "2025-02-28")}

	if err := s.Import(ctx, "u9", profile, logs); err != nil {
		t.Fatalf("Import: %v", err)
	}
	p, err := s.Profiles.Get(ctx, "u9")
	if err != nil || p == nil || p.ProteinTarget != 108 {
		t.Fatalf("profile after import = %+v, %v", p, err)
	}
	for _, d := range []string{"2025-02-27", "2025-02-28"} {
		got, err := s.Entries.Get(ctx, "u9", d)
		if err != nil {
			t.Fatalf("Get %s: %v", d, err)
		}
		if len(got.Meals) != 2 || got.Revision != 1 {
			t.Errorf("%s: meals %d revision %d", d, len(got.Meals), got.Revision)
		}
	}
	other, _ := s.Entries.Get(ctx, "ignored", "2025-02-27")
	if other.Revision != 0 {
		t.Error("import must scope logs to the importing user")
	}
}
