package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gymlog/internal/models"
	"gymlog/internal/store"
)

const maxMergeAttempts = 3

var ErrMealNotFound = errors.New("meal not found")

type EntryReadWriter interface {
	Get(ctx context.Context, userKey, dateKey string) (models.DailyDietLog, error)
	Put(ctx context.Context, log models.DailyDietLog, expectedRevision *int) (int, error)
}

type LogMealRequest struct {
	UserKey     string          `json:"userKey"`
	DateKey     string          `json:"dateKey"`
	Description string          `json:"description"`
	MealType    models.MealType `json:"mealType"`
	Goal        models.Goal     `json:"goal"`
	MealID      string          `json:"mealId,omitempty"`
}

type LogMealResult struct {
	OK       bool                 `json:"ok"`
	Meal     *models.MealEntry    `json:"meal,omitempty"`
	Entry    *models.DailyDietLog `json:"entry,omitempty"`
	Feedback string               `json:"feedback,omitempty"`
}

// MealLogger analyzes a meal and merges it into the stored day server-side.
// The merge is retried against the freshest log when another write lands
// first, so a slow analysis never overwrites a newer edit.
type MealLogger struct {
	analyzer *MealAnalyzer
	entries  EntryReadWriter
	logger   *zap.Logger
	now      func() time.Time
}

func NewMealLogger(analyzer *MealAnalyzer, entries EntryReadWriter, logger *zap.Logger) *MealLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealLogger{analyzer: analyzer, entries: entries, logger: logger, now: time.Now}
}

func (l *MealLogger) Log(ctx context.Context, req LogMealRequest) (LogMealResult, error) {
	if err := validateLogMeal(req); err != nil {
		return LogMealResult{}, err
	}

	analysis := l.analyzer.Analyze(ctx, MealAnalysisRequest{
		Description: req.Description,
		MealType:    req.MealType,
		Goal:        req.Goal,
	})
	if !analysis.OK {
		return LogMealResult{OK: false, Feedback: analysis.Feedback}, nil
	}

	meal := models.MealEntry{
		ID:          req.MealID,
		MealType:    req.MealType,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   l.now().UTC(),
		Notes:       analysis.Feedback,
		Confidence:  analysis.Confidence,
		Nutrients:   *analysis.Nutrients,
	}
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}

	for attempt := 1; ; attempt++ {
		current, err := l.entries.Get(ctx, req.UserKey, req.DateKey)
		if err != nil {
			return LogMealResult{}, err
		}
		merged := UpsertMeal(current, meal)
		rev, err := l.entries.Put(ctx, merged, &current.Revision)
		if errors.Is(err, store.ErrRevisionConflict) && attempt < maxMergeAttempts {
			l.logger.Debug("daily log changed during analysis, re-merging",
				zap.String("date_key", req.DateKey), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return LogMealResult{}, fmt.Errorf("save meal: %w", err)
		}
		merged.Revision = rev
		for _, m := range merged.Meals {
			if m.ID == meal.ID {
				meal = m
				break
			}
		}
		return LogMealResult{OK: true, Meal: &meal, Entry: &merged, Feedback: analysis.Feedback}, nil
	}
}

// Delete removes a meal by id under the same revision guard.
func (l *MealLogger) Delete(ctx context.Context, userKey, dateKey, mealID string) (models.DailyDietLog, error) {
	if userKey == "" {
		return models.DailyDietLog{}, &ValidationError{Field: "userKey", Message: "is required"}
	}
	if err := ValidateDateKey(dateKey); err != nil {
		return models.DailyDietLog{}, err
	}
	for attempt := 1; ; attempt++ {
		current, err := l.entries.Get(ctx, userKey, dateKey)
		if err != nil {
			return models.DailyDietLog{}, err
		}
		updated, found := DeleteMeal(current, mealID)
		if !found {
			return models.DailyDietLog{}, ErrMealNotFound
		}
		rev, err := l.entries.Put(ctx, updated, &current.Revision)
		if errors.Is(err, store.ErrRevisionConflict) && attempt < maxMergeAttempts {
			continue
		}
		if err != nil {
			return models.DailyDietLog{}, fmt.Errorf("delete meal: %w", err)
		}
		updated.Revision = rev
		return updated, nil
	}
}

func validateLogMeal(req LogMealRequest) error {
	if req.UserKey == "" {
		return &ValidationError{Field: "userKey", Message: "is required"}
	}
	if err := ValidateDateKey(req.DateKey); err != nil {
		return err
	}
	if strings.TrimSpace(req.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	if !req.MealType.Valid() {
		return &ValidationError{Field: "mealType", Message: "must be one of breakfast, lunch, dinner, snack"}
	}
	return nil
}
