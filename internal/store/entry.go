package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gymlog/internal/crypto"
	"gymlog/internal/models"
)

const (
	DefaultProteinGoal     = 120
	DefaultHydrationLiters = 2.0
)

// ErrRevisionConflict is returned by a guarded Put when the stored log has
// moved past the revision the caller read.
var ErrRevisionConflict = errors.New("daily log was modified by another write")

type entryRow struct {
	Meals           string  `db:"meals"`
	ProteinGoal     int     `db:"protein_goal"`
	HydrationLiters float64 `db:"hydration_liters"`
	UpdatedAt       string  `db:"updated_at"`
	Revision        int     `db:"revision"`
}

type EntryStore struct {
	db     *sqlx.DB
	sealer *crypto.Sealer
}

// NewEntryStore creates the daily log store. sealer may be nil, in which
// case meal documents are stored as plain JSON.
func NewEntryStore(db *sqlx.DB, sealer *crypto.Sealer) *EntryStore {
	return &EntryStore{db: db, sealer: sealer}
}

// EmptyLog is the value returned for a day that has never been written.
func EmptyLog(userKey, dateKey string) models.DailyDietLog {
	return models.DailyDietLog{
		UserKey:         userKey,
		DateKey:         dateKey,
		Meals:           []models.MealEntry{},
		ProteinGoal:     DefaultProteinGoal,
		HydrationLiters: DefaultHydrationLiters,
	}
}

func (s *EntryStore) Get(ctx context.Context, userKey, dateKey string) (models.DailyDietLog, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT meals, protein_goal, hydration_liters, updated_at, revision
		FROM daily_logs WHERE user_key = ? AND date_key = ?`), userKey, dateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return EmptyLog(userKey, dateKey), nil
	}
	if err != nil {
		return models.DailyDietLog{}, fmt.Errorf("get daily log: %w", err)
	}
	meals, err := s.decodeMeals(row.Meals)
	if err != nil {
		return models.DailyDietLog{}, fmt.Errorf("decode meals for %s: %w", dateKey, err)
	}
	return models.DailyDietLog{
		UserKey:         userKey,
		DateKey:         dateKey,
		Meals:           meals,
		ProteinGoal:     row.ProteinGoal,
		HydrationLiters: row.HydrationLiters,
		UpdatedAt:       parseTime(row.UpdatedAt),
		Revision:        row.Revision,
	}, nil
}

// Put replaces the whole log and returns the new revision.
//
// With expectedRevision nil the write always wins. Otherwise it only
// succeeds when the stored revision equals *expectedRevision, where 0
// means "no row yet"; a mismatch returns ErrRevisionConflict.
func (s *EntryStore) Put(ctx context.Context, log models.DailyDietLog, expectedRevision *int) (int, error) {
	meals, err := s.encodeMeals(log.Meals)
	if err != nil {
		return 0, err
	}
	now := formatTime(time.Now())

	var q string
	args := []interface{}{meals, log.ProteinGoal, log.HydrationLiters, now}
	switch {
	case expectedRevision == nil:
		return upsertLog(ctx, s.db, log.UserKey, log.DateKey, meals, log.ProteinGoal, log.HydrationLiters, now)
	case *expectedRevision == 0:
		q = `INSERT INTO daily_logs (meals, protein_goal, hydration_liters, updated_at, user_key, date_key, revision)
			VALUES (?, ?, ?, ?, ?, ?, 1)
			ON CONFLICT (user_key, date_key) DO NOTHING
			RETURNING revision`
		args = append(args, log.UserKey, log.DateKey)
	default:
		q = `UPDATE daily_logs
			SET meals = ?, protein_goal = ?, hydration_liters = ?, updated_at = ?, revision = revision + 1
			WHERE user_key = ? AND date_key = ? AND revision = ?
			RETURNING revision`
		args = append(args, log.UserKey, log.DateKey, *expectedRevision)
	}

	var rev int
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(q), args...).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRevisionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("put daily log: %w", err)
	}
	return rev, nil
}

func (s *EntryStore) putManyTx(ctx context.Context, tx *sqlx.Tx, logs []models.DailyDietLog) error {
	now := formatTime(time.Now())
	for _, l := range logs {
		meals, err := s.encodeMeals(l.Meals)
		if err != nil {
			return err
		}
		if _, err := upsertLog(ctx, tx, l.UserKey, l.DateKey, meals, l.ProteinGoal, l.HydrationLiters, now); err != nil {
			return err
		}
	}
	return nil
}

func upsertLog(ctx context.Context, ex sqlx.ExtContext, userKey, dateKey, meals string, proteinGoal int, hydration float64, now string) (int, error) {
	var rev int
	err := sqlx.GetContext(ctx, ex, &rev, ex.Rebind(`INSERT INTO daily_logs (user_key, date_key, meals, protein_goal, hydration_liters, updated_at, revision)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT (user_key, date_key) DO UPDATE SET
			meals = EXCLUDED.meals,
			protein_goal = EXCLUDED.protein_goal,
			hydration_liters = EXCLUDED.hydration_liters,
			updated_at = EXCLUDED.updated_at,
			revision = daily_logs.revision + 1
		RETURNING revision`), userKey, dateKey, meals, proteinGoal, hydration, now)
	if err != nil {
		return 0, fmt.Errorf("upsert daily log: %w", err)
	}
	return rev, nil
}

func (s *EntryStore) encodeMeals(meals []models.MealEntry) (string, error) {
	if meals == nil {
		meals = []models.MealEntry{}
	}
	raw, err := json.Marshal(meals)
	if err != nil {
		return "", fmt.Errorf("encode meals: %w", err)
	}
	sealed, err := s.sealer.Seal(raw)
	if err != nil {
		return "", fmt.Errorf("seal meals: %w", err)
	}
	return sealed, nil
}

func (s *EntryStore) decodeMeals(stored string) ([]models.MealEntry, error) {
	raw, err := s.sealer.Open(stored)
	if err != nil {
		return nil, err
	}
	var meals []models.MealEntry
	if err := json.Unmarshal(raw, &meals); err != nil {
		return nil, err
	}
	if meals == nil {
		meals = []models.MealEntry{}
	}
	return meals, nil
}
