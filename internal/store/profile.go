package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gymlog/internal/models"
)

type profileRow struct {
	Goal          string  `db:"goal"`
	WeightKg      float64 `db:"weight_kg"`
	HeightCm      float64 `db:"height_cm"`
	HeightText    string  `db:"height_text"`
	ProteinTarget int     `db:"protein_target"`
}

type ProfileStore struct {
	db *sqlx.DB
}

func NewProfileStore(db *sqlx.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get returns nil, nil when the user has never saved a profile.
func (s *ProfileStore) Get(ctx context.Context, userKey string) (*models.DietProfile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT goal, weight_kg, height_cm, height_text, protein_target
		FROM diet_profiles WHERE user_key = ?`), userKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get diet profile: %w", err)
	}
	return &models.DietProfile{
		Goal:          models.Goal(row.Goal),
		WeightKg:      row.WeightKg,
		HeightCm:      row.HeightCm,
		HeightText:    row.HeightText,
		ProteinTarget: row.ProteinTarget,
	}, nil
}

// Upsert replaces the stored profile wholesale.
func (s *ProfileStore) Upsert(ctx context.Context, userKey string, p models.DietProfile) error {
	return upsertProfile(ctx, s.db, userKey, p)
}

func upsertProfile(ctx context.Context, ex sqlx.ExtContext, userKey string, p models.DietProfile) error {
	_, err := ex.ExecContext(ctx, ex.Rebind(`INSERT INTO diet_profiles (user_key, goal, weight_kg, height_cm, height_text, protein_target, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_key) DO UPDATE SET
			goal = EXCLUDED.goal,
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			height_text = EXCLUDED.height_text,
			protein_target = EXCLUDED.protein_target,
			updated_at = EXCLUDED.updated_at`),
		userKey, string(p.Goal), p.WeightKg, p.HeightCm, p.HeightText, p.ProteinTarget, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upsert diet profile: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
