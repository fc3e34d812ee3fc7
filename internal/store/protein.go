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

// ProteinStore backs the older date-keyed protein tracker. Entries are not
// scoped to a user.
type ProteinStore struct {
	db *sqlx.DB
}

func NewProteinStore(db *sqlx.DB) *ProteinStore {
	return &ProteinStore{db: db}
}

func (s *ProteinStore) Get(ctx context.Context, dateKey string) (models.ProteinEntry, error) {
	entry := models.ProteinEntry{DateKey: dateKey}
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`SELECT protein_goal, protein_consumed FROM protein_entries WHERE date_key = ?`), dateKey).
		Scan(&entry.ProteinGoal, &entry.ProteinConsumed)
	if errors.Is(err, sql.ErrNoRows) {
		entry.ProteinGoal = DefaultProteinGoal
		return entry, nil
	}
	if err != nil {
		return models.ProteinEntry{}, fmt.Errorf("get protein entry: %w", err)
	}
	return entry, nil
}

func (s *ProteinStore) Put(ctx context.Context, e models.ProteinEntry) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO protein_entries (date_key, protein_goal, protein_consumed, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (date_key) DO UPDATE SET
			protein_goal = EXCLUDED.protein_goal,
			protein_consumed = EXCLUDED.protein_consumed,
			updated_at = EXCLUDED.updated_at`),
		e.DateKey, e.ProteinGoal, e.ProteinConsumed, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("put protein entry: %w", err)
	}
	return nil
}
