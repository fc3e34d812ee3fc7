package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gymlog/internal/crypto"
	"gymlog/internal/models"
)

// Store groups the per-table stores over one database handle.
type Store struct {
	db       *sqlx.DB
	Profiles *ProfileStore
	Entries  *EntryStore
	Protein  *ProteinStore
}

func New(db *sqlx.DB, sealer *crypto.Sealer) *Store {
	return &Store{
		db:       db,
		Profiles: NewProfileStore(db),
		Entries:  NewEntryStore(db, sealer),
		Protein:  NewProteinStore(db),
	}
}

// Import writes an uploaded local history in one transaction: the profile,
// when given, and every daily log. Either everything lands or nothing does.
func (s *Store) Import(ctx context.Context, userKey string, profile *models.DietProfile, logs []models.DailyDietLog) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if profile != nil {
		if err := upsertProfile(ctx, tx, userKey, *profile); err != nil {
			return err
		}
	}
	for i := range logs {
		logs[i].UserKey = userKey
	}
	if err := s.Entries.putManyTx(ctx, tx, logs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
