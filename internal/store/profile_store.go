package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

type ProfileStore struct {
	db *sqlx.DB
}

func NewProfileStore(db *sqlx.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Ensure inserts a profile row for id unless one already exists. An existing
// row is left untouched.
func (s *ProfileStore) Ensure(ctx context.Context, id string, fullName *string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO profiles (id, full_name, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), id, fullName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	profile := &domain.Profile{}
	err := s.db.GetContext(ctx, profile, s.db.Rebind(`
		SELECT id, full_name, created_at FROM profiles WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}
