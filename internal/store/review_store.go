package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

type ReviewStore struct {
	db *sqlx.DB
}

func NewReviewStore(db *sqlx.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	row := *review
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO reviews (id, item_id, reviewer_id, booking_id, rating, comment, created_at)
		VALUES (:id, :item_id, :reviewer_id, :booking_id, :rating, :comment, :created_at)
	`, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return s.GetByID(ctx, row.ID)
}

func (s *ReviewStore) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	review := &domain.Review{}
	err := s.db.GetContext(ctx, review, s.db.Rebind(`
		SELECT id, item_id, reviewer_id, booking_id, rating, comment, created_at
		FROM reviews WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// ListByItem returns the reviews of one item, newest first.
func (s *ReviewStore) ListByItem(ctx context.Context, itemID string) ([]*domain.Review, error) {
	reviews := []*domain.Review{}
	err := s.db.SelectContext(ctx, &reviews, s.db.Rebind(`
		SELECT id, item_id, reviewer_id, booking_id, rating, comment, created_at
		FROM reviews WHERE item_id = ?
		ORDER BY created_at DESC, id ASC
	`), itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item reviews: %w", err)
	}
	return reviews, nil
}

// ListByOwner returns the reviews left on any item owned by ownerID, newest first.
func (s *ReviewStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Review, error) {
	reviews := []*domain.Review{}
	err := s.db.SelectContext(ctx, &reviews, s.db.Rebind(`
		SELECT r.id, r.item_id, r.reviewer_id, r.booking_id, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN items i ON i.id = r.item_id
		WHERE i.owner_id = ?
		ORDER BY r.created_at DESC, r.id ASC
	`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner reviews: %w", err)
	}
	return reviews, nil
}
