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

const itemColumns = `id, owner_id, title, category, description, price_per_day, address_text,
	lat, lng, image_url, images, ai_status, ai_reason, is_available,
	contact_email, contact_phone, created_at`

type ItemStore struct {
	db *sqlx.DB
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

// Create inserts item, assigning an ID and creation time when unset, and
// returns the stored row.
func (s *ItemStore) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	row := *item
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.Images == nil {
		row.Images = domain.StringList{}
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`) VALUES (
			:id, :owner_id, :title, :category, :description, :price_per_day, :address_text,
			:lat, :lng, :image_url, :images, :ai_status, :ai_reason, :is_available,
			:contact_email, :contact_phone, :created_at)
	`, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return s.GetByID(ctx, row.ID)
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item := &domain.Item{}
	err := s.db.GetContext(ctx, item, s.db.Rebind(`SELECT `+itemColumns+` FROM items WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// UpdateImages back-fills the cover image and the full image list of an item.
func (s *ItemStore) UpdateImages(ctx context.Context, id, imageURL string, images []string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE items SET image_url = ?, images = ? WHERE id = ?
	`), imageURL, domain.StringList(images), id)
	if err != nil {
		return fmt.Errorf("failed to update item images: %w", err)
	}
	return expectAffected(result, "item")
}

// expectAffected maps a zero-row update or delete to domain.ErrNotFound.
func expectAffected(result sql.Result, entity string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %w", entity, domain.ErrNotFound)
	}
	return nil
}
