package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Dhruvp18/pharma-grid-landing/internal/db"
	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// seedItem creates an owner profile and one item owned by it.
func seedItem(t *testing.T, d *sqlx.DB, ownerID, title string) *domain.Item {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, NewProfileStore(d).Ensure(ctx, ownerID, nil))
	item, err := NewItemStore(d).Create(ctx, &domain.Item{
		OwnerID:     ownerID,
		Title:       title,
		Category:    "Mobility",
		PricePerDay: 12.5,
		AIStatus:    domain.AIStatusPending,
		IsAvailable: true,
	})
	require.NoError(t, err)
	return item
}
