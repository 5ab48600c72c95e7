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

const bookingColumns = `id, item_id, renter_id, owner_id, start_date, end_date, status,
	handover_code, handover_type, handover_expires_at, created_at, updated_at`

type BookingStore struct {
	db *sqlx.DB
}

func NewBookingStore(db *sqlx.DB) *BookingStore {
	return &BookingStore{db: db}
}

func (s *BookingStore) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	row := *booking
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	if row.Status == "" {
		row.Status = domain.BookingPending
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`) VALUES (
			:id, :item_id, :renter_id, :owner_id, :start_date, :end_date, :status,
			:handover_code, :handover_type, :handover_expires_at, :created_at, :updated_at)
	`, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return s.GetByID(ctx, row.ID)
}

func (s *BookingStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	booking := &domain.Booking{}
	err := s.db.GetContext(ctx, booking, s.db.Rebind(`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// SetHandoverCode stores a handover code on the booking provided its status
// is still expectStatus. It reports whether a row was updated.
func (s *BookingStore) SetHandoverCode(ctx context.Context, id string, expectStatus domain.BookingStatus, code string, typ domain.HandoverType, expiresAt, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE bookings
		SET handover_code = ?, handover_type = ?, handover_expires_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`), code, string(typ), expiresAt, now, id, string(expectStatus))
	if err != nil {
		return false, fmt.Errorf("failed to set handover code: %w", err)
	}
	return affectedOne(result)
}

// CompleteHandover consumes a matching, unexpired handover code and moves the
// booking to newStatus in one statement. It reports whether the code matched.
func (s *BookingStore) CompleteHandover(ctx context.Context, id, code string, typ domain.HandoverType, newStatus domain.BookingStatus, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE bookings
		SET status = ?, handover_code = NULL, handover_type = NULL, handover_expires_at = NULL, updated_at = ?
		WHERE id = ? AND handover_code = ? AND handover_type = ? AND handover_expires_at > ?
	`), string(newStatus), now, id, code, string(typ), now)
	if err != nil {
		return false, fmt.Errorf("failed to complete handover: %w", err)
	}
	return affectedOne(result)
}

// ClearExpiredCodes removes handover codes whose expiry is not after now and
// returns how many bookings were touched.
func (s *BookingStore) ClearExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE bookings
		SET handover_code = NULL, handover_type = NULL, handover_expires_at = NULL, updated_at = ?
		WHERE handover_code IS NOT NULL AND handover_expires_at <= ?
	`), now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired handover codes: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func affectedOne(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
