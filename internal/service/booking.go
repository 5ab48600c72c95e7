package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

type BookingInput struct {
	ItemID    string
	RenterID  string
	StartDate time.Time
	EndDate   time.Time
}

type BookingService struct {
	bookings bookingRepository
	items    itemRepository
	logger   *slog.Logger
}

func NewBookingService(bookings bookingRepository, items itemRepository, logger *slog.Logger) *BookingService {
	return &BookingService{bookings: bookings, items: items, logger: logger}
}

// Create books an item for a renter. The booking starts as pending and
// takes its owner from the item.
func (s *BookingService) Create(ctx context.Context, in BookingInput) (*domain.Booking, error) {
	if in.EndDate.Before(in.StartDate) {
		return nil, domain.Invalid("end_date must not be before start_date")
	}

	item, err := s.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("Item")
	}

	booking, err := s.bookings.Create(ctx, &domain.Booking{
		ItemID:    item.ID,
		RenterID:  in.RenterID,
		OwnerID:   item.OwnerID,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
		Status:    domain.BookingPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.Info("booking created", "booking_id", booking.ID, "item_id", item.ID, "renter_id", in.RenterID)
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFound("Booking")
	}
	return booking, nil
}
