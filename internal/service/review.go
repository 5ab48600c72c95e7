package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

type ReviewInput struct {
	ItemID     string
	ReviewerID string
	BookingID  *string
	Rating     int
	Comment    string
}

type ReviewSummary struct {
	Reviews       []*domain.Review `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
	ReviewCount   int              `json:"review_count"`
}

type ProfileSummary struct {
	*domain.Profile
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

type ReviewService struct {
	reviews  reviewRepository
	items    itemRepository
	bookings bookingRepository
	profiles profileRepository
	logger   *slog.Logger
}

func NewReviewService(reviews reviewRepository, items itemRepository, bookings bookingRepository, profiles profileRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		items:    items,
		bookings: bookings,
		profiles: profiles,
		logger:   logger,
	}
}

func (s *ReviewService) Create(ctx context.Context, in ReviewInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, domain.Invalid("rating must be between 1 and 5")
	}

	item, err := s.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("Item")
	}

	if in.BookingID != nil {
		booking, err := s.bookings.GetByID(ctx, *in.BookingID)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			return nil, domain.NotFound("Booking")
		}
		if booking.ItemID != item.ID {
			return nil, domain.Invalid("booking does not belong to this item")
		}
	}

	review, err := s.reviews.Create(ctx, &domain.Review{
		ItemID:     item.ID,
		ReviewerID: in.ReviewerID,
		BookingID:  in.BookingID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("review created", "review_id", review.ID, "item_id", item.ID, "rating", review.Rating)
	return review, nil
}

func (s *ReviewService) ListForItem(ctx context.Context, itemID string) (*ReviewSummary, error) {
	reviews, err := s.reviews.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return summarise(reviews), nil
}

func (s *ReviewService) ListForOwner(ctx context.Context, ownerID string) (*ReviewSummary, error) {
	reviews, err := s.reviews.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return summarise(reviews), nil
}

// Profile returns the profile with the rating its owned items received.
func (s *ReviewService) Profile(ctx context.Context, id string) (*ProfileSummary, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.NotFound("Profile")
	}

	reviews, err := s.reviews.ListByOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	sum := summarise(reviews)
	return &ProfileSummary{Profile: profile, AverageRating: sum.AverageRating, ReviewCount: sum.ReviewCount}, nil
}

func summarise(reviews []*domain.Review) *ReviewSummary {
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return &ReviewSummary{
		Reviews:       reviews,
		AverageRating: AverageRating(reviews),
		ReviewCount:   len(reviews),
	}
}

// AverageRating is the mean rating rounded to one decimal, or 0 when empty.
func AverageRating(reviews []*domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	mean := float64(total) / float64(len(reviews))
	return math.Round(mean*10) / 10
}
