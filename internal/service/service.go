package service

import (
	"context"
	"time"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

// Recorder receives domain events for metrics. *metrics.Metrics implements it.
type Recorder interface {
	ModelCall(operation string, err error, d time.Duration)
	HandoverScan(result string)
	ImageUpload(ok bool)
	CodesCleared(n int64)
}

type nopRecorder struct{}

func (nopRecorder) ModelCall(string, error, time.Duration) {}
func (nopRecorder) HandoverScan(string) {}
func (nopRecorder) ImageUpload(bool) {}
func (nopRecorder) CodesCleared(int64) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// itemRepository is the subset of store.ItemStore the services require.
type itemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	UpdateImages(ctx context.Context, id, imageURL string, images []string) error
}

// profileRepository is the subset of store.ProfileStore the services require.
type profileRepository interface {
	Ensure(ctx context.Context, id string, fullName *string) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

// bookingRepository is the subset of store.BookingStore the services require.
type bookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	SetHandoverCode(ctx context.Context, id string, expectStatus domain.BookingStatus, code string, typ domain.HandoverType, expiresAt, now time.Time) (bool, error)
	CompleteHandover(ctx context.Context, id, code string, typ domain.HandoverType, newStatus domain.BookingStatus, now time.Time) (bool, error)
	ClearExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

// reviewRepository is the subset of store.ReviewStore the services require.
type reviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	ListByItem(ctx context.Context, itemID string) ([]*domain.Review, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Review, error)
}
