package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore"
)

type ListingInput struct {
	Title        string
	Category     string
	Description  string
	PricePerDay  float64
	Location     string
	Lat          *float64
	Lng          *float64
	Verified     bool
	SafetyScore  int
	Reason       string
	OwnerID      string
	ContactEmail *string
	ContactPhone *string
	UserEmail    string
	UserName     string
}

// Upload is one image attached to a new listing.
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

type ListingService struct {
	items          itemRepository
	profiles       profileRepository
	photos         photostore.PhotoStore
	placeholderURL string
	recorder       Recorder
	logger         *slog.Logger
}

func NewListingService(items itemRepository, profiles profileRepository, photos photostore.PhotoStore, placeholderURL string, recorder Recorder, logger *slog.Logger) *ListingService {
	return &ListingService{
		items:          items,
		profiles:       profiles,
		photos:         photos,
		placeholderURL: placeholderURL,
		recorder:       recorderOrNop(recorder),
		logger:         logger,
	}
}

// CreateListing inserts the item, then uploads its images and back-fills the
// image URLs. Upload and back-fill failures are logged and do not fail the
// listing.
func (s *ListingService) CreateListing(ctx context.Context, in ListingInput, uploads []Upload) (*domain.Item, error) {
	if in.OwnerID == "" {
		return nil, domain.Invalid("Missing owner_id")
	}
	if in.PricePerDay < 0 {
		return nil, domain.Invalid("price must not be negative")
	}

	s.logger.Info("create listing started", "owner_id", in.OwnerID, "title", in.Title, "images", len(uploads))

	var fullName *string
	if in.UserName != "" {
		fullName = &in.UserName
	}
	if err := s.profiles.Ensure(ctx, in.OwnerID, fullName); err != nil {
		s.logger.Warn("failed to sync owner profile", "owner_id", in.OwnerID, "error", err)
	}

	aiStatus := domain.AIStatusPending
	if in.Verified {
		aiStatus = domain.AIStatusVerified
	}

	item, err := s.items.Create(ctx, &domain.Item{
		OwnerID:      in.OwnerID,
		Title:        in.Title,
		Category:     in.Category,
		Description:  in.Description,
		PricePerDay:  in.PricePerDay,
		AddressText:  in.Location,
		Lat:          in.Lat,
		Lng:          in.Lng,
		ImageURL:     s.placeholderURL,
		AIStatus:     aiStatus,
		AIReason:     fmt.Sprintf("Score: %d/10. %s", in.SafetyScore, in.Reason),
		IsAvailable:  true,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	s.logger.Info("item created", "item_id", item.ID)

	urls := s.uploadImages(ctx, item.ID, uploads)
	if len(urls) == 0 {
		return item, nil
	}

	if err := s.items.UpdateImages(ctx, item.ID, urls[0], urls); err != nil {
		s.logger.Error("failed to back-fill image urls", "item_id", item.ID, "error", err)
		return item, nil
	}
	item.ImageURL = urls[0]
	item.Images = urls

	s.logger.Info("create listing complete", "item_id", item.ID, "images", len(urls))
	return item, nil
}

// uploadImages stores uploads under "<itemID>/<filename>" and returns their
// public URLs. It stops at the first failure.
func (s *ListingService) uploadImages(ctx context.Context, itemID string, uploads []Upload) []string {
	urls := make([]string, 0, len(uploads))
	for i, u := range uploads {
		key := itemID + "/" + objectName(u.Filename, i)
		if err := s.photos.Save(ctx, key, u.MimeType, bytes.NewReader(u.Data)); err != nil {
			s.recorder.ImageUpload(false)
			s.logger.Error("image upload failed", "item_id", itemID, "key", key, "error", err)
			break
		}
		s.recorder.ImageUpload(true)
		urls = append(urls, s.photos.URL(key))
	}
	return urls
}

// objectName reduces a client-supplied filename to a single safe path segment.
func objectName(filename string, idx int) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "/" {
		return fmt.Sprintf("image_%d", idx+1)
	}
	return name
}

func (s *ListingService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("Item")
	}
	return item, nil
}
