package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

const placeholder = "https://images.test/placeholder.jpg"

func listingInput() ListingInput {
	lat, lng := 19.076, 72.8777
	return ListingInput{
		Title:       "Philips CPAP",
		Category:    "Respiratory",
		Description: "DreamStation, lightly used",
		PricePerDay: 350,
		Location:    "Andheri, Mumbai",
		Lat:         &lat,
		Lng:         &lng,
		Verified:    true,
		SafetyScore: 8,
		Reason:      "Seal intact",
		OwnerID:     "owner-1",
		UserName:    "Ravi",
	}
}

func TestCreateListing_WithImages(t *testing.T) {
	st := newTestStores(t)
	photos := newStubPhotoStore()
	rec := &recordingRecorder{}
	svc := NewListingService(st.items, st.profiles, photos, placeholder, rec, discardLogger())
	ctx := context.Background()

	item, err := svc.CreateListing(ctx, listingInput(), []Upload{
		{Filename: "front.jpg", MimeType: "image/jpeg", Data: []byte("front")},
		{Filename: "C:\\Users\\ravi\\side.png", MimeType: "image/png", Data: []byte("side")},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AIStatusVerified, item.AIStatus)
	assert.Equal(t, "Score: 8/10. Seal intact", item.AIReason)
	assert.True(t, item.IsAvailable)
	want := []string{
		"https://cdn.test/" + item.ID + "/front.jpg",
		"https://cdn.test/" + item.ID + "/side.png",
	}
	assert.Equal(t, want[0], item.ImageURL)
	assert.Equal(t, domain.StringList(want), item.Images)
	assert.Equal(t, []byte("side"), photos.saved[item.ID+"/side.png"])
	assert.Equal(t, 2, rec.uploadsOK)

	stored, err := st.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, want[0], stored.ImageURL)
	assert.Equal(t, domain.StringList(want), stored.Images)

	owner, err := st.profiles.GetByID(ctx, "owner-1")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "Ravi", *owner.FullName)
}

func TestCreateListing_NoImagesKeepsPlaceholder(t *testing.T) {
	st := newTestStores(t)
	svc := NewListingService(st.items, st.profiles, newStubPhotoStore(), placeholder, nil, discardLogger())

	in := listingInput()
	in.Verified = false
	in.Reason = ""
	item, err := svc.CreateListing(context.Background(), in, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.AIStatusPending, item.AIStatus)
	assert.Equal(t, "Score: 8/10. ", item.AIReason)
	assert.Equal(t, placeholder, item.ImageURL)
	assert.Empty(t, item.Images)
}

func TestCreateListing_UploadFailureIsSwallowed(t *testing.T) {
	st := newTestStores(t)
	photos := newStubPhotoStore()
	photos.failAfter = 1
	rec := &recordingRecorder{}
	svc := NewListingService(st.items, st.profiles, photos, placeholder, rec, discardLogger())

	item, err := svc.CreateListing(context.Background(), listingInput(), []Upload{
		{Filename: "a.jpg", MimeType: "image/jpeg", Data: []byte("a")},
		{Filename: "b.jpg", MimeType: "image/jpeg", Data: []byte("b")},
		{Filename: "c.jpg", MimeType: "image/jpeg", Data: []byte("c")},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StringList{"https://cdn.test/" + item.ID + "/a.jpg"}, item.Images)
	assert.Equal(t, 1, rec.uploadsOK)
	assert.Equal(t, 1, rec.uploadsFail, "uploading stops at the first failure")
}

func TestCreateListing_AllUploadsFail(t *testing.T) {
	st := newTestStores(t)
	photos := newStubPhotoStore()
	photos.saved["other/existing.jpg"] = []byte("x")
	photos.failAfter = 1
	svc := NewListingService(st.items, st.profiles, photos, placeholder, nil, discardLogger())

	item, err := svc.CreateListing(context.Background(), listingInput(), []Upload{{Filename: "a.jpg", Data: []byte("a")}})
	require.NoError(t, err)
	assert.Equal(t, placeholder, item.ImageURL)
	assert.Empty(t, item.Images)
}

func TestCreateListing_MissingOwner(t *testing.T) {
	st := newTestStores(t)
	svc := NewListingService(st.items, st.profiles, newStubPhotoStore(), placeholder, nil, discardLogger())

	in := listingInput()
	in.OwnerID = ""
	_, err := svc.CreateListing(context.Background(), in, nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "front.jpg", objectName("front.jpg", 0))
	assert.Equal(t, "side.png", objectName("../../side.png", 0))
	assert.Equal(t, "x.jpg", objectName("C:\\tmp\\x.jpg", 0))
	assert.Equal(t, "image_3", objectName("", 2))
	assert.Equal(t, "image_1", objectName("..", 0))
	assert.Equal(t, "hidden", objectName(".hidden", 0))
}

func TestGetItem(t *testing.T) {
	st := newTestStores(t)
	svc := NewListingService(st.items, st.profiles, newStubPhotoStore(), placeholder, nil, discardLogger())
	ctx := context.Background()

	created, err := svc.CreateListing(ctx, listingInput(), nil)
	require.NoError(t, err)

	got, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Philips CPAP", got.Title)

	_, err = svc.GetItem(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
