package web

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
	"github.com/Dhruvp18/pharma-grid-landing/internal/service"
)

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}

	form := listingForm{
		Title:        formValue(r, "title"),
		Category:     formValue(r, "category"),
		Description:  formValue(r, "description"),
		Price:        formValue(r, "price"),
		Location:     formValue(r, "location"),
		Lat:          formValue(r, "lat"),
		Lng:          formValue(r, "lng"),
		Verified:     formValue(r, "verified"),
		SafetyScore:  formValue(r, "safety_score"),
		Reason:       formValue(r, "reason"),
		OwnerID:      formValue(r, "owner_id"),
		ContactEmail: formValue(r, "contact_email"),
		ContactPhone: formValue(r, "contact_phone"),
		UserEmail:    formValue(r, "user_email"),
		UserName:     formValue(r, "user_name"),
	}
	in, err := form.toInput()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	files, err := s.formFiles(r, "images")
	if err != nil {
		s.logger.Error("read listing images failed", "owner_id", in.OwnerID, "error", err)
		s.writeError(w, http.StatusBadRequest, "failed to read images")
		return
	}
	uploads := make([]service.Upload, 0, len(files))
	for _, f := range files {
		mimeType, ok := allowedImageMIME(f.Data)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unsupported image format: "+f.Filename)
			return
		}
		uploads = append(uploads, service.Upload{Filename: f.Filename, MimeType: mimeType, Data: f.Data})
	}

	item, err := s.listings.CreateListing(r.Context(), in, uploads)
	if err != nil {
		s.fail(w, r, err, "Failed to create listing")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": item})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.listings.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "Failed to load item")
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// toInput validates the form and converts its numeric fields.
func (f listingForm) toInput() (service.ListingInput, error) {
	if err := validateStruct(f); err != nil {
		return service.ListingInput{}, err
	}

	in := service.ListingInput{
		Title:       f.Title,
		Category:    f.Category,
		Description: f.Description,
		Location:    f.Location,
		Verified:    f.Verified == "true",
		Reason:      f.Reason,
		OwnerID:     f.OwnerID,
		UserEmail:   f.UserEmail,
		UserName:    f.UserName,
	}

	if f.Price != "" {
		price, err := strconv.ParseFloat(f.Price, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			return in, domain.Invalid("price must be a number")
		}
		in.PricePerDay = price
	}

	score, err := strconv.ParseFloat(f.SafetyScore, 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return in, domain.Invalid("safety_score must be a number")
	}
	in.SafetyScore = int(math.Round(math.Min(math.Max(score, 1), 10)))

	if in.Lat, err = optionalFloat("lat", f.Lat); err != nil {
		return in, err
	}
	if in.Lng, err = optionalFloat("lng", f.Lng); err != nil {
		return in, err
	}

	if f.ContactEmail != "" {
		in.ContactEmail = &f.ContactEmail
	}
	if f.ContactPhone != "" {
		in.ContactPhone = &f.ContactPhone
	}
	return in, nil
}

func optionalFloat(field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.Invalid(field + " must be a number")
	}
	return &v, nil
}
