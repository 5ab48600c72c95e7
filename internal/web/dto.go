package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
	"github.com/Dhruvp18/pharma-grid-landing/internal/service"
)

const maxJSONBody = 1 << 20 // 1 MB

var validate = newValidator()

// newValidator reports fields by their JSON names so messages match the
// request body the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// flexID accepts a JSON string or number. The web client sends booking ids
// and scanned codes either way depending on where they came from.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or a number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type generateHandoverRequest struct {
	BookingID    flexID `json:"bookingId" validate:"required"`
	HandoverType string `json:"handoverType" validate:"omitempty,oneof=pickup return"`
}

type scanHandoverRequest struct {
	BookingID    flexID `json:"bookingId" validate:"required"`
	ScannedCode  flexID `json:"scannedCode" validate:"required"`
	HandoverType string `json:"handoverType" validate:"omitempty,oneof=pickup return"`
}

type createBookingRequest struct {
	ItemID    string `json:"item_id" validate:"required"`
	RenterID  string `json:"renter_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

type createReviewRequest struct {
	ItemID     string  `json:"item_id" validate:"required"`
	ReviewerID string  `json:"reviewer_id" validate:"required"`
	BookingID  *string `json:"booking_id" validate:"omitempty,min=1"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Comment    string  `json:"comment" validate:"max=2000"`
}

type chatRequest struct {
	Message string                 `json:"message" validate:"required"`
	Context *service.DeviceContext `json:"context"`
}

// listingForm holds the text fields of a create-listing multipart form.
type listingForm struct {
	Title        string `json:"title" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Price        string `json:"price"`
	Location     string `json:"location" validate:"required"`
	Lat          string `json:"lat"`
	Lng          string `json:"lng"`
	Verified     string `json:"verified" validate:"required"`
	SafetyScore  string `json:"safety_score" validate:"required"`
	Reason       string `json:"reason"`
	OwnerID      string `json:"owner_id" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone"`
	UserEmail    string `json:"user_email"`
	UserName     string `json:"user_name"`
}

// decodeJSON reads a JSON request body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid("invalid JSON body")
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return domain.Invalid(validationMessage(fieldErrs[0]))
	}
	return domain.Invalid(err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing " + fe.Field()
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max":
		return fmt.Sprintf("%s is out of range", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field, raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.Invalid(field + " must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}
