package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingInUse     BookingStatus = "in_use"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// HandoverType names the physical exchange a handover code confirms.
type HandoverType string

const (
	HandoverPickup HandoverType = "pickup"
	HandoverReturn HandoverType = "return"
)

// TargetStatus is the booking status a successful scan moves to.
func (t HandoverType) TargetStatus() BookingStatus {
	if t == HandoverReturn {
		return BookingCompleted
	}
	return BookingInUse
}

func (t HandoverType) Valid() bool {
	return t == HandoverPickup || t == HandoverReturn
}

const (
	AIStatusVerified = "verified"
	AIStatusPending  = "pending"
)

type Profile struct {
	ID        string    `db:"id" json:"id"`
	FullName  *string   `db:"full_name" json:"full_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Item struct {
	ID           string     `db:"id" json:"id"`
	OwnerID      string     `db:"owner_id" json:"owner_id"`
	Title        string     `db:"title" json:"title"`
	Category     string     `db:"category" json:"category"`
	Description  string     `db:"description" json:"description"`
	PricePerDay  float64    `db:"price_per_day" json:"price_per_day"`
	AddressText  string     `db:"address_text" json:"address_text"`
	Lat          *float64   `db:"lat" json:"lat"`
	Lng          *float64   `db:"lng" json:"lng"`
	ImageURL     string     `db:"image_url" json:"image_url"`
	Images       StringList `db:"images" json:"images"`
	AIStatus     string     `db:"ai_status" json:"ai_status"`
	AIReason     string     `db:"ai_reason" json:"ai_reason"`
	IsAvailable  bool       `db:"is_available" json:"is_available"`
	ContactEmail *string    `db:"contact_email" json:"contact_email"`
	ContactPhone *string    `db:"contact_phone" json:"contact_phone"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Booking mirrors a bookings row. The handover secret is never serialised.
type Booking struct {
	ID                string        `db:"id" json:"id"`
	ItemID            string        `db:"item_id" json:"item_id"`
	RenterID          string        `db:"renter_id" json:"renter_id"`
	OwnerID           string        `db:"owner_id" json:"owner_id"`
	StartDate         time.Time     `db:"start_date" json:"start_date"`
	EndDate           time.Time     `db:"end_date" json:"end_date"`
	Status            BookingStatus `db:"status" json:"status"`
	HandoverCode      *string       `db:"handover_code" json:"-"`
	HandoverType      *string       `db:"handover_type" json:"handover_type,omitempty"`
	HandoverExpiresAt *time.Time    `db:"handover_expires_at" json:"handover_expires_at,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

type Review struct {
	ID         string    `db:"id" json:"id"`
	ItemID     string    `db:"item_id" json:"item_id"`
	ReviewerID string    `db:"reviewer_id" json:"reviewer_id"`
	BookingID  *string   `db:"booking_id" json:"booking_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StringList is a list of strings persisted as a JSON array in a single column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for string list", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}
