package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
	"github.com/Dhruvp18/pharma-grid-landing/internal/limiter"
)

const (
	codeMin   = 100000
	codeRange = 900000
)

// Scan results reported to the Recorder.
const (
	scanSuccess     = "success"
	scanInvalid     = "invalid_code"
	scanExpired     = "expired"
	scanNotFound    = "not_found"
	scanRateLimited = "rate_limited"
)

// NewHandoverCode returns a uniformly random code in 100000..999999.
func NewHandoverCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate handover code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

type HandoverService struct {
	bookings bookingRepository
	attempts limiter.Limiter
	ttl      time.Duration
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
	newCode  func() (string, error)
}

func NewHandoverService(bookings bookingRepository, attempts limiter.Limiter, ttl time.Duration, recorder Recorder, logger *slog.Logger) *HandoverService {
	return &HandoverService{
		bookings: bookings,
		attempts: attempts,
		ttl:      ttl,
		recorder: recorderOrNop(recorder),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newCode:  NewHandoverCode,
	}
}

func parseHandoverType(raw string) (domain.HandoverType, error) {
	if raw == "" {
		return domain.HandoverPickup, nil
	}
	t := domain.HandoverType(raw)
	if !t.Valid() {
		return "", domain.Invalid("handoverType must be pickup or return")
	}
	return t, nil
}

// canIssue reports whether a code of type t may be issued for a booking in status.
func canIssue(status domain.BookingStatus, t domain.HandoverType) bool {
	if t == domain.HandoverReturn {
		return status == domain.BookingInUse
	}
	switch status {
	case domain.BookingInUse, domain.BookingCompleted, domain.BookingCancelled:
		return false
	}
	return true
}

// Generate issues a fresh handover code for bookingID, replacing any earlier
// one. handoverType defaults to pickup.
func (s *HandoverService) Generate(ctx context.Context, bookingID, handoverType string) (string, error) {
	if bookingID == "" {
		return "", domain.Invalid("Missing bookingId")
	}
	typ, err := parseHandoverType(handoverType)
	if err != nil {
		return "", err
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking == nil {
		return "", domain.NotFound("Booking")
	}
	if !canIssue(booking.Status, typ) {
		return "", fmt.Errorf("cannot issue a %s code for a %s booking: %w", typ, booking.Status, domain.ErrConflict)
	}

	code, err := s.newCode()
	if err != nil {
		return "", err
	}
	now := s.now()
	ok, err := s.bookings.SetHandoverCode(ctx, bookingID, booking.Status, code, typ, now.Add(s.ttl), now)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("booking %s changed while issuing a code: %w", bookingID, domain.ErrConflict)
	}

	s.logger.Info("handover code issued", "booking_id", bookingID, "type", typ, "expires_in", s.ttl)
	return code, nil
}

// Scan consumes a handover code and advances the booking. handoverType may be
// empty, in which case the type the code was issued for is used.
func (s *HandoverService) Scan(ctx context.Context, bookingID, code, handoverType string) (domain.BookingStatus, error) {
	if bookingID == "" {
		return "", domain.Invalid("Missing bookingId")
	}
	if handoverType != "" {
		if _, err := parseHandoverType(handoverType); err != nil {
			return "", err
		}
	}

	allowed, err := s.attempts.Allow(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("failed to check scan attempts: %w", err)
	}
	if !allowed {
		s.recorder.HandoverScan(scanRateLimited)
		s.logger.Warn("handover scan rate limited", "booking_id", bookingID)
		return "", fmt.Errorf("booking %s: %w", bookingID, domain.ErrTooManyAttempts)
	}

	typ := domain.HandoverType(handoverType)
	if typ == "" {
		booking, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return "", err
		}
		if booking == nil {
			s.recorder.HandoverScan(scanNotFound)
			return "", domain.NotFound("Booking")
		}
		if booking.HandoverType == nil {
			s.recorder.HandoverScan(scanInvalid)
			return "", domain.ErrInvalidCode
		}
		typ = domain.HandoverType(*booking.HandoverType)
	}

	now := s.now()
	status := typ.TargetStatus()
	ok, err := s.bookings.CompleteHandover(ctx, bookingID, code, typ, status, now)
	if err != nil {
		return "", err
	}
	if ok {
		s.recorder.HandoverScan(scanSuccess)
		s.logger.Info("handover complete", "booking_id", bookingID, "type", typ, "status", status)
		return status, nil
	}

	return "", s.scanFailure(ctx, bookingID, code, typ, now)
}

// scanFailure works out why a conditional update matched nothing.
func (s *HandoverService) scanFailure(ctx context.Context, bookingID, code string, typ domain.HandoverType, now time.Time) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		s.recorder.HandoverScan(scanNotFound)
		return domain.NotFound("Booking")
	}
	if booking.HandoverCode != nil && *booking.HandoverCode == code &&
		booking.HandoverType != nil && *booking.HandoverType == string(typ) &&
		booking.HandoverExpiresAt != nil && !booking.HandoverExpiresAt.After(now) {
		s.recorder.HandoverScan(scanExpired)
		s.logger.Info("handover code expired", "booking_id", bookingID)
		return domain.ErrCodeExpired
	}

	s.recorder.HandoverScan(scanInvalid)
	s.logger.Info("handover code mismatch", "booking_id", bookingID)
	return domain.ErrInvalidCode
}

// SweepExpired clears codes that can no longer be redeemed.
func (s *HandoverService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.bookings.ClearExpiredCodes(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.recorder.CodesCleared(n)
	if n > 0 {
		s.logger.Info("expired handover codes cleared", "count", n)
	}
	return n, nil
}
