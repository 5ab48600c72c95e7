package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
	"github.com/Dhruvp18/pharma-grid-landing/internal/limiter"
)

type handoverFixture struct {
	svc     *HandoverService
	stores  *testStores
	rec     *recordingRecorder
	clock   time.Time
	booking *domain.Booking
}

func newHandoverFixture(t *testing.T, status domain.BookingStatus, attempts int) *handoverFixture {
	t.Helper()
	f := &handoverFixture{
		stores: newTestStores(t),
		rec:    &recordingRecorder{},
		clock:  time.Now().UTC().Truncate(time.Second),
	}
	ctx := context.Background()

	require.NoError(t, f.stores.profiles.Ensure(ctx, "owner-1", nil))
	item, err := f.stores.items.Create(ctx, &domain.Item{OwnerID: "owner-1", Title: "Nebulizer", Category: "Respiratory", IsAvailable: true})
	require.NoError(t, err)
	f.booking, err = f.stores.bookings.Create(ctx, &domain.Booking{
		ItemID:    item.ID,
		RenterID:  "renter-1",
		OwnerID:   "owner-1",
		StartDate: f.clock,
		EndDate:   f.clock.AddDate(0, 0, 3),
		Status:    status,
	})
	require.NoError(t, err)

	f.svc = NewHandoverService(f.stores.bookings, limiter.NewMemory(attempts, time.Minute), 15*time.Minute, f.rec, discardLogger())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestNewHandoverCode(t *testing.T) {
	six := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 200; i++ {
		code, err := NewHandoverCode()
		require.NoError(t, err)
		assert.Regexp(t, six, code)
	}
}

func TestHandoverGenerate(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)
	ctx := context.Background()

	code, err := f.svc.Generate(ctx, f.booking.ID, "")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	b, err := f.stores.bookings.GetByID(ctx, f.booking.ID)
	require.NoError(t, err)
	require.NotNil(t, b.HandoverCode)
	assert.Equal(t, code, *b.HandoverCode)
	assert.Equal(t, "pickup", *b.HandoverType)
	assert.WithinDuration(t, f.clock.Add(15*time.Minute), *b.HandoverExpiresAt, time.Second)
}

func TestHandoverGenerate_ReplacesEarlierCode(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)
	ctx := context.Background()
	codes := []string{"111111", "222222"}
	f.svc.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	_, err := f.svc.Generate(ctx, f.booking.ID, "pickup")
	require.NoError(t, err)
	_, err = f.svc.Generate(ctx, f.booking.ID, "pickup")
	require.NoError(t, err)

	_, err = f.svc.Scan(ctx, f.booking.ID, "111111", "pickup")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	status, err := f.svc.Scan(ctx, f.booking.ID, "222222", "pickup")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingInUse, status)
}

func TestHandoverGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.BookingStatus
		typ     string
		id      string
		wantErr error
	}{
		{name: "unknown booking", status: domain.BookingConfirmed, id: "missing", wantErr: domain.ErrNotFound},
		{name: "missing booking id", status: domain.BookingConfirmed, id: "-", wantErr: domain.ErrValidation},
		{name: "bad handover type", status: domain.BookingConfirmed, typ: "delivery", wantErr: domain.ErrValidation},
		{name: "pickup of cancelled booking", status: domain.BookingCancelled, typ: "pickup", wantErr: domain.ErrConflict},
		{name: "pickup of item already in use", status: domain.BookingInUse, typ: "pickup", wantErr: domain.ErrConflict},
		{name: "return before pickup", status: domain.BookingConfirmed, typ: "return", wantErr: domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandoverFixture(t, tt.status, 5)
			id := f.booking.ID
			switch tt.id {
			case "-":
				id = ""
			case "":
			default:
				id = tt.id
			}

			_, err := f.svc.Generate(context.Background(), id, tt.typ)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestHandoverScan_PickupThenReturn(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)
	ctx := context.Background()

	code, err := f.svc.Generate(ctx, f.booking.ID, "pickup")
	require.NoError(t, err)
	status, err := f.svc.Scan(ctx, f.booking.ID, code, "pickup")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingInUse, status)

	b, err := f.stores.bookings.GetByID(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingInUse, b.Status)
	assert.Nil(t, b.HandoverCode)

	code, err = f.svc.Generate(ctx, f.booking.ID, "return")
	require.NoError(t, err)
	status, err = f.svc.Scan(ctx, f.booking.ID, code, "")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, status)

	assert.Equal(t, []string{scanSuccess, scanSuccess}, f.rec.scans)
}

func TestHandoverScan_CodeIsSingleUse(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)
	ctx := context.Background()

	code, err := f.svc.Generate(ctx, f.booking.ID, "pickup")
	require.NoError(t, err)
	_, err = f.svc.Scan(ctx, f.booking.ID, code, "pickup")
	require.NoError(t, err)

	_, err = f.svc.Scan(ctx, f.booking.ID, code, "pickup")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestHandoverScan_Mismatch(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)
	ctx := context.Background()
	f.svc.newCode = func() (string, error) { return "123456", nil }

	_, err := f.svc.Generate(ctx, f.booking.ID, "pickup")
	require.NoError(t, err)

	_, err = f.svc.Scan(ctx, f.booking.ID, "654321", "pickup")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	_, err = f.svc.Scan(ctx, f.booking.ID, "123456", "return")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode), "type must match the issued code")

	b, err := f.stores.bookings.GetByID(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, []string{scanInvalid, scanInvalid}, f.rec.scans)
}

func TestHandoverScan_NoCodeIssued(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)

	_, err := f.svc.Scan(context.Background(), f.booking.ID, "123456", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestHandoverScan_UnknownBooking(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)
	ctx := context.Background()

	_, err := f.svc.Scan(ctx, "missing", "123456", "pickup")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.svc.Scan(ctx, "missing", "123456", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestHandoverScan_Expired(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)
	ctx := context.Background()

	code, err := f.svc.Generate(ctx, f.booking.ID, "pickup")
	require.NoError(t, err)
	f.clock = f.clock.Add(16 * time.Minute)

	_, err = f.svc.Scan(ctx, f.booking.ID, code, "pickup")
	assert.True(t, errors.Is(err, domain.ErrCodeExpired))
	assert.Equal(t, []string{scanExpired}, f.rec.scans)
}

func TestHandoverScan_TooManyAttempts(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 3)
	ctx := context.Background()

	code, err := f.svc.Generate(ctx, f.booking.ID, "pickup")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Scan(ctx, f.booking.ID, "000000", "pickup")
		require.True(t, errors.Is(err, domain.ErrInvalidCode))
	}

	_, err = f.svc.Scan(ctx, f.booking.ID, code, "pickup")
	assert.True(t, errors.Is(err, domain.ErrTooManyAttempts), "even the right code is refused once the budget is spent")
	assert.Equal(t, scanRateLimited, f.rec.scans[len(f.rec.scans)-1])
}

func TestHandoverScan_BadType(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)

	_, err := f.svc.Scan(context.Background(), f.booking.ID, "123456", "delivery")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestHandoverSweepExpired(t *testing.T) {
	f := newHandoverFixture(t, domain.BookingConfirmed, 5)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, f.booking.ID, "pickup")
	require.NoError(t, err)

	n, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "code is still valid")

	f.clock = f.clock.Add(20 * time.Minute)
	n, err = f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), f.rec.codesCleared)

	b, err := f.stores.bookings.GetByID(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Nil(t, b.HandoverCode)
}
