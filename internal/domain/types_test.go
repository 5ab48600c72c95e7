package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoverTypeTargetStatus(t *testing.T) {
	assert.Equal(t, BookingInUse, HandoverPickup.TargetStatus())
	assert.Equal(t, BookingCompleted, HandoverReturn.TargetStatus())
	assert.True(t, HandoverPickup.Valid())
	assert.True(t, HandoverReturn.Valid())
	assert.False(t, HandoverType("dropoff").Valid())
}

func TestStringListRoundTrip(t *testing.T) {
	v, err := StringList{"a.jpg", "b.jpg"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a.jpg","b.jpg"]`, v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["a.jpg"]`)))
	assert.Equal(t, StringList{"a.jpg"}, l)
}

func TestStringListNilAndEmpty(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l StringList
	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	require.NoError(t, l.Scan("null"))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(42))
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create listing: %w", Invalid("Missing title"))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "create listing: Missing title", err.Error())

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Missing title", ve.Message)
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	err := NotFound("Booking")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Booking not found", err.Error())
}
