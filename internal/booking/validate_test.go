package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-station-reservation/internal/booking"
	"github.com/iliyamo/train-station-reservation/internal/model"
)

func TestValidateSeat_CargoOutOfRange(t *testing.T) {
	train := &model.Train{CargoNum: 8, PlacesInCargo: 8}

	err := booking.ValidateSeat(9, 6, train)

	var oor *booking.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "cargo", oor.Field)
	assert.Equal(t, uint32(9), oor.Value)
	assert.Equal(t, uint32(8), oor.Max)
}

func TestValidateSeat_SeatOutOfRange(t *testing.T) {
	train := &model.Train{CargoNum: 8, PlacesInCargo: 8}

	err := booking.ValidateSeat(5, 15, train)

	var oor *booking.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "seat", oor.Field)
	assert.Equal(t, uint32(15), oor.Value)
	assert.Equal(t, uint32(8), oor.Max)
}

func TestValidateSeat_ZeroIsOutOfRange(t *testing.T) {
	train := &model.Train{CargoNum: 3, PlacesInCargo: 4}

	err := booking.ValidateSeat(0, 1, train)
	var oor *booking.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "cargo", oor.Field)

	err = booking.ValidateSeat(1, 0, train)
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "seat", oor.Field)
}

func TestValidateSeat_BoundsAreInclusive(t *testing.T) {
	train := &model.Train{CargoNum: 3, PlacesInCargo: 4}

	assert.NoError(t, booking.ValidateSeat(1, 1, train))
	assert.NoError(t, booking.ValidateSeat(3, 4, train))
}

func TestValidateSeat_ChecksCargoBeforeSeat(t *testing.T) {
	train := &model.Train{CargoNum: 2, PlacesInCargo: 2}

	// Both coordinates are invalid; cargo is reported first.
	err := booking.ValidateSeat(5, 5, train)

	var oor *booking.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "cargo", oor.Field)
}
