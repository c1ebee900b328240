package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/train-station-reservation/internal/booking"
	"github.com/iliyamo/train-station-reservation/internal/model"
)

func TestTrainCapacity(t *testing.T) {
	train := &model.Train{CargoNum: 5, PlacesInCargo: 15}

	assert.Equal(t, uint32(75), train.Capacity())
}

func TestTicketsAvailable(t *testing.T) {
	train := &model.Train{CargoNum: 5, PlacesInCargo: 5}

	free, err := booking.TicketsAvailable(train, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(25), free)

	free, err = booking.TicketsAvailable(train, 24)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), free)

	free, err = booking.TicketsAvailable(train, 25)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), free)
}

func TestTicketsAvailable_CountAboveCapacity(t *testing.T) {
	train := &model.Train{CargoNum: 2, PlacesInCargo: 2}

	_, err := booking.TicketsAvailable(train, 5)

	assert.ErrorIs(t, err, booking.ErrCapacityExceeded)
}
