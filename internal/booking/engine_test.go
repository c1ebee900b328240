package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-station-reservation/internal/booking"
	"github.com/iliyamo/train-station-reservation/internal/model"
)

// fakeTripStore serves trips from a map, mirroring the repository's
// not-found behaviour.
type fakeTripStore struct {
	trips map[uint64]*model.Trip
}

func (s *fakeTripStore) GetForBooking(_ context.Context, tripID uint64) (*model.Trip, error) {
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, &booking.TripNotFoundError{TripID: tripID}
	}
	return trip, nil
}

type seatKey struct {
	trip        uint64
	cargo, seat uint32
}

// memOrderStore is an in-memory OrderStore that reproduces the storage
// contract: the whole batch commits or nothing does, and a seat can be
// held by at most one order.  The mutex stands in for the row locks the
// SQL implementation takes, which makes the store safe to hit from many
// goroutines at once.
type memOrderStore struct {
	mu     sync.Mutex
	taken  map[seatKey]bool
	nextID uint64
	orders []*model.Order
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{taken: map[seatKey]bool{}}
}

func (s *memOrderStore) Create(_ context.Context, userID uint64, reqs []booking.SeatRequest) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check the full batch before touching any state.
	for _, r := range reqs {
		if s.taken[seatKey{r.TripID, r.Cargo, r.Seat}] {
			return nil, &booking.SeatTakenError{TripID: r.TripID, Cargo: r.Cargo, Seat: r.Seat}
		}
	}

	s.nextID++
	order := &model.Order{ID: s.nextID, UserID: userID, CreatedAt: time.Now().UTC()}
	for _, r := range reqs {
		s.taken[seatKey{r.TripID, r.Cargo, r.Seat}] = true
		order.Tickets = append(order.Tickets, model.Ticket{
			OrderID: order.ID,
			TripID:  r.TripID,
			Cargo:   r.Cargo,
			Seat:    r.Seat,
		})
	}
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *memOrderStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.taken)
}

func newTestEngine(trains map[uint64]*model.Train) (*booking.Engine, *memOrderStore) {
	trips := &fakeTripStore{trips: map[uint64]*model.Trip{}}
	var id uint64
	for tripID, train := range trains {
		id++
		trips.trips[tripID] = &model.Trip{ID: tripID, TrainID: id, Train: train}
	}
	orders := newMemOrderStore()
	return booking.NewEngine(trips, orders), orders
}

func TestCreateOrder_Success(t *testing.T) {
	engine, orders := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 8, PlacesInCargo: 8},
	})

	order, err := engine.CreateOrder(context.Background(), 42, []booking.SeatRequest{
		{TripID: 1, Cargo: 1, Seat: 1},
	})

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, uint64(42), order.UserID)
	require.Len(t, order.Tickets, 1)
	assert.Equal(t, uint32(1), order.Tickets[0].Cargo)
	assert.Equal(t, uint32(1), order.Tickets[0].Seat)
	assert.Equal(t, 1, orders.ticketCount())
}

func TestCreateOrder_EmptyOrder(t *testing.T) {
	engine, orders := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 8, PlacesInCargo: 8},
	})

	order, err := engine.CreateOrder(context.Background(), 42, nil)

	assert.ErrorIs(t, err, booking.ErrEmptyOrder)
	assert.Nil(t, order)
	assert.Equal(t, 0, orders.ticketCount())
}

func TestCreateOrder_TripNotFound(t *testing.T) {
	engine, orders := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 8, PlacesInCargo: 8},
	})

	_, err := engine.CreateOrder(context.Background(), 42, []booking.SeatRequest{
		{TripID: 99, Cargo: 1, Seat: 1},
	})

	var nf *booking.TripNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, uint64(99), nf.TripID)
	assert.Equal(t, 0, orders.ticketCount())
}

func TestCreateOrder_OutOfRange(t *testing.T) {
	engine, orders := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 8, PlacesInCargo: 8},
	})

	_, err := engine.CreateOrder(context.Background(), 42, []booking.SeatRequest{
		{TripID: 1, Cargo: 9, Seat: 6},
	})

	var oor *booking.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "cargo", oor.Field)
	assert.Equal(t, 0, orders.ticketCount())
}

func TestCreateOrder_FirstFailureWins(t *testing.T) {
	engine, _ := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 5, PlacesInCargo: 5},
	})

	// Both requests are invalid; the error cites the first one.
	_, err := engine.CreateOrder(context.Background(), 42, []booking.SeatRequest{
		{TripID: 1, Cargo: 3, Seat: 9},
		{TripID: 1, Cargo: 9, Seat: 3},
	})

	var oor *booking.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "seat", oor.Field)
	assert.Equal(t, uint32(9), oor.Value)
}

func TestCreateOrder_SeatTaken(t *testing.T) {
	engine, orders := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 5, PlacesInCargo: 5},
	})

	_, err := engine.CreateOrder(context.Background(), 1, []booking.SeatRequest{
		{TripID: 1, Cargo: 3, Seat: 3},
	})
	require.NoError(t, err)

	_, err = engine.CreateOrder(context.Background(), 2, []booking.SeatRequest{
		{TripID: 1, Cargo: 3, Seat: 3},
	})

	var taken *booking.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, uint64(1), taken.TripID)
	assert.Equal(t, uint32(3), taken.Cargo)
	assert.Equal(t, uint32(3), taken.Seat)
	assert.Equal(t, 1, orders.ticketCount())
}

func TestCreateOrder_InvalidRequestPersistsNothing(t *testing.T) {
	engine, orders := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 5, PlacesInCargo: 5},
	})

	// One valid and one out-of-range seat: the whole order is rejected.
	_, err := engine.CreateOrder(context.Background(), 42, []booking.SeatRequest{
		{TripID: 1, Cargo: 1, Seat: 1},
		{TripID: 1, Cargo: 1, Seat: 6},
	})

	var oor *booking.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 0, orders.ticketCount())
}

func TestCreateOrder_TakenSeatRejectsWholeBatch(t *testing.T) {
	engine, orders := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 5, PlacesInCargo: 5},
	})

	_, err := engine.CreateOrder(context.Background(), 1, []booking.SeatRequest{
		{TripID: 1, Cargo: 2, Seat: 2},
	})
	require.NoError(t, err)

	// Second order wants one free seat and one taken seat: neither commits.
	_, err = engine.CreateOrder(context.Background(), 2, []booking.SeatRequest{
		{TripID: 1, Cargo: 1, Seat: 1},
		{TripID: 1, Cargo: 2, Seat: 2},
	})

	var taken *booking.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, 1, orders.ticketCount())
}

func TestCreateOrder_ConcurrentRequestsForSameSeat(t *testing.T) {
	engine, orders := newTestEngine(map[uint64]*model.Train{
		1: {CargoNum: 5, PlacesInCargo: 5},
	})

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.CreateOrder(context.Background(), uint64(i+1), []booking.SeatRequest{
				{TripID: 1, Cargo: 4, Seat: 4},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	lostRace := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var taken *booking.SeatTakenError
		if errors.As(err, &taken) {
			lostRace++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, lostRace)
	assert.Equal(t, 1, orders.ticketCount())
}
