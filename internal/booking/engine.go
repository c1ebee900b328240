package booking

import (
	"context"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// SeatRequest identifies one desired seat: a trip plus the (cargo, seat)
// coordinate on that trip's train.
type SeatRequest struct {
	TripID uint64 `json:"trip"`
	Cargo  uint32 `json:"cargo"`
	Seat   uint32 `json:"seat"`
}

// TripStore resolves trips for booking.  Implementations must return the
// trip with its train layout attached, and a TripNotFoundError when the
// trip does not exist.
type TripStore interface {
	GetForBooking(ctx context.Context, tripID uint64) (*model.Trip, error)
}

// OrderStore commits validated orders.  Create must persist the order
// and all its tickets as a single atomic unit and guarantee that no two
// orders ever hold the same (trip, cargo, seat): when another committed
// order already holds a requested seat, including one committed by a
// concurrent transaction, it must fail with a SeatTakenError and
// persist nothing.  Create may block while acquiring the transactional
// write that backs this guarantee.
type OrderStore interface {
	Create(ctx context.Context, userID uint64, reqs []SeatRequest) (*model.Order, error)
}

// Engine is the reservation engine: the only component that creates
// orders and tickets.  It validates every seat request against the
// trip's train layout before handing the batch to the order store for
// an all-or-nothing commit.  Stateless and safe for concurrent use.
type Engine struct {
	trips  TripStore
	orders OrderStore
}

// NewEngine constructs an Engine; both stores are required.
func NewEngine(trips TripStore, orders OrderStore) *Engine {
	if trips == nil || orders == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{trips: trips, orders: orders}
}

// CreateOrder books all requested seats for the user, or none of them.
//
// Requests are validated sequentially in the order supplied and the
// first failure aborts the whole order: unknown trip, then cargo range,
// then seat range.  Seat occupancy is checked by the order store inside
// its transaction, so the result reflects transaction-consistent state;
// of two concurrent calls requesting the same seat at most one succeeds
// and the other fails with a SeatTakenError.  On success the returned
// order carries its server-assigned id, creation time and tickets.
func (e *Engine) CreateOrder(ctx context.Context, userID uint64, reqs []SeatRequest) (*model.Order, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, req := range reqs {
		trip, err := e.trips.GetForBooking(ctx, req.TripID)
		if err != nil {
			return nil, err
		}
		if err := ValidateSeat(req.Cargo, req.Seat, trip.Train); err != nil {
			return nil, err
		}
	}
	return e.orders.Create(ctx, userID, reqs)
}
