// Package booking implements the reservation core: seat validation,
// capacity derivation and the transactional order engine.  Handlers map
// the error types defined here onto field-keyed HTTP responses.
package booking

import (
	"errors"
	"fmt"
)

// ErrEmptyOrder is returned when an order is submitted with zero ticket
// requests.  User-correctable; renders as HTTP 400.
var ErrEmptyOrder = errors.New("order must contain at least one ticket")

// ErrCapacityExceeded signals that a trip's committed ticket count is
// larger than its train's capacity.  Given the seat-range and uniqueness
// invariants this should be impossible; it indicates corrupted state and
// must surface as a generic server failure, never be corrected silently.
var ErrCapacityExceeded = errors.New("ticket count exceeds train capacity")

// OutOfRangeError reports a cargo or seat value outside the train's
// physical layout.  Field names the offending request field ("cargo" or
// "seat") and Max the inclusive upper bound for it on this train.
type OutOfRangeError struct {
	Field string
	Value uint32
	Max   uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s must be within available range [1, %d], got %d", e.Field, e.Max, e.Value)
}

// SeatTakenError reports that the requested seat is already reserved on
// the trip.  A caller that loses a booking race receives the same error
// as one requesting a long-committed seat.
type SeatTakenError struct {
	TripID uint64
	Cargo  uint32
	Seat   uint32
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat %d in cargo %d is already taken on trip %d", e.Seat, e.Cargo, e.TripID)
}

// TripNotFoundError reports a seat request referencing a trip that does
// not exist.  Distinguishable from validation errors; renders as 404.
type TripNotFoundError struct {
	TripID uint64
}

func (e *TripNotFoundError) Error() string {
	return fmt.Sprintf("trip %d does not exist", e.TripID)
}
