package model

import "time"

// Trip is a scheduled run of a specific train over a specific route.
// Arrival must be strictly after departure.  Trips are read-only from
// the booking core's perspective: bookings reference trips but never
// modify them.
//
// Fields:
//  ID            – primary key identifier.
//  RouteID       – route the trip runs over.
//  TrainID       – train that operates the trip.
//  DepartureTime – when the trip leaves the source station (UTC).
//  ArrivalTime   – when the trip reaches the destination station (UTC).
//  Train         – the train's layout when loaded alongside the trip;
//                  nil when the row was fetched without a join.
type Trip struct {
	ID            uint64    // trips.id
	RouteID       uint64    // trips.route_id
	TrainID       uint64    // trips.train_id
	DepartureTime time.Time // trips.departure_time
	ArrivalTime   time.Time // trips.arrival_time
	Train         *Train    // joined trains row (optional)
}
