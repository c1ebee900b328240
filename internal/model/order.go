package model

import "time"

// Order groups one or more tickets bought by one user in a single
// atomic transaction.  An order always contains at least one ticket;
// an order row without tickets is never persisted.  Orders are
// immutable after creation apart from cascading deletion.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who placed the order.
//  CreatedAt – server-assigned creation timestamp.
//  Tickets   – the tickets committed with this order.
type Order struct {
	ID        uint64    // orders.id
	UserID    uint64    // orders.user_id
	CreatedAt time.Time // orders.created_at
	Tickets   []Ticket  // owned tickets (cascade-deleted with the order)
}

// Ticket is a single committed seat reservation: one seat in one cargo
// on one trip.  The (trip, cargo, seat) triple is unique across all
// tickets, enforced by the uq_ticket_trip_cargo_seat key.  Tickets are
// created only as part of an order commit and never updated.
//
// Fields:
//  ID      – primary key identifier.
//  OrderID – owning order (cascade-deleted with it).
//  TripID  – trip the seat is reserved on (cascade-deleted with it).
//  Cargo   – 1-indexed cargo (car) number, within [1, train.cargo_num].
//  Seat    – 1-indexed seat number, within [1, train.places_in_cargo].
type Ticket struct {
	ID      uint64 // tickets.id
	OrderID uint64 // tickets.order_id
	TripID  uint64 // tickets.trip_id
	Cargo   uint32 // tickets.cargo
	Seat    uint32 // tickets.seat
}
