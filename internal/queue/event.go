// Package queue defines message payloads exchanged over the message broker
// plus the publisher and consumer for the order.created queue.
package queue

// TicketRef identifies one booked seat inside an event payload.
type TicketRef struct {
	Trip  uint64 `json:"trip"`
	Cargo uint32 `json:"cargo"`
	Seat  uint32 `json:"seat"`
}

// OrderCreatedEvent is published after an order commits.  It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type OrderCreatedEvent struct {
	OrderID   uint64      `json:"order_id"`
	UserID    uint64      `json:"user_id"`
	Tickets   []TicketRef `json:"tickets"`
	CreatedAt string      `json:"created_at"`
}
