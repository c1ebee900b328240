package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/train-station-reservation/internal/booking"
	"github.com/iliyamo/train-station-reservation/internal/model"
)

// OrderRepo persists orders and their tickets.  It is the storage side
// of the reservation engine (booking.OrderStore): Create is the only
// code path that writes order or ticket rows, and it commits them as a
// single transaction guarded by the (trip_id, cargo, seat) unique key.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create persists an order and all requested tickets atomically.
//
// Inside the transaction the committed tickets of every trip involved
// are read with FOR UPDATE and each request is checked against them, so
// a seat already sold fails fast with booking.SeatTakenError before any
// write happens.  Locked reads cannot see a concurrent transaction's
// uncommitted insert, so the unique key over (trip_id, cargo, seat)
// remains the authoritative guard: a duplicate-key rejection at insert
// time is translated into the same SeatTakenError.  Either every ticket
// commits or the transaction rolls back with no partial order visible.
func (r *OrderRepo) Create(ctx context.Context, userID uint64, reqs []booking.SeatRequest) (*model.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	taken, err := takenSeatsForUpdateTx(ctx, tx, tripIDs(reqs))
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if taken[seatTriple{req.TripID, req.Cargo, req.Seat}] {
			return nil, &booking.SeatTakenError{TripID: req.TripID, Cargo: req.Cargo, Seat: req.Seat}
		}
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO orders (user_id) VALUES (?)`, userID)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	order := &model.Order{ID: uint64(orderID), UserID: userID}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM orders WHERE id = ?`, order.ID).Scan(&order.CreatedAt); err != nil {
		return nil, err
	}

	// Tickets are inserted one at a time so a duplicate-key rejection can
	// name the exact seat that lost the race.
	for _, req := range reqs {
		tres, err := tx.ExecContext(ctx,
			`INSERT INTO tickets (order_id, trip_id, cargo, seat) VALUES (?, ?, ?, ?)`,
			order.ID, req.TripID, req.Cargo, req.Seat)
		if err != nil {
			return nil, ticketInsertError(err, req)
		}
		ticketID, err := tres.LastInsertId()
		if err != nil {
			return nil, err
		}
		order.Tickets = append(order.Tickets, model.Ticket{
			ID:      uint64(ticketID),
			OrderID: order.ID,
			TripID:  req.TripID,
			Cargo:   req.Cargo,
			Seat:    req.Seat,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return order, nil
}

type seatTriple struct {
	trip        uint64
	cargo, seat uint32
}

// ticketInsertError translates a duplicate-key rejection on a ticket
// insert into the seat-taken error reported for a lost booking race.
// Any other storage error passes through unchanged.
func ticketInsertError(err error, req booking.SeatRequest) error {
	if isDuplicateKey(err) {
		return &booking.SeatTakenError{TripID: req.TripID, Cargo: req.Cargo, Seat: req.Seat}
	}
	return err
}

func tripIDs(reqs []booking.SeatRequest) []uint64 {
	seen := make(map[uint64]struct{}, len(reqs))
	ids := make([]uint64, 0, len(reqs))
	for _, req := range reqs {
		if _, ok := seen[req.TripID]; !ok {
			seen[req.TripID] = struct{}{}
			ids = append(ids, req.TripID)
		}
	}
	return ids
}

func takenSeatsForUpdateTx(ctx context.Context, tx *sql.Tx, tripIDs []uint64) (map[seatTriple]bool, error) {
	taken := make(map[seatTriple]bool)
	if len(tripIDs) == 0 {
		return taken, nil
	}
	placeholders := make([]string, len(tripIDs))
	args := make([]interface{}, len(tripIDs))
	for i, id := range tripIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT trip_id, cargo, seat FROM tickets
	      WHERE trip_id IN (` + strings.Join(placeholders, ",") + `) FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key seatTriple
		if err := rows.Scan(&key.trip, &key.cargo, &key.seat); err != nil {
			return nil, err
		}
		taken[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return taken, nil
}

// TripSummary is the trip view embedded in order listings.
type TripSummary struct {
	ID            uint64   `json:"id"`
	Route         string   `json:"route"`
	TrainName     string   `json:"train_name"`
	TrainType     string   `json:"train_type"`
	DepartureTime string   `json:"departure_time"`
	ArrivalTime   string   `json:"arrival_time"`
	Crew          []string `json:"crew"`
}

// OrderTicket is one ticket within an order listing.
type OrderTicket struct {
	ID    uint64      `json:"id"`
	Cargo uint32      `json:"cargo"`
	Seat  uint32      `json:"seat"`
	Trip  TripSummary `json:"trip"`
}

// OrderDetail is the read model returned by ListByUser.
type OrderDetail struct {
	ID        uint64        `json:"id"`
	CreatedAt string        `json:"created_at"`
	Tickets   []OrderTicket `json:"tickets"`
}

// ListByUser returns one page of the user's orders, newest first, with
// full trip detail on every ticket, plus the user's total order count.
// Only committed state is visible here: the queries run outside any
// booking transaction.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]OrderDetail, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM orders WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	details := make([]OrderDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d OrderDetail
		var createdAt time.Time
		if err := rows.Scan(&d.ID, &createdAt); err != nil {
			return nil, 0, err
		}
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		d.Tickets = []OrderTicket{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(details) == 0 {
		return details, total, nil
	}

	// Fetch the tickets of the whole page with their trip detail in one
	// query, then attach them to the owning orders.
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	ticketQ := `SELECT tk.order_id, tk.id, tk.cargo, tk.seat,
	                   t.id, src.name, dst.name, tr.name, tt.name,
	                   t.departure_time, t.arrival_time
	            FROM tickets tk
	            JOIN trips t ON t.id = tk.trip_id
	            JOIN routes ro ON ro.id = t.route_id
	            JOIN stations src ON src.id = ro.source_id
	            JOIN stations dst ON dst.id = ro.destination_id
	            JOIN trains tr ON tr.id = t.train_id
	            JOIN train_types tt ON tt.id = tr.train_type_id
	            WHERE tk.order_id IN (` + strings.Join(placeholders, ",") + `)
	            ORDER BY tk.order_id, tk.cargo, tk.seat`
	trows, err := r.db.QueryContext(ctx, ticketQ, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer trows.Close()
	tripSet := make(map[uint64]struct{})
	for trows.Next() {
		var orderID uint64
		var tk OrderTicket
		var srcName, dstName string
		var dep, arr time.Time
		if err := trows.Scan(&orderID, &tk.ID, &tk.Cargo, &tk.Seat,
			&tk.Trip.ID, &srcName, &dstName, &tk.Trip.TrainName, &tk.Trip.TrainType,
			&dep, &arr); err != nil {
			return nil, 0, err
		}
		tk.Trip.Route = srcName + " - " + dstName
		tk.Trip.DepartureTime = dep.UTC().Format(time.RFC3339)
		tk.Trip.ArrivalTime = arr.UTC().Format(time.RFC3339)
		tk.Trip.Crew = []string{}
		tripSet[tk.Trip.ID] = struct{}{}
		if idx, ok := index[orderID]; ok {
			details[idx].Tickets = append(details[idx].Tickets, tk)
		}
	}
	if err := trows.Err(); err != nil {
		return nil, 0, err
	}
	if len(tripSet) == 0 {
		return details, total, nil
	}

	// Crew names per trip, one query for the page.
	tripArgs := make([]interface{}, 0, len(tripSet))
	tripPH := make([]string, 0, len(tripSet))
	for id := range tripSet {
		tripArgs = append(tripArgs, id)
		tripPH = append(tripPH, "?")
	}
	crewQ := `SELECT tc.trip_id, c.first_name, c.last_name
	          FROM trip_crew tc
	          JOIN crew c ON c.id = tc.crew_id
	          WHERE tc.trip_id IN (` + strings.Join(tripPH, ",") + `)
	          ORDER BY tc.trip_id, c.last_name, c.first_name`
	crows, err := r.db.QueryContext(ctx, crewQ, tripArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer crows.Close()
	crewByTrip := make(map[uint64][]string)
	for crows.Next() {
		var tripID uint64
		var first, last string
		if err := crows.Scan(&tripID, &first, &last); err != nil {
			return nil, 0, err
		}
		crewByTrip[tripID] = append(crewByTrip[tripID], first+" "+last)
	}
	if err := crows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range details {
		for j := range details[i].Tickets {
			if crew, ok := crewByTrip[details[i].Tickets[j].Trip.ID]; ok {
				details[i].Tickets[j].Trip.Crew = crew
			}
		}
	}
	return details, total, nil
}
