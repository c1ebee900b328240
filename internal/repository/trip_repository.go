package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/train-station-reservation/internal/booking"
	"github.com/iliyamo/train-station-reservation/internal/model"
)

// TripRepo provides persistence for trips and their crew assignments.
// It also serves as the booking engine's trip source (booking.TripStore).
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo returns a TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// TripListItem is the read model for trip listings.  TicketsAvailable
// is derived in bulk from the train layout and the committed ticket
// count, one grouped query for the whole page rather than one query per
// trip.
type TripListItem struct {
	ID               uint64   `json:"id"`
	Route            string   `json:"route"`
	DepartureTime    string   `json:"departure_time"`
	ArrivalTime      string   `json:"arrival_time"`
	TrainName        string   `json:"train_name"`
	TrainType        string   `json:"train_type"`
	TrainCargoNum    uint32   `json:"train_cargo_num"`
	TrainCapacity    uint32   `json:"train_capacity"`
	TicketsAvailable int64    `json:"tickets_available"`
	Crew             []string `json:"crew"`
}

// TripFilter narrows List results.  DepartureDate matches the calendar
// date of departure (YYYY-MM-DD); Route matches either station name as
// a case-insensitive substring.
type TripFilter struct {
	DepartureDate string
	Route         string
}

// CrewDetail is the read model for crew members embedded in the trip
// detail view.
type CrewDetail struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

// SeatCoord is one taken (cargo, seat) coordinate on a trip.
type SeatCoord struct {
	Cargo uint32 `json:"cargo"`
	Seat  uint32 `json:"seat"`
}

// TripDetail is the full trip view: route and train detail, assigned
// crew, every seat already taken and the remaining seat count derived
// from them.
type TripDetail struct {
	ID               uint64       `json:"id"`
	Route            RouteDetail  `json:"route"`
	Train            TrainDetail  `json:"train"`
	Crew             []CrewDetail `json:"crew"`
	DepartureTime    string       `json:"departure_time"`
	ArrivalTime      string       `json:"arrival_time"`
	TicketsAvailable int64        `json:"tickets_available"`
	TakenPlaces      []SeatCoord  `json:"taken_places"`
}

// List returns trips matching the filter ordered by departure time.
// The committed ticket count per trip is aggregated in the same query;
// a count exceeding the train's capacity is reported as an error (it
// violates the seat invariants and must not be rendered as a negative
// availability).
func (r *TripRepo) List(ctx context.Context, filter TripFilter) ([]TripListItem, error) {
	q := `SELECT t.id, src.name, dst.name, t.departure_time, t.arrival_time,
	             tr.name, tt.name, tr.cargo_num, tr.places_in_cargo, COUNT(tk.id)
	      FROM trips t
	      JOIN routes r ON r.id = t.route_id
	      JOIN stations src ON src.id = r.source_id
	      JOIN stations dst ON dst.id = r.destination_id
	      JOIN trains tr ON tr.id = t.train_id
	      JOIN train_types tt ON tt.id = tr.train_type_id
	      LEFT JOIN tickets tk ON tk.trip_id = t.id`
	var conds []string
	var args []interface{}
	if filter.DepartureDate != "" {
		conds = append(conds, "DATE(t.departure_time) = ?")
		args = append(args, filter.DepartureDate)
	}
	if filter.Route != "" {
		pattern := "%" + strings.ToLower(filter.Route) + "%"
		conds = append(conds, "(LOWER(src.name) LIKE ? OR LOWER(dst.name) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += ` GROUP BY t.id, src.name, dst.name, t.departure_time, t.arrival_time,
	               tr.name, tt.name, tr.cargo_num, tr.places_in_cargo
	       ORDER BY t.departure_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]TripListItem, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var it TripListItem
		var srcName, dstName string
		var dep, arr time.Time
		var placesInCargo uint32
		var ticketCount int64
		if err := rows.Scan(&it.ID, &srcName, &dstName, &dep, &arr,
			&it.TrainName, &it.TrainType, &it.TrainCargoNum, &placesInCargo, &ticketCount); err != nil {
			return nil, err
		}
		it.Route = srcName + " - " + dstName
		it.DepartureTime = dep.UTC().Format(time.RFC3339)
		it.ArrivalTime = arr.UTC().Format(time.RFC3339)
		train := model.Train{CargoNum: it.TrainCargoNum, PlacesInCargo: placesInCargo}
		it.TrainCapacity = train.Capacity()
		available, err := booking.TicketsAvailable(&train, ticketCount)
		if err != nil {
			return nil, fmt.Errorf("trip %d: %w", it.ID, err)
		}
		it.TicketsAvailable = available
		it.Crew = []string{}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	// Populate crew names for the whole page in a single query.
	ids := make([]interface{}, 0, len(items))
	placeholders := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
		placeholders = append(placeholders, "?")
	}
	crewQ := `SELECT tc.trip_id, c.first_name, c.last_name
	          FROM trip_crew tc
	          JOIN crew c ON c.id = tc.crew_id
	          WHERE tc.trip_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY tc.trip_id, c.last_name, c.first_name`
	crows, err := r.db.QueryContext(ctx, crewQ, ids...)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var tripID uint64
		var first, last string
		if err := crows.Scan(&tripID, &first, &last); err != nil {
			return nil, err
		}
		if idx, ok := index[tripID]; ok {
			items[idx].Crew = append(items[idx].Crew, first+" "+last)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetDetail returns the full view of a single trip, including every
// taken seat ordered by (cargo, seat) for deterministic rendering.
// Returns sql.ErrNoRows when the trip does not exist.
func (r *TripRepo) GetDetail(ctx context.Context, id uint64) (*TripDetail, error) {
	const q = `SELECT t.id, t.departure_time, t.arrival_time,
	                  r.id, src.name, dst.name, r.distance,
	                  tr.id, tr.name, tr.cargo_num, tr.places_in_cargo, tt.name
	           FROM trips t
	           JOIN routes r ON r.id = t.route_id
	           JOIN stations src ON src.id = r.source_id
	           JOIN stations dst ON dst.id = r.destination_id
	           JOIN trains tr ON tr.id = t.train_id
	           JOIN train_types tt ON tt.id = tr.train_type_id
	           WHERE t.id = ?`
	var det TripDetail
	var dep, arr time.Time
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &dep, &arr,
		&det.Route.ID, &det.Route.Source, &det.Route.Destination, &det.Route.Distance,
		&det.Train.ID, &det.Train.Name, &det.Train.CargoNum, &det.Train.PlacesInCargo, &det.Train.TrainType,
	); err != nil {
		return nil, err
	}
	det.DepartureTime = dep.UTC().Format(time.RFC3339)
	det.ArrivalTime = arr.UTC().Format(time.RFC3339)
	det.Train.Capacity = det.Train.CargoNum * det.Train.PlacesInCargo

	det.Crew = make([]CrewDetail, 0)
	const crewQ = `SELECT c.id, c.first_name, c.last_name
	               FROM trip_crew tc
	               JOIN crew c ON c.id = tc.crew_id
	               WHERE tc.trip_id = ?
	               ORDER BY c.last_name, c.first_name`
	crows, err := r.db.QueryContext(ctx, crewQ, id)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var m CrewDetail
		if err := crows.Scan(&m.ID, &m.FirstName, &m.LastName); err != nil {
			return nil, err
		}
		m.FullName = m.FirstName + " " + m.LastName
		det.Crew = append(det.Crew, m)
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}

	det.TakenPlaces = make([]SeatCoord, 0)
	const takenQ = `SELECT cargo, seat FROM tickets WHERE trip_id = ? ORDER BY cargo, seat`
	trows, err := r.db.QueryContext(ctx, takenQ, id)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var sc SeatCoord
		if err := trows.Scan(&sc.Cargo, &sc.Seat); err != nil {
			return nil, err
		}
		det.TakenPlaces = append(det.TakenPlaces, sc)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}

	train := model.Train{CargoNum: det.Train.CargoNum, PlacesInCargo: det.Train.PlacesInCargo}
	available, err := booking.TicketsAvailable(&train, int64(len(det.TakenPlaces)))
	if err != nil {
		return nil, fmt.Errorf("trip %d: %w", det.ID, err)
	}
	det.TicketsAvailable = available
	return &det, nil
}

// GetForBooking resolves a trip with its train layout attached for the
// reservation engine.  The trip row is read-only to bookings, so no
// locking is taken here.
func (r *TripRepo) GetForBooking(ctx context.Context, tripID uint64) (*model.Trip, error) {
	const q = `SELECT t.id, t.route_id, t.train_id, t.departure_time, t.arrival_time,
	                  tr.id, tr.name, tr.cargo_num, tr.places_in_cargo, tr.train_type_id
	           FROM trips t
	           JOIN trains tr ON tr.id = t.train_id
	           WHERE t.id = ?`
	var trip model.Trip
	var train model.Train
	err := r.db.QueryRowContext(ctx, q, tripID).Scan(
		&trip.ID, &trip.RouteID, &trip.TrainID, &trip.DepartureTime, &trip.ArrivalTime,
		&train.ID, &train.Name, &train.CargoNum, &train.PlacesInCargo, &train.TrainTypeID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &booking.TripNotFoundError{TripID: tripID}
		}
		return nil, err
	}
	trip.Train = &train
	return &trip, nil
}

// Create inserts a trip and its crew assignments in one transaction and
// returns the generated ID.  The handler validates that arrival is
// after departure and that route, train and crew exist.
func (r *TripRepo) Create(ctx context.Context, routeID, trainID uint64, departure, arrival time.Time, crewIDs []uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO trips (route_id, train_id, departure_time, arrival_time) VALUES (?, ?, ?, ?)`,
		routeID, trainID, departure.UTC(), arrival.UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := insertTripCrewTx(ctx, tx, uint64(id), crewIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// Update rewrites a trip and replaces its crew assignments.  Returns
// sql.ErrNoRows when the trip does not exist.
func (r *TripRepo) Update(ctx context.Context, id uint64, routeID, trainID uint64, departure, arrival time.Time, crewIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var exists uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM trips WHERE id = ?`, id).Scan(&exists); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE trips SET route_id = ?, train_id = ?, departure_time = ?, arrival_time = ? WHERE id = ?`,
		routeID, trainID, departure.UTC(), arrival.UTC(), id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_crew WHERE trip_id = ?`, id); err != nil {
		return err
	}
	if err := insertTripCrewTx(ctx, tx, id, crewIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a trip.  Tickets referencing it are removed by the
// cascading foreign key; their orders remain (an order never outlives
// its last ticket in practice because orders are created with at least
// one, but deleting a trip does not delete sibling tickets on other
// trips).  Returns sql.ErrNoRows when the trip does not exist.
func (r *TripRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func insertTripCrewTx(ctx context.Context, tx *sql.Tx, tripID uint64, crewIDs []uint64) error {
	if len(crewIDs) == 0 {
		return nil
	}
	q := `INSERT INTO trip_crew (trip_id, crew_id) VALUES `
	args := make([]interface{}, 0, len(crewIDs)*2)
	for i, cid := range crewIDs {
		if i > 0 {
			q += ","
		}
		q += "(?, ?)"
		args = append(args, tripID, cid)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}
