package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrStationExists is returned when a station with the same name
// already exists.
var ErrStationExists = errors.New("station name already exists")

// StationRepo provides persistence for railway stations.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo returns a StationRepo bound to the given database.
func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// Create inserts a station and returns its generated ID.  A duplicate
// name is rejected with ErrStationExists.
func (r *StationRepo) Create(ctx context.Context, name string, latitude, longitude float64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO stations (name, latitude, longitude) VALUES (?, ?, ?)`,
		name, latitude, longitude)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrStationExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all stations ordered by name.
func (r *StationRepo) List(ctx context.Context) ([]model.Station, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, latitude, longitude FROM stations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stations := make([]model.Station, 0)
	for rows.Next() {
		var s model.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}
