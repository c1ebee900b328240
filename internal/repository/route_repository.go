package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrRouteExists is returned when a route with the same source and
// destination pair already exists.
var ErrRouteExists = errors.New("route already exists")

// RouteRepo provides persistence for routes between stations.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo returns a RouteRepo bound to the given database.
func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

// RouteDetail is the read model for route listings: station IDs are
// resolved to their names.
type RouteDetail struct {
	ID          uint64 `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Distance    uint32 `json:"distance"`
}

// Create inserts a route and returns its generated ID.  The caller is
// expected to have verified that both stations exist and differ; a
// duplicate (source, destination) pair is rejected with ErrRouteExists.
// A missing station surfaces as a foreign-key error from the driver.
func (r *RouteRepo) Create(ctx context.Context, sourceID, destinationID uint64, distance uint32) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO routes (source_id, destination_id, distance) VALUES (?, ?, ?)`,
		sourceID, destinationID, distance)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrRouteExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID returns a single route with station names resolved.  When no
// route exists, sql.ErrNoRows is returned.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (*RouteDetail, error) {
	const q = `SELECT r.id, src.name, dst.name, r.distance
	           FROM routes r
	           JOIN stations src ON src.id = r.source_id
	           JOIN stations dst ON dst.id = r.destination_id
	           WHERE r.id = ?`
	var det RouteDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(&det.ID, &det.Source, &det.Destination, &det.Distance)
	if err != nil {
		return nil, err
	}
	return &det, nil
}

// List returns all routes with station names resolved, ordered by the
// source station's name.
func (r *RouteRepo) List(ctx context.Context) ([]RouteDetail, error) {
	const q = `SELECT r.id, src.name, dst.name, r.distance
	           FROM routes r
	           JOIN stations src ON src.id = r.source_id
	           JOIN stations dst ON dst.id = r.destination_id
	           ORDER BY src.name, dst.name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	routes := make([]RouteDetail, 0)
	for rows.Next() {
		var det RouteDetail
		if err := rows.Scan(&det.ID, &det.Source, &det.Destination, &det.Distance); err != nil {
			return nil, err
		}
		routes = append(routes, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return routes, nil
}
