package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrTrainTypeExists is returned when a train type with the same name
// already exists.
var ErrTrainTypeExists = errors.New("train type name already exists")

// ErrTrainExists is returned when a train with the same name already
// exists.
var ErrTrainExists = errors.New("train name already exists")

// TrainTypeRepo provides persistence for train types.
type TrainTypeRepo struct {
	db *sql.DB
}

// NewTrainTypeRepo returns a TrainTypeRepo bound to the given database.
func NewTrainTypeRepo(db *sql.DB) *TrainTypeRepo { return &TrainTypeRepo{db: db} }

// Create inserts a train type and returns its generated ID.
func (r *TrainTypeRepo) Create(ctx context.Context, name string, description *string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO train_types (name, description) VALUES (?, ?)`,
		name, description)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrTrainTypeExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all train types ordered by name.
func (r *TrainTypeRepo) List(ctx context.Context) ([]model.TrainType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description FROM train_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]model.TrainType, 0)
	for rows.Next() {
		var t model.TrainType
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			t.Description = &d
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

// TrainRepo provides persistence for trains.
type TrainRepo struct {
	db *sql.DB
}

// NewTrainRepo returns a TrainRepo bound to the given database.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// TrainDetail is the read model for train listings.  Capacity is the
// derived cargo_num * places_in_cargo figure.
type TrainDetail struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	CargoNum      uint32 `json:"cargo_num"`
	PlacesInCargo uint32 `json:"places_in_cargo"`
	Capacity      uint32 `json:"capacity"`
	TrainType     string `json:"train_type"`
}

// TrainFilter narrows List results.  Name matches as a case-insensitive
// substring; TypeIDs restricts to the given train type IDs.
type TrainFilter struct {
	Name    string
	TypeIDs []uint64
}

// Create inserts a train and returns its generated ID.  cargoNum and
// placesInCargo must be positive; the handler validates that before
// calling.
func (r *TrainRepo) Create(ctx context.Context, name string, cargoNum, placesInCargo uint32, trainTypeID uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO trains (name, cargo_num, places_in_cargo, train_type_id) VALUES (?, ?, ?, ?)`,
		name, cargoNum, placesInCargo, trainTypeID)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrTrainExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites a train's mutable attributes.  sql.ErrNoRows is
// returned when the train does not exist.
func (r *TrainRepo) Update(ctx context.Context, id uint64, name string, cargoNum, placesInCargo uint32, trainTypeID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trains SET name = ?, cargo_num = ?, places_in_cargo = ?, train_type_id = ? WHERE id = ?`,
		name, cargoNum, placesInCargo, trainTypeID, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrTrainExists
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either absent or unchanged; distinguish by probing for the row.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM trains WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns a train with its type name resolved.  When no train
// exists, sql.ErrNoRows is returned.
func (r *TrainRepo) GetByID(ctx context.Context, id uint64) (*TrainDetail, error) {
	const q = `SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, tt.name
	           FROM trains t
	           JOIN train_types tt ON tt.id = t.train_type_id
	           WHERE t.id = ?`
	var det TrainDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(&det.ID, &det.Name, &det.CargoNum, &det.PlacesInCargo, &det.TrainType)
	if err != nil {
		return nil, err
	}
	det.Capacity = det.CargoNum * det.PlacesInCargo
	return &det, nil
}

// List returns trains matching the filter, ordered by name.
func (r *TrainRepo) List(ctx context.Context, filter TrainFilter) ([]TrainDetail, error) {
	q := `SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, tt.name
	      FROM trains t
	      JOIN train_types tt ON tt.id = t.train_type_id`
	var conds []string
	var args []interface{}
	if filter.Name != "" {
		conds = append(conds, "LOWER(t.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Name)+"%")
	}
	if len(filter.TypeIDs) > 0 {
		placeholders := make([]string, len(filter.TypeIDs))
		for i, id := range filter.TypeIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, "t.train_type_id IN ("+strings.Join(placeholders, ",")+")")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY t.name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trains := make([]TrainDetail, 0)
	for rows.Next() {
		var det TrainDetail
		if err := rows.Scan(&det.ID, &det.Name, &det.CargoNum, &det.PlacesInCargo, &det.TrainType); err != nil {
			return nil, err
		}
		det.Capacity = det.CargoNum * det.PlacesInCargo
		trains = append(trains, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trains, nil
}
