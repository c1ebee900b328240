package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// CrewRepo provides persistence for crew members.
type CrewRepo struct {
	db *sql.DB
}

// NewCrewRepo returns a CrewRepo bound to the given database.
func NewCrewRepo(db *sql.DB) *CrewRepo { return &CrewRepo{db: db} }

// Create inserts a crew member and returns the generated ID.
func (r *CrewRepo) Create(ctx context.Context, firstName, lastName string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO crew (first_name, last_name) VALUES (?, ?)`,
		firstName, lastName)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all crew members ordered by last then first name.
func (r *CrewRepo) List(ctx context.Context) ([]model.Crew, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name FROM crew ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]model.Crew, 0)
	for rows.Next() {
		var m model.Crew
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// Exist reports whether every ID in ids references a crew row.
func (r *CrewRepo) Exist(ctx context.Context, ids []uint64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	q := `SELECT COUNT(*) FROM crew WHERE id IN (`
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += ")"
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, err
	}
	return n == len(ids), nil
}
