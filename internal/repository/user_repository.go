package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/train-station-reservation/internal/model"
	"github.com/iliyamo/train-station-reservation/internal/utils"
)

// ErrEmailExists is returned when registering with an email that is
// already in use.
var ErrEmailExists = errors.New("email already exists")

// UserRepo provides persistence for application users.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user with a bcrypt-hashed password and returns the
// generated ID.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?)`,
		email, hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, is_active, created_at, updated_at
		 FROM users WHERE email = ? LIMIT 1`,
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, is_active, created_at, updated_at
		 FROM users WHERE id = ? LIMIT 1`,
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
