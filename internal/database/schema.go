package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists idempotent DDL statements executed at startup.  The
// uq_ticket_trip_cargo_seat key on tickets is load-bearing: it is the
// storage-level guard that makes concurrent double-booking of the same
// (trip, cargo, seat) impossible regardless of application interleaving.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'CUSTOMER',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS stations (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_stations_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS routes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		source_id BIGINT UNSIGNED NOT NULL,
		destination_id BIGINT UNSIGNED NOT NULL,
		distance INT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_routes_source_destination (source_id, destination_id),
		CONSTRAINT fk_routes_source FOREIGN KEY (source_id) REFERENCES stations (id) ON DELETE CASCADE,
		CONSTRAINT fk_routes_destination FOREIGN KEY (destination_id) REFERENCES stations (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS train_types (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		description TEXT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_train_types_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS trains (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		cargo_num INT UNSIGNED NOT NULL,
		places_in_cargo INT UNSIGNED NOT NULL,
		train_type_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_trains_name (name),
		CONSTRAINT fk_trains_type FOREIGN KEY (train_type_id) REFERENCES train_types (id),
		CONSTRAINT chk_trains_layout CHECK (cargo_num > 0 AND places_in_cargo > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS crew (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL,
		PRIMARY KEY (id)
	)`,
	`CREATE TABLE IF NOT EXISTS trips (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		route_id BIGINT UNSIGNED NOT NULL,
		train_id BIGINT UNSIGNED NOT NULL,
		departure_time DATETIME NOT NULL,
		arrival_time DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_trips_departure (departure_time),
		CONSTRAINT fk_trips_route FOREIGN KEY (route_id) REFERENCES routes (id) ON DELETE CASCADE,
		CONSTRAINT fk_trips_train FOREIGN KEY (train_id) REFERENCES trains (id)
	)`,
	`CREATE TABLE IF NOT EXISTS trip_crew (
		trip_id BIGINT UNSIGNED NOT NULL,
		crew_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (trip_id, crew_id),
		CONSTRAINT fk_trip_crew_trip FOREIGN KEY (trip_id) REFERENCES trips (id) ON DELETE CASCADE,
		CONSTRAINT fk_trip_crew_crew FOREIGN KEY (crew_id) REFERENCES crew (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_orders_user_created (user_id, created_at),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		order_id BIGINT UNSIGNED NOT NULL,
		trip_id BIGINT UNSIGNED NOT NULL,
		cargo INT UNSIGNED NOT NULL,
		seat INT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_ticket_trip_cargo_seat (trip_id, cargo, seat),
		KEY idx_tickets_order (order_id),
		CONSTRAINT fk_tickets_order FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE,
		CONSTRAINT fk_tickets_trip FOREIGN KEY (trip_id) REFERENCES trips (id) ON DELETE CASCADE,
		CONSTRAINT chk_tickets_coords CHECK (cargo > 0 AND seat > 0)
	)`,
}

// EnsureSchema creates all tables when they do not yet exist.  Safe to
// run on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
