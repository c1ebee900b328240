package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-station-reservation/internal/booking"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3-1-5' for key 'uq_ticket_trip_cargo_seat'"}

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate entry", dup, true},
		{"wrapped duplicate entry", fmt.Errorf("insert ticket: %w", dup), true},
		{"other mysql error", &mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isDuplicateKey(tc.err))
		})
	}
}

func TestTicketInsertError_DuplicateBecomesSeatTaken(t *testing.T) {
	req := booking.SeatRequest{TripID: 3, Cargo: 1, Seat: 5}
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3-1-5' for key 'uq_ticket_trip_cargo_seat'"}

	err := ticketInsertError(fmt.Errorf("insert ticket: %w", dup), req)

	var taken *booking.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, req.TripID, taken.TripID)
	assert.Equal(t, req.Cargo, taken.Cargo)
	assert.Equal(t, req.Seat, taken.Seat)
}

func TestTicketInsertError_OtherErrorsPassThrough(t *testing.T) {
	req := booking.SeatRequest{TripID: 3, Cargo: 1, Seat: 5}
	fk := &mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"}

	assert.Equal(t, error(fk), ticketInsertError(fk, req))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, ticketInsertError(plain, req))
}
