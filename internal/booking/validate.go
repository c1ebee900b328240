package booking

import "github.com/iliyamo/train-station-reservation/internal/model"

// ValidateSeat checks a proposed (cargo, seat) coordinate against the
// train's physical layout.  Cargo must fall within [1, train.CargoNum]
// and seat within [1, train.PlacesInCargo].  The first violation is
// reported; cargo is checked before seat.  Pure function, usable both
// by the order engine and standalone ticket validation.
func ValidateSeat(cargo, seat uint32, train *model.Train) error {
	if cargo < 1 || cargo > train.CargoNum {
		return &OutOfRangeError{Field: "cargo", Value: cargo, Max: train.CargoNum}
	}
	if seat < 1 || seat > train.PlacesInCargo {
		return &OutOfRangeError{Field: "seat", Value: seat, Max: train.PlacesInCargo}
	}
	return nil
}
