package model

// TrainType categorises trains (express, intercity, night and so on).
// Names are unique.  The description is optional.
type TrainType struct {
	ID          uint64  // train_types.id
	Name        string  // train_types.name (unique)
	Description *string // train_types.description (nullable)
}

// Train describes the physical layout of a train.  A train has a number
// of cargos (cars) and a fixed number of places in each cargo.  Both
// values are positive by schema constraint.  This struct corresponds to
// a row in the `trains` table.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – unique train name.
//  CargoNum      – number of cargos (cars) on the train.
//  PlacesInCargo – number of seats inside each cargo.
//  TrainTypeID   – reference to the train's type.
type Train struct {
	ID            uint64 // trains.id
	Name          string // trains.name (unique)
	CargoNum      uint32 // trains.cargo_num
	PlacesInCargo uint32 // trains.places_in_cargo
	TrainTypeID   uint64 // trains.train_type_id
}

// Capacity returns the total number of sellable seats on the train.
func (t *Train) Capacity() uint32 {
	return t.CargoNum * t.PlacesInCargo
}
