package model

// Route connects a source station to a destination station.  The
// (source, destination) pair is unique and the two stations must be
// different.  Distance is measured in kilometres.
//
// Fields:
//  ID            – primary key identifier.
//  SourceID      – station the route starts from.
//  DestinationID – station the route ends at.
//  Distance      – length of the route in kilometres (positive).
type Route struct {
	ID            uint64 // routes.id
	SourceID      uint64 // routes.source_id
	DestinationID uint64 // routes.destination_id
	Distance      uint32 // routes.distance
}
