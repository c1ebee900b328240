package model

// Station is a stop on the railway network with geographic coordinates.
// Station names are unique across the system.  This struct corresponds
// to a row in the `stations` table.
type Station struct {
	ID        uint64  // stations.id
	Name      string  // stations.name (unique)
	Latitude  float64 // stations.latitude
	Longitude float64 // stations.longitude
}
