package model

// Crew is a crew member that can be assigned to trips.  The trip
// assignment lives in the `trip_crew` join table.
type Crew struct {
	ID        uint64 // crew.id
	FirstName string // crew.first_name
	LastName  string // crew.last_name
}

// FullName returns the member's display name.
func (c *Crew) FullName() string {
	return c.FirstName + " " + c.LastName
}
