package booking

import "github.com/iliyamo/train-station-reservation/internal/model"

// TicketsAvailable derives a trip's remaining seat count from its
// train's layout and the number of committed tickets.  Pure function of
// its inputs; the caller supplies a ticket count consistent with the
// read it needs (a bulk projection for list views, or the in-transaction
// count at commit time).
//
// A ticket count above capacity violates the seat-range and uniqueness
// invariants and is reported as ErrCapacityExceeded.
func TicketsAvailable(train *model.Train, ticketCount int64) (int64, error) {
	free := int64(train.Capacity()) - ticketCount
	if free < 0 {
		return 0, ErrCapacityExceeded
	}
	return free, nil
}
