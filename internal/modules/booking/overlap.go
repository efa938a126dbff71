package booking

import (
	"context"
	"fmt"

	"roombooking/internal/domain"
)

// SlotReader is the slice of the store the overlap check needs.
type SlotReader interface {
	QueryBookingsByRoom(ctx context.Context, roomID int64, statuses []domain.BookingStatus, rng domain.TimeRange) ([]domain.Booking, error)
}

type OverlapChecker struct {
	store  SlotReader
	active domain.StatusSet
}

func NewOverlapChecker(store SlotReader, policy domain.StatusPolicy) *OverlapChecker {
	return &OverlapChecker{store: store, active: policy.ActiveSet()}
}

// HasOverlap reports whether any active booking of roomID other than
// excludeID intersects rng. A zero excludeID excludes nothing.
func (c *OverlapChecker) HasOverlap(ctx context.Context, roomID int64, rng domain.TimeRange, excludeID int64) (bool, error) {
	rows, err := c.store.QueryBookingsByRoom(ctx, roomID, c.active, rng)
	if err != nil {
		return false, transient(fmt.Sprintf("load bookings of room %d", roomID), err)
	}

	for i := range rows {
		b := &rows[i]
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if !c.active.Has(b.Status) {
			continue
		}
		if b.Range().Overlaps(rng) {
			return true, nil
		}
	}
	return false, nil
}
