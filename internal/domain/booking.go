package domain

import "time"

type Booking struct {
	ID          int64         `json:"id"`
	RoomID      int64         `json:"room_id" validate:"required"`
	UserID      int64         `json:"user_id" validate:"required"`
	StartTime   time.Time     `json:"start_time" validate:"required"`
	EndTime     time.Time     `json:"end_time" validate:"required"`
	Title       string        `json:"title,omitempty"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`

	// Filled by list queries that join rooms/users.
	RoomName string `json:"room_name,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Range returns the booking's reserved interval.
func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

// EffectiveStatus is the status a reader should see at now, i.e. what the
// next reconciliation sweep would store.
func (b *Booking) EffectiveStatus(now time.Time, policy StatusPolicy) BookingStatus {
	status, _ := policy.ReconcileTarget(b, now)
	return status
}
