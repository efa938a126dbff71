package booking

import (
	"time"

	"roombooking/internal/domain"
)

type CreateBookingRequest struct {
	RoomID    int64     `json:"room_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Title     string    `json:"title"`
	// Status optionally requests "pending" or "booked".
	Status string `json:"status"`
}

// CreateResult reports a committed booking. NotificationErr is set when the
// booking was stored but the confirmation could not be delivered.
type CreateResult struct {
	Booking         *domain.Booking
	NotificationErr error
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateDetailsRequest carries a partial edit; nil fields keep their value.
type UpdateDetailsRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Title     *string    `json:"title"`
}

type ListFilter struct {
	UserID int64
	RoomID int64
	Status domain.BookingStatus
	From   *time.Time
	To     *time.Time
}

type DayView struct {
	RoomID   int64            `json:"room_id"`
	Date     string           `json:"date"`
	Timezone string           `json:"timezone"`
	Bookings []domain.Booking `json:"bookings"`
}
