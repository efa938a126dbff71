package notification

import (
	"time"

	"roombooking/internal/domain"
)

// Event type constants
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingUpdated       = "booking.updated"
	TypeBookingCancelled     = "booking.cancelled"
	TypeRoomAvailability     = "room.availability"
)

// Event is pushed to websocket subscribers of a room.
type Event struct {
	Type       string               `json:"type"`
	RoomID     int64                `json:"room_id"`
	BookingID  int64                `json:"booking_id,omitempty"`
	Status     domain.BookingStatus `json:"status,omitempty"`
	StartTime  *time.Time           `json:"start_time,omitempty"`
	EndTime    *time.Time           `json:"end_time,omitempty"`
	Available  *bool                `json:"available,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// BookingEvent builds an event describing b.
func BookingEvent(eventType string, b *domain.Booking, at time.Time) Event {
	start, end := b.StartTime, b.EndTime
	return Event{
		Type:       eventType,
		RoomID:     b.RoomID,
		BookingID:  b.ID,
		Status:     b.Status,
		StartTime:  &start,
		EndTime:    &end,
		OccurredAt: at.UTC(),
	}
}

func AvailabilityEvent(roomID int64, available bool, at time.Time) Event {
	return Event{
		Type:       TypeRoomAvailability,
		RoomID:     roomID,
		Available:  &available,
		OccurredAt: at.UTC(),
	}
}

// BookingSummary is what the confirmation email renders.
type BookingSummary struct {
	BookingID int64
	RoomName  string
	UserName  string
	Title     string
	Start     time.Time
	End       time.Time
	Status    domain.BookingStatus
}
