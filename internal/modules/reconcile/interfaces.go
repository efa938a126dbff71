package reconcile

import (
	"context"
	"time"

	"roombooking/internal/domain"
	"roombooking/internal/notification"
)

// BookingStore is the slice of the booking store a sweep needs.
type BookingStore interface {
	QueryAllBookings(ctx context.Context) ([]domain.Booking, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (int64, error)
}

// RoomStore is optional; without it room availability is left alone.
type RoomStore interface {
	List(ctx context.Context) ([]domain.Room, error)
	SetAvailability(ctx context.Context, id int64, available bool) (int64, error)
}

type Publisher interface {
	Publish(ev notification.Event)
}

type Metrics interface {
	SweepFinished(d time.Duration, bookingsUpdated, roomsUpdated, failures int)
	SweepSkipped()
}
