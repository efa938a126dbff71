package booking

import (
	"context"
	"time"

	"roombooking/internal/domain"
	"roombooking/internal/notification"
	"roombooking/internal/repository"
)

// Repository is the booking store. Calls made with the ctx passed into
// WithinTx's callback run in that transaction.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockRoom(ctx context.Context, roomID int64) error
	InsertBooking(ctx context.Context, b *domain.Booking) error
	GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	QueryBookingsByRoom(ctx context.Context, roomID int64, statuses []domain.BookingStatus, rng domain.TimeRange) ([]domain.Booking, error)
	ListBookings(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error)
	UpdateBookingDetails(ctx context.Context, b *domain.Booking) (int64, error)
	CancelBooking(ctx context.Context, id int64, at time.Time) (int64, error)
	DeleteBooking(ctx context.Context, id int64) (int64, error)
}

type RoomReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Notifier delivers the booking confirmation to the requester.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, to string, s notification.BookingSummary) error
}

// Publisher fans booking events out to live subscribers.
type Publisher interface {
	Publish(ev notification.Event)
}

type Metrics interface {
	BookingOutcome(operation, outcome string)
	NotificationResult(err error)
}
