package booking

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"roombooking/internal/domain"
	"roombooking/internal/notification"
	"roombooking/internal/repository"
)

type MockRepository struct {
	mock.Mock
}

// WithinTx runs fn inline; the mocked calls inside it are asserted as usual.
func (m *MockRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockRepository) LockRoom(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRepository) InsertBooking(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockRepository) GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the service cannot mutate the fixture.
	b := *args.Get(0).(*domain.Booking)
	return &b, args.Error(1)
}

func (m *MockRepository) QueryBookingsByRoom(ctx context.Context, roomID int64, statuses []domain.BookingStatus, rng domain.TimeRange) ([]domain.Booking, error) {
	args := m.Called(ctx, roomID, statuses, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockRepository) ListBookings(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockRepository) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) UpdateBookingDetails(ctx context.Context, b *domain.Booking) (int64, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CancelBooking(ctx context.Context, id int64, at time.Time) (int64, error) {
	args := m.Called(ctx, id, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) DeleteBooking(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockRooms struct {
	mock.Mock
}

func (m *MockRooms) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendBookingConfirmation(ctx context.Context, to string, s notification.BookingSummary) error {
	args := m.Called(ctx, to, s)
	return args.Error(0)
}

type recordingPublisher struct {
	events []notification.Event
}

func (p *recordingPublisher) Publish(ev notification.Event) {
	p.events = append(p.events, ev)
}
