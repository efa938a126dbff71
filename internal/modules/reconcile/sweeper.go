package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"roombooking/internal/domain"
	"roombooking/internal/notification"
)

// Report summarises one sweep.
type Report struct {
	Scanned         int
	BookingsUpdated int
	RoomsUpdated    int
	Failures        int
	Duration        time.Duration
}

// Sweeper brings stored statuses and room availability in line with the
// clock. A sweep is idempotent for a fixed now.
type Sweeper struct {
	bookings  BookingStore
	rooms     RoomStore
	policy    domain.StatusPolicy
	publisher Publisher
	log       zerolog.Logger
}

func NewSweeper(bookings BookingStore, rooms RoomStore, policy domain.StatusPolicy, publisher Publisher, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		bookings:  bookings,
		rooms:     rooms,
		policy:    policy,
		publisher: publisher,
		log:       log.With().Str("component", "reconcile").Logger(),
	}
}

// Sweep re-derives every booking at now. A failure on one booking or room is
// logged and counted; only failing to load the data aborts the sweep.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Report, error) {
	started := time.Now()
	var rep Report

	all, err := s.bookings.QueryAllBookings(ctx)
	if err != nil {
		return rep, fmt.Errorf("load bookings: %w", err)
	}
	rep.Scanned = len(all)

	occupied := make(map[int64]bool)
	for i := range all {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		b := &all[i]

		target, write := s.policy.ReconcileTarget(b, now)
		if write {
			n, err := s.bookings.TransitionStatus(ctx, b.ID, b.Status, target)
			switch {
			case err != nil:
				rep.Failures++
				s.log.Error().Err(err).
					Int64("booking_id", b.ID).
					Str("from", b.Status.String()).
					Str("to", target.String()).
					Msg("status update failed")
			case n > 0:
				rep.BookingsUpdated++
				s.log.Debug().
					Int64("booking_id", b.ID).
					Str("from", b.Status.String()).
					Str("to", target.String()).
					Msg("status reconciled")
				b.Status = target
				s.publish(notification.BookingEvent(notification.TypeBookingStatusChanged, b, now))
			}
		}

		if s.policy.IsActive(target) && b.Range().Contains(now) {
			occupied[b.RoomID] = true
		}
	}

	if s.rooms != nil {
		if err := s.syncRooms(ctx, now, occupied, &rep); err != nil {
			return rep, err
		}
	}

	rep.Duration = time.Since(started)
	return rep, nil
}

func (s *Sweeper) syncRooms(ctx context.Context, now time.Time, occupied map[int64]bool, rep *Report) error {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		rep.Failures++
		s.log.Error().Err(err).Msg("load rooms failed")
		return nil
	}

	for _, room := range rooms {
		if err := ctx.Err(); err != nil {
			return err
		}
		available := !occupied[room.ID]
		n, err := s.rooms.SetAvailability(ctx, room.ID, available)
		if err != nil {
			rep.Failures++
			s.log.Error().Err(err).Int64("room_id", room.ID).Msg("availability update failed")
			continue
		}
		if n > 0 {
			rep.RoomsUpdated++
			s.publish(notification.AvailabilityEvent(room.ID, available, now))
		}
	}
	return nil
}

func (s *Sweeper) publish(ev notification.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}
