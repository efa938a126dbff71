package booking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"roombooking/internal/domain"
	"roombooking/internal/notification"
	"roombooking/internal/pkg/clock"
	"roombooking/internal/repository"
)

const (
	CancelModeSoft   = "soft"
	CancelModeDelete = "delete"
)

// Config holds the lifecycle rules that vary per deployment.
type Config struct {
	Policy        domain.StatusPolicy
	MaxDuration   time.Duration
	MinCancelLead time.Duration
	CancelMode    string
	// Location is used to interpret calendar dates in day views.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		Policy:        domain.DefaultStatusPolicy(),
		MaxDuration:   3 * time.Hour,
		MinCancelLead: 15 * time.Minute,
		CancelMode:    CancelModeSoft,
		Location:      time.UTC,
	}
}

type Service struct {
	repo    Repository
	rooms   RoomReader
	users   UserReader
	overlap *OverlapChecker
	clock   clock.Clock
	cfg     Config
	log     zerolog.Logger

	notifier  Notifier
	publisher Publisher
	metrics   Metrics
}

type Option func(*Service)

func WithNotifier(n Notifier) Option   { return func(s *Service) { s.notifier = n } }
func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }
func WithMetrics(m Metrics) Option     { return func(s *Service) { s.metrics = m } }

func NewService(
	repo Repository,
	rooms RoomReader,
	users UserReader,
	clk clock.Clock,
	cfg Config,
	log zerolog.Logger,
	opts ...Option,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CancelMode == "" {
		cfg.CancelMode = CancelModeSoft
	}
	s := &Service{
		repo:    repo,
		rooms:   rooms,
		users:   users,
		overlap: NewOverlapChecker(repo, cfg.Policy),
		clock:   clk,
		cfg:     cfg,
		log:     log.With().Str("component", "booking").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking validates, conflict-checks and stores a booking for actor.
// A non-nil result always means the booking is committed, even when
// result.NotificationErr reports a failed confirmation.
func (s *Service) CreateBooking(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (res *CreateResult, err error) {
	defer func() { s.record("create", err) }()

	rng, err := s.validateRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	requested, err := parseRequestedStatus(req.Status)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, transient("load room", err)
	}

	now := s.clock.Now()
	b := &domain.Booking{
		RoomID:    room.ID,
		UserID:    actor.UserID,
		StartTime: rng.Start,
		EndTime:   rng.End,
		Title:     req.Title,
		Status:    s.initialStatus(actor, requested, rng, now),
	}

	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockRoom(ctx, b.RoomID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRoomNotFound
			}
			return transient("lock room", err)
		}
		conflict, err := s.overlap.HasOverlap(ctx, b.RoomID, rng, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrSlotConflict
		}
		return s.repo.InsertBooking(ctx, b)
	})
	if err != nil {
		return nil, classify("create booking", err)
	}
	b.RoomName = room.Name

	s.log.Info().
		Int64("booking_id", b.ID).
		Int64("room_id", b.RoomID).
		Int64("user_id", b.UserID).
		Str("status", b.Status.String()).
		Msg("booking created")
	s.publish(notification.TypeBookingCreated, b)

	return &CreateResult{Booking: b, NotificationErr: s.notify(ctx, b)}, nil
}

// UpdateStatus is the administrator override. Statuses owned by the clock
// cannot be left or entered this way.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, newStatus domain.BookingStatus, actorRole domain.UserRole) (b *domain.Booking, err error) {
	defer func() { s.record("update_status", err) }()

	if actorRole != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if !domain.AdminSettableStatuses.Has(newStatus) {
		return nil, ErrInvalidStatus
	}

	now := s.clock.Now()
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if domain.SystemOwnedStatuses.Has(current.EffectiveStatus(now, s.cfg.Policy)) {
			return ErrImmutableStatus
		}

		if s.cfg.Policy.IsActive(newStatus) && !s.cfg.Policy.IsActive(current.Status) {
			if err := s.repo.LockRoom(ctx, current.RoomID); err != nil {
				return err
			}
			conflict, err := s.overlap.HasOverlap(ctx, current.RoomID, current.Range(), current.ID)
			if err != nil {
				return err
			}
			if conflict {
				return ErrSlotConflict
			}
		}

		var n int64
		if newStatus == domain.StatusCancelled {
			n, err = s.repo.CancelBooking(ctx, current.ID, now)
		} else {
			n, err = s.repo.UpdateBookingStatus(ctx, current.ID, newStatus)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		current.Status = newStatus
		if newStatus == domain.StatusCancelled {
			current.CancelledAt = &now
		}
		b = current
		return nil
	})
	if err != nil {
		return nil, classify("update booking status", err)
	}

	s.log.Info().
		Int64("booking_id", b.ID).
		Str("status", newStatus.String()).
		Msg("booking status set by admin")
	s.publish(notification.TypeBookingStatusChanged, b)
	return b, nil
}

// CancelBooking cancels a booking on behalf of its owner or an admin.
func (s *Service) CancelBooking(ctx context.Context, bookingID int64, actor domain.Actor) (err error) {
	defer func() { s.record("cancel", err) }()

	now := s.clock.Now()
	var b *domain.Booking
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !canModify(actor, current) {
			return ErrForbidden
		}

		switch current.EffectiveStatus(now, s.cfg.Policy) {
		case domain.StatusInUse, domain.StatusCompleted:
			return ErrTooLateToCancel
		case domain.StatusCancelled, domain.StatusRejected:
			return ErrNotCancellable
		}
		if current.StartTime.Sub(now) < s.cfg.MinCancelLead {
			return ErrTooLateToCancel
		}

		var n int64
		if s.cfg.CancelMode == CancelModeDelete {
			n, err = s.repo.DeleteBooking(ctx, current.ID)
		} else {
			n, err = s.repo.CancelBooking(ctx, current.ID, now)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		current.Status = domain.StatusCancelled
		b = current
		return nil
	})
	if err != nil {
		return classify("cancel booking", err)
	}

	s.log.Info().
		Int64("booking_id", b.ID).
		Int64("actor_id", actor.UserID).
		Str("mode", s.cfg.CancelMode).
		Msg("booking cancelled")
	s.publish(notification.TypeBookingCancelled, b)
	return nil
}

// UpdateBookingDetails edits the range or title of a booking that has not
// started yet. The status is re-derived from the new range.
func (s *Service) UpdateBookingDetails(ctx context.Context, bookingID int64, actor domain.Actor, req UpdateDetailsRequest) (b *domain.Booking, err error) {
	defer func() { s.record("update_details", err) }()

	now := s.clock.Now()
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !canModify(actor, current) {
			return ErrForbidden
		}

		switch current.EffectiveStatus(now, s.cfg.Policy) {
		case domain.StatusInUse, domain.StatusCompleted, domain.StatusCancelled, domain.StatusRejected:
			return ErrImmutableStatus
		}

		start, end := current.StartTime, current.EndTime
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		rng, err := s.validateRange(start, end)
		if err != nil {
			return err
		}

		if !rng.Start.Equal(current.StartTime) || !rng.End.Equal(current.EndTime) {
			if err := s.repo.LockRoom(ctx, current.RoomID); err != nil {
				return err
			}
			conflict, err := s.overlap.HasOverlap(ctx, current.RoomID, rng, current.ID)
			if err != nil {
				return err
			}
			if conflict {
				return ErrSlotConflict
			}
		}

		current.StartTime, current.EndTime = rng.Start, rng.End
		if req.Title != nil {
			current.Title = *req.Title
		}
		if !(current.Status == domain.StatusPending && s.cfg.Policy.RequireApproval) {
			current.Status = domain.DeriveStatus(rng, now)
		}

		n, err := s.repo.UpdateBookingDetails(ctx, current)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		b = current
		return nil
	})
	if err != nil {
		return nil, classify("update booking", err)
	}

	s.log.Info().
		Int64("booking_id", b.ID).
		Time("start", b.StartTime).
		Time("end", b.EndTime).
		Msg("booking updated")
	s.publish(notification.TypeBookingUpdated, b)
	return b, nil
}

// GetBooking returns a booking visible to actor, with its effective status.
func (s *Service) GetBooking(ctx context.Context, bookingID int64, actor domain.Actor) (*domain.Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, classify("get booking", err)
	}
	if !canModify(actor, b) {
		return nil, ErrForbidden
	}
	b.Status = b.EffectiveStatus(s.clock.Now(), s.cfg.Policy)
	return b, nil
}

// ListMine returns the caller's bookings.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.ListAll(ctx, ListFilter{UserID: userID})
}

// ListAll returns bookings matching f. Stored statuses that the clock has
// overtaken are reported as they will be after the next sweep.
func (s *Service) ListAll(ctx context.Context, f ListFilter) ([]domain.Booking, error) {
	filter := repository.BookingFilter{
		UserID: f.UserID,
		RoomID: f.RoomID,
		From:   f.From,
		To:     f.To,
	}

	rows, err := s.repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, transient("list bookings", err)
	}

	now := s.clock.Now()
	out := rows[:0]
	for _, b := range rows {
		b.Status = b.EffectiveStatus(now, s.cfg.Policy)
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// DayView lists the active bookings of a room on a calendar date in the
// configured timezone. The day is a range, so bookings crossing midnight
// are included.
func (s *Service) DayView(ctx context.Context, roomID int64, date string) (*DayView, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.cfg.Location)
	if err != nil {
		return nil, ErrInvalidRange
	}
	rng, err := domain.NewTimeRange(day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, ErrInvalidRange
	}

	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, transient("load room", err)
	}

	rows, err := s.repo.QueryBookingsByRoom(ctx, roomID, s.cfg.Policy.ActiveSet(), rng)
	if err != nil {
		return nil, transient("load day bookings", err)
	}

	now := s.clock.Now()
	for i := range rows {
		rows[i].Status = rows[i].EffectiveStatus(now, s.cfg.Policy)
	}

	return &DayView{
		RoomID:   roomID,
		Date:     date,
		Timezone: s.cfg.Location.String(),
		Bookings: rows,
	}, nil
}

// validateRange checks the range at the precision it will be stored with
// (whole seconds), so a sub-second request cannot collapse to start == end.
func (s *Service) validateRange(start, end time.Time) (domain.TimeRange, error) {
	rng, err := domain.NewTimeRange(start.Truncate(time.Second), end.Truncate(time.Second))
	if err != nil {
		return domain.TimeRange{}, ErrInvalidRange
	}
	if rng.Duration() > s.cfg.MaxDuration {
		return domain.TimeRange{}, ErrDurationExceeded
	}
	return rng, nil
}

// initialStatus picks the stored status of a new booking. Only admins may
// skip the approval queue when approval is required.
func (s *Service) initialStatus(actor domain.Actor, requested domain.BookingStatus, rng domain.TimeRange, now time.Time) domain.BookingStatus {
	if s.cfg.Policy.RequireApproval && !actor.IsAdmin() {
		return domain.StatusPending
	}
	if requested == domain.StatusPending {
		return domain.StatusPending
	}
	return domain.DeriveStatus(rng, now)
}

func parseRequestedStatus(raw string) (domain.BookingStatus, error) {
	if raw == "" {
		return "", nil
	}
	st, err := domain.ParseStatus(raw)
	if err != nil {
		return "", ErrInvalidStatus
	}
	if st != domain.StatusPending && st != domain.StatusBooked {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func canModify(actor domain.Actor, b *domain.Booking) bool {
	return actor.IsAdmin() || b.UserID == actor.UserID
}

func (s *Service) notify(ctx context.Context, b *domain.Booking) error {
	if s.notifier == nil {
		return nil
	}

	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		s.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("confirmation skipped: requester not loaded")
		return transient("load requester", err)
	}

	summary := notification.BookingSummary{
		BookingID: b.ID,
		RoomName:  b.RoomName,
		UserName:  user.Name,
		Title:     b.Title,
		Start:     b.StartTime.In(s.cfg.Location),
		End:       b.EndTime.In(s.cfg.Location),
		Status:    b.Status,
	}
	err = s.notifier.SendBookingConfirmation(ctx, user.Email, summary)
	if s.metrics != nil {
		s.metrics.NotificationResult(err)
	}
	if err != nil {
		s.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("booking confirmation not delivered")
	}
	return err
}

func (s *Service) publish(eventType string, b *domain.Booking) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(notification.BookingEvent(eventType, b, s.clock.Now()))
}

func (s *Service) record(op string, err error) {
	if s.metrics != nil {
		s.metrics.BookingOutcome(op, outcome(err))
	}
	if err != nil && errors.Is(err, ErrTransient) {
		s.log.Error().Err(err).Str("operation", op).Msg("booking operation failed")
	}
}
