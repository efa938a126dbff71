package booking

import (
	"errors"
	"fmt"

	"roombooking/internal/database"
	"roombooking/internal/repository"
)

var (
	ErrInvalidRange     = errors.New("booking end must be after start")
	ErrDurationExceeded = errors.New("booking exceeds maximum duration")
	ErrSlotConflict     = errors.New("room already booked for this time")
	ErrImmutableStatus  = errors.New("booking status is controlled by the system")
	ErrTooLateToCancel  = errors.New("booking can no longer be cancelled")
	ErrNotCancellable   = errors.New("booking is already closed")
	ErrInvalidStatus    = errors.New("invalid booking status")
	ErrForbidden        = errors.New("not allowed to modify this booking")
	ErrNotFound         = errors.New("booking not found")
	ErrRoomNotFound     = fmt.Errorf("room: %w", ErrNotFound)
	// ErrTransient marks store failures; retrying may succeed.
	ErrTransient = errors.New("temporary storage failure")
)

var known = []error{
	ErrInvalidRange, ErrDurationExceeded, ErrSlotConflict, ErrImmutableStatus,
	ErrTooLateToCancel, ErrNotCancellable, ErrInvalidStatus, ErrForbidden,
	ErrNotFound, ErrTransient,
}

func transient(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransient, op, err)
}

// classify maps errors escaping a transaction onto the package sentinels.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	if database.IsOverlapViolation(err) {
		return ErrSlotConflict
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return transient(op, err)
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSlotConflict):
		return "slot_conflict"
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrDurationExceeded), errors.Is(err, ErrInvalidStatus):
		return "invalid"
	case errors.Is(err, ErrImmutableStatus), errors.Is(err, ErrTooLateToCancel), errors.Is(err, ErrNotCancellable):
		return "rejected"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
