package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusBooked    BookingStatus = "booked"
	StatusInUse     BookingStatus = "in_use"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRejected  BookingStatus = "rejected"
)

var allStatuses = []BookingStatus{
	StatusPending, StatusBooked, StatusInUse, StatusCompleted, StatusCancelled, StatusRejected,
}

// legacyStatuses maps values written by older deployments onto the canonical set.
var legacyStatuses = map[string]BookingStatus{
	"confirmed": StatusBooked,
	"inuse":     StatusInUse,
	"in-use":    StatusInUse,
	"canceled":  StatusCancelled,
}

func (s BookingStatus) String() string { return string(s) }

// AllStatuses returns the canonical statuses.
func AllStatuses() []BookingStatus {
	return append([]BookingStatus(nil), allStatuses...)
}

// Spellings returns the lower-case values that ParseStatus maps onto s:
// the canonical value followed by its legacy aliases.
func (s BookingStatus) Spellings() []string {
	out := []string{string(s)}
	for alias, canonical := range legacyStatuses {
		if canonical == s {
			out = append(out, alias)
		}
	}
	return out
}

func (s BookingStatus) IsValid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseStatus accepts canonical values as well as legacy spellings
// ("PENDING", "IN_USE", "confirmed", ...).
func ParseStatus(raw string) (BookingStatus, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if s := BookingStatus(v); s.IsValid() {
		return s, nil
	}
	if s, ok := legacyStatuses[v]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown booking status %q", raw)
}

// DeriveStatus maps a range and the current instant onto the time-driven
// part of the state machine. It only ever returns booked, in_use or completed.
func DeriveStatus(r TimeRange, now time.Time) BookingStatus {
	switch {
	case now.After(r.End):
		return StatusCompleted
	case !now.Before(r.Start):
		return StatusInUse
	default:
		return StatusBooked
	}
}

// StatusSet is a small immutable set of statuses.
type StatusSet []BookingStatus

func (s StatusSet) Has(status BookingStatus) bool {
	for _, v := range s {
		if v == status {
			return true
		}
	}
	return false
}

func (s StatusSet) Strings() []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}

var (
	// DefaultActiveStatuses count toward overlap rejection.
	DefaultActiveStatuses = StatusSet{StatusPending, StatusBooked, StatusInUse}
	// SystemOwnedStatuses are reached and left only by time-based derivation.
	SystemOwnedStatuses = StatusSet{StatusInUse, StatusCompleted}
	// AdminSettableStatuses may be written directly by an administrator.
	AdminSettableStatuses = StatusSet{StatusPending, StatusBooked, StatusCancelled, StatusRejected}
)

// StatusPolicy carries the deployment-level status rules.
type StatusPolicy struct {
	Active          StatusSet
	RequireApproval bool
}

func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{Active: DefaultActiveStatuses}
}

// IsAutoDerived reports whether a stored status follows the clock. Pending
// is held for an admin decision when approval is required.
func (p StatusPolicy) IsAutoDerived(s BookingStatus) bool {
	switch s {
	case StatusBooked, StatusInUse:
		return true
	case StatusPending:
		return !p.RequireApproval
	}
	return false
}

// IsActive reports whether s blocks the slot for other bookings.
func (p StatusPolicy) IsActive(s BookingStatus) bool {
	if len(p.Active) == 0 {
		return DefaultActiveStatuses.Has(s)
	}
	return p.Active.Has(s)
}

// ActiveSet returns the configured active set, falling back to the default.
func (p StatusPolicy) ActiveSet() StatusSet {
	if len(p.Active) == 0 {
		return DefaultActiveStatuses
	}
	return p.Active
}

// Validate checks that the active set contains at least booked and in_use.
func (p StatusPolicy) Validate() error {
	set := p.ActiveSet()
	for _, required := range []BookingStatus{StatusBooked, StatusInUse} {
		if !set.Has(required) {
			return fmt.Errorf("active statuses must include %q", required)
		}
	}
	for _, s := range set {
		if !s.IsValid() {
			return fmt.Errorf("unknown active status %q", s)
		}
	}
	return nil
}

// ReconcileTarget returns the status a sweep should persist for b at now and
// whether a write is needed.
//
// Under require_approval, a pending request whose start has passed without a
// decision is rejected so it stops holding the slot.
func (p StatusPolicy) ReconcileTarget(b *Booking, now time.Time) (BookingStatus, bool) {
	if b.Status == StatusPending && p.RequireApproval {
		if !now.Before(b.StartTime) {
			return StatusRejected, true
		}
		return b.Status, false
	}
	if !p.IsAutoDerived(b.Status) {
		return b.Status, false
	}
	derived := DeriveStatus(b.Range(), now)
	return derived, derived != b.Status
}
