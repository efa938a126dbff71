package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	r := TimeRange{Start: at(10, 0), End: at(11, 0)}

	assert.Equal(t, StatusBooked, DeriveStatus(r, at(9, 59)))
	assert.Equal(t, StatusInUse, DeriveStatus(r, at(10, 0)))
	assert.Equal(t, StatusInUse, DeriveStatus(r, at(10, 30)))
	assert.Equal(t, StatusInUse, DeriveStatus(r, at(11, 0)))
	assert.Equal(t, StatusCompleted, DeriveStatus(r, at(11, 0).Add(time.Second)))
}

func TestDeriveStatus_Monotonic(t *testing.T) {
	r := TimeRange{Start: at(10, 0), End: at(11, 0)}
	rank := map[BookingStatus]int{StatusBooked: 0, StatusInUse: 1, StatusCompleted: 2}

	prev := -1
	for now := at(9, 0); now.Before(at(12, 0)); now = now.Add(7 * time.Minute) {
		got := DeriveStatus(r, now)
		rk, ok := rank[got]
		require.True(t, ok, "unexpected status %s", got)
		assert.GreaterOrEqual(t, rk, prev)
		prev = rk
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]BookingStatus{
		"pending":   StatusPending,
		"PENDING":   StatusPending,
		"BOOKED":    StatusBooked,
		"IN_USE":    StatusInUse,
		"completed": StatusCompleted,
		"confirmed": StatusBooked,
		"CONFIRMED": StatusBooked,
		"cancelled": StatusCancelled,
		"canceled":  StatusCancelled,
		" rejected": StatusRejected,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)
}

func TestStatusPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultStatusPolicy().Validate())
	assert.NoError(t, StatusPolicy{Active: StatusSet{StatusBooked, StatusInUse}}.Validate())
	assert.Error(t, StatusPolicy{Active: StatusSet{StatusPending, StatusBooked}}.Validate())
	assert.Error(t, StatusPolicy{Active: StatusSet{StatusBooked, StatusInUse, "archived"}}.Validate())
}

func TestReconcileTarget(t *testing.T) {
	b := &Booking{StartTime: at(10, 0), EndTime: at(11, 0)}
	policy := DefaultStatusPolicy()

	b.Status = StatusBooked
	got, changed := policy.ReconcileTarget(b, at(10, 15))
	assert.Equal(t, StatusInUse, got)
	assert.True(t, changed)

	b.Status = StatusInUse
	_, changed = policy.ReconcileTarget(b, at(10, 15))
	assert.False(t, changed)

	b.Status = StatusPending
	got, changed = policy.ReconcileTarget(b, at(9, 0))
	assert.Equal(t, StatusBooked, got)
	assert.True(t, changed)

	for _, terminal := range []BookingStatus{StatusCompleted, StatusCancelled, StatusRejected} {
		b.Status = terminal
		got, changed = policy.ReconcileTarget(b, at(10, 15))
		assert.Equal(t, terminal, got)
		assert.False(t, changed)
	}
}

func TestReconcileTarget_RequireApproval(t *testing.T) {
	b := &Booking{StartTime: at(10, 0), EndTime: at(11, 0), Status: StatusPending}
	policy := StatusPolicy{Active: DefaultActiveStatuses, RequireApproval: true}

	got, changed := policy.ReconcileTarget(b, at(9, 0))
	assert.Equal(t, StatusPending, got)
	assert.False(t, changed)

	got, changed = policy.ReconcileTarget(b, at(10, 0))
	assert.Equal(t, StatusRejected, got)
	assert.True(t, changed)
	assert.Equal(t, StatusRejected, b.EffectiveStatus(at(10, 0), policy))
}

func TestStatusSpellings(t *testing.T) {
	assert.ElementsMatch(t, []string{"booked", "confirmed"}, StatusBooked.Spellings())
	assert.ElementsMatch(t, []string{"in_use", "inuse", "in-use"}, StatusInUse.Spellings())
	assert.Equal(t, []string{"rejected"}, StatusRejected.Spellings())

	for _, s := range AllStatuses() {
		for _, spelling := range s.Spellings() {
			got, err := ParseStatus(spelling)
			require.NoError(t, err, spelling)
			assert.Equal(t, s, got, spelling)
		}
	}
}
