package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func TestNewTimeRange_RejectsEmptyAndInverted(t *testing.T) {
	_, err := NewTimeRange(at(14, 0), at(13, 0))
	assert.ErrorIs(t, err, ErrEmptyRange)

	_, err = NewTimeRange(at(14, 0), at(14, 0))
	assert.ErrorIs(t, err, ErrEmptyRange)

	r, err := NewTimeRange(at(9, 0), at(10, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, r.Duration())
}

func TestNewTimeRange_NormalisesToUTC(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*3600)
	start := time.Date(2026, 3, 10, 16, 0, 0, 0, bangkok)

	r, err := NewTimeRange(start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, r.Start.Location())
	assert.Equal(t, 9, r.Start.Hour())
}

func TestOverlaps(t *testing.T) {
	base := TimeRange{Start: at(10, 0), End: at(11, 0)}

	cases := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"partial tail", TimeRange{at(10, 30), at(11, 30)}, true},
		{"partial head", TimeRange{at(9, 30), at(10, 30)}, true},
		{"contained", TimeRange{at(10, 15), at(10, 45)}, true},
		{"containing", TimeRange{at(9, 0), at(12, 0)}, true},
		{"identical", TimeRange{at(10, 0), at(11, 0)}, true},
		{"touching after", TimeRange{at(11, 0), at(12, 0)}, false},
		{"touching before", TimeRange{at(9, 0), at(10, 0)}, false},
		{"disjoint", TimeRange{at(13, 0), at(14, 0)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestOverlaps_AcrossMidnight(t *testing.T) {
	night := TimeRange{Start: at(23, 0), End: at(23, 0).Add(2 * time.Hour)}
	nextMorning := TimeRange{Start: at(0, 30).Add(24 * time.Hour), End: at(1, 30).Add(24 * time.Hour)}
	sameEvening := TimeRange{Start: at(22, 0), End: at(23, 0)}

	assert.True(t, night.Overlaps(nextMorning))
	assert.False(t, night.Overlaps(sameEvening))
}

func TestOverlaps_SymmetryOverGrid(t *testing.T) {
	var ranges []TimeRange
	for s := 0; s < 6; s++ {
		for d := 1; d <= 3; d++ {
			start := at(8, 0).Add(time.Duration(s) * 30 * time.Minute)
			ranges = append(ranges, TimeRange{Start: start, End: start.Add(time.Duration(d) * 30 * time.Minute)})
		}
	}
	for _, a := range ranges {
		for _, b := range ranges {
			assert.Equal(t, a.Overlaps(b), b.Overlaps(a))
			if a.End.Equal(b.Start) {
				assert.False(t, a.Overlaps(b))
			}
		}
	}
}
