package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_AdvanceFiresDueTickers(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	f := NewFake(start)
	tk := f.NewTicker(time.Minute)

	f.Advance(30 * time.Second)
	select {
	case <-tk.C:
		t.Fatal("ticker fired early")
	default:
	}

	f.Advance(30 * time.Second)
	select {
	case got := <-tk.C:
		assert.Equal(t, start.Add(time.Minute), got)
	default:
		t.Fatal("ticker did not fire")
	}

	tk.Stop()
	f.Advance(5 * time.Minute)
	select {
	case <-tk.C:
		t.Fatal("stopped ticker fired")
	default:
	}
	assert.Equal(t, start.Add(6*time.Minute), f.Now())
}
