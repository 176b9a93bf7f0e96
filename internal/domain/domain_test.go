package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelRoundTrip(t *testing.T) {
	labels := GridLabels(10, 10)
	require.Len(t, labels, 100)
	assert.Equal(t, "A1", labels[0])
	assert.Equal(t, "J10", labels[99])

	for _, l := range labels {
		row, col, err := ParseLabel(l)
		require.NoError(t, err)
		assert.Equal(t, l, FormatLabel(row, col))
	}
}

func TestValidLabel(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"A1", true},
		{"J10", true},
		{"Z99", true},
		{"a1", false},
		{"A0", false},
		{"A01", false},
		{"AA1", false},
		{"1A", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidLabel(tt.label))
		})
	}
}

func TestNormalizeLabels(t *testing.T) {
	got, err := NormalizeLabels([]string{"B2", "A1", "B2", "A10"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A10", "B2"}, got)

	_, err = NormalizeLabels(nil)
	assert.ErrorIs(t, err, ErrInvalidLabel)

	_, err = NormalizeLabels([]string{"A1", "bad"})
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestShowtimesParseGroup(t *testing.T) {
	st := Showtimes(DefaultShowtimes)

	g, err := st.ParseGroup("3", "15:00")
	require.NoError(t, err)
	assert.Equal(t, GroupID{TheaterID: 3, Showtime: "15:00"}, g)

	_, err = st.ParseGroup("x", "15:00")
	assert.ErrorIs(t, err, ErrInvalidTheater)

	_, err = st.ParseGroup("0", "15:00")
	assert.ErrorIs(t, err, ErrInvalidTheater)

	_, err = st.ParseGroup("1", "11:00")
	assert.ErrorIs(t, err, ErrInvalidShowtime)
}

func TestSeatStateValidate(t *testing.T) {
	exp := time.Now()

	assert.NoError(t, Available().Validate())
	assert.NoError(t, HeldBy("u1", exp).Validate())
	assert.NoError(t, BookedBy("u1").Validate())

	assert.Error(t, SeatState{Status: SeatHeld, Holder: "u1"}.Validate())
	assert.Error(t, SeatState{Status: SeatAvailable, HoldExpiry: &exp}.Validate())
	assert.Error(t, SeatState{Status: SeatHeld, HoldExpiry: &exp}.Validate())
	assert.Error(t, SeatState{Status: "sold"}.Validate())
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	held := Seat{Label: "A1"}.Apply(HeldBy("u1", now.Add(time.Minute)))
	assert.Equal(t, SeatHeld, held.EffectiveStatus(now))
	assert.Equal(t, SeatAvailable, held.EffectiveStatus(now.Add(time.Minute)))

	lapsed := held.Effective(now.Add(2 * time.Minute))
	assert.Equal(t, SeatAvailable, lapsed.Status)
	assert.Empty(t, lapsed.Holder)
	assert.Nil(t, lapsed.HoldExpiry)

	assert.Equal(t, int64(1), held.Version)
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	seats := []Seat{
		{Status: SeatAvailable},
		Seat{}.Apply(HeldBy("u1", now.Add(time.Minute))),
		Seat{}.Apply(HeldBy("u2", now.Add(-time.Minute))),
		Seat{}.Apply(BookedBy("u3")),
	}

	assert.Equal(t, GroupSummary{Available: 2, Held: 1, Booked: 1, Total: 4}, Summarize(seats, now))
}

func TestKindOf(t *testing.T) {
	notFound := NewError(KindNotFound, "Booking not found")
	wrapped := fmt.Errorf("op:%w", notFound)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "Booking not found", Message(wrapped))
	assert.Equal(t, KindInvalid, KindOf(fmt.Errorf("x:%w", ErrInvalidLabel)))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal error", Message(errors.New("boom")))
}
