package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingTransitions(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
		BookingStatusConfirmed: {BookingStatusCheckedIn, BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow},
		BookingStatusCheckedIn: {BookingStatusCheckedOut},
	}
	all := []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn, BookingStatusCheckedOut,
		BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.True(t, BookingStatusCheckedOut.IsTerminal())
	assert.False(t, BookingStatusConfirmed.IsTerminal())
	assert.False(t, BookingStatus("bogus").IsValid())
}

func TestBookingBlocks(t *testing.T) {
	assert.True(t, BookingStatusConfirmed.Blocks())
	assert.True(t, BookingStatusCheckedIn.Blocks())
	assert.False(t, BookingStatusPending.Blocks())
	assert.False(t, BookingStatusCancelled.Blocks())
}

func TestCalculateRefund(t *testing.T) {
	now := time.Date(2030, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		checkIn time.Time
		want    float64
	}{
		{"more than a day ahead", now.Add(25 * time.Hour), 1000},
		{"within a day", now.Add(10 * time.Hour), 500},
		{"exactly a day", now.Add(24 * time.Hour), 500},
		{"already started", now.Add(-time.Hour), 0},
		{"at check-in", now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{
				Status:     BookingStatusCancelled,
				TotalPrice: 1000,
				Stay:       NewStay(tt.checkIn, tt.checkIn.Add(48*time.Hour)),
			}
			assert.Equal(t, tt.want, b.CalculateRefund(now))
		})
	}
}

func TestCalculateRefundMonotonic(t *testing.T) {
	prev := RefundFor(1000, 72*time.Hour)
	for h := 71; h >= -5; h-- {
		cur := RefundFor(1000, time.Duration(h)*time.Hour)
		assert.LessOrEqual(t, cur, prev, "refund must not grow as check-in approaches (h=%d)", h)
		prev = cur
	}
}

func TestCalculateRefundOnlyForCancelled(t *testing.T) {
	now := time.Now()
	b := &Booking{Status: BookingStatusConfirmed, TotalPrice: 1000, Stay: NewStay(now.Add(72*time.Hour), now.Add(96*time.Hour))}

	assert.Zero(t, b.CalculateRefund(now))
}

func TestApplyStatusStampsOnce(t *testing.T) {
	first := time.Date(2030, time.March, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	b := &Booking{Status: BookingStatusConfirmed}
	b.ApplyStatus(BookingStatusCheckedIn, 7, first)

	assert.Equal(t, BookingStatusCheckedIn, b.Status)
	assert.Equal(t, first, *b.CheckedInAt)
	assert.Equal(t, int64(7), *b.CheckedInBy)

	b.ApplyStatus(BookingStatusCheckedIn, 9, later)
	assert.Equal(t, first, *b.CheckedInAt)
	assert.Equal(t, int64(7), *b.CheckedInBy)
}
