package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2030, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestStayOverlaps(t *testing.T) {
	base := NewStay(day(10), day(15))

	tests := []struct {
		name  string
		other Stay
		want  bool
	}{
		{"inside", NewStay(day(12), day(14)), true},
		{"covering", NewStay(day(9), day(16)), true},
		{"tail overlap", NewStay(day(14), day(18)), true},
		{"head overlap", NewStay(day(8), day(11)), true},
		{"adjacent after", NewStay(day(15), day(18)), false},
		{"adjacent before", NewStay(day(5), day(10)), false},
		{"disjoint", NewStay(day(20), day(22)), false},
		{"identical", NewStay(day(10), day(15)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestStayOverlapsUsesRawInstants(t *testing.T) {
	a := NewStay(day(10).Add(14*time.Hour), day(12).Add(11*time.Hour))
	b := NewStay(day(12).Add(10*time.Hour), day(13))

	assert.True(t, a.Overlaps(b))
}

func TestStayNights(t *testing.T) {
	assert.Equal(t, 5, NewStay(day(10), day(15)).Nights())
	assert.Equal(t, 1, NewStay(day(10), day(10).Add(2*time.Hour)).Nights())
	assert.Equal(t, 0, NewStay(day(10), day(10)).Nights())
	assert.False(t, NewStay(day(10), day(9)).Valid())
}
