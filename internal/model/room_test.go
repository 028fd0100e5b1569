package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomStatusForBooking(t *testing.T) {
	tests := []struct {
		status BookingStatus
		want   RoomStatus
		change bool
	}{
		{BookingStatusCancelled, RoomStatusAvailable, true},
		{BookingStatusCompleted, RoomStatusAvailable, true},
		{BookingStatusCheckedOut, RoomStatusAvailable, true},
		{BookingStatusConfirmed, RoomStatusOccupied, true},
		{BookingStatusCheckedIn, RoomStatusOccupied, true},
		{BookingStatusPending, "", false},
		{BookingStatusNoShow, "", false},
	}

	for _, tt := range tests {
		got, ok := RoomStatusForBooking(tt.status)
		assert.Equal(t, tt.change, ok, tt.status)
		assert.Equal(t, tt.want, got, tt.status)
	}
}

func TestRoomFilterMatch(t *testing.T) {
	r := &Room{Type: RoomTypeSuite, Status: RoomStatusAvailable, IsActive: true, Capacity: Capacity{Adults: 2, Children: 1}}

	assert.True(t, RoomFilter{}.Match(r))
	assert.True(t, RoomFilter{Type: RoomTypeSuite, OnlyActive: true, MinCapacity: 3}.Match(r))
	assert.False(t, RoomFilter{MinCapacity: 4}.Match(r))
	assert.False(t, RoomFilter{Status: RoomStatusOccupied}.Match(r))

	r.IsActive = false
	assert.False(t, RoomFilter{OnlyActive: true}.Match(r))
}

func TestRoomTypeIsValid(t *testing.T) {
	assert.Len(t, RoomTypes, 8)
	assert.True(t, RoomTypeDeluxe.IsValid())
	assert.False(t, RoomType("penthouse").IsValid())
}
