package model

import "time"

// Stay полуоткрытый интервал проживания [CheckIn, CheckOut)
type Stay struct {
	CheckIn  time.Time `json:"check_in_date"`
	CheckOut time.Time `json:"check_out_date"`
}

// NewStay создаёт интервал, время приводится к UTC
func NewStay(checkIn, checkOut time.Time) Stay {
	return Stay{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
}

// Valid проверяет что выезд строго после заезда
func (s Stay) Valid() bool {
	return s.CheckOut.After(s.CheckIn)
}

// Overlaps сравнивает моменты времени без нормализации до дня:
// [a,b) и [c,d) пересекаются тогда и только тогда, когда a < d && b > c.
func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && s.CheckOut.After(other.CheckIn)
}

// Nights количество ночей, неполные сутки округляются вверх
func (s Stay) Nights() int {
	if !s.Valid() {
		return 0
	}
	d := s.CheckOut.Sub(s.CheckIn)
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}
