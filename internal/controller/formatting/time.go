package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
)

// FormatDateTime форматирует дату и время в UTC
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.UTC().Format("02.01.2006")
}

// FormatStay форматирует интервал проживания: "10.01.2030 → 15.01.2030 (5 ночей)"
func FormatStay(stay model.Stay) string {
	nights := stay.Nights()
	return fmt.Sprintf("%s → %s (%d %s)",
		FormatDate(stay.CheckIn),
		FormatDate(stay.CheckOut),
		nights,
		PluralizeNights(nights),
	)
}
