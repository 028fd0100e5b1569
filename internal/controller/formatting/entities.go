package formatting

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/hotel_manager/internal/model"
)

// Booking карточка брони для персонала, HTML
func Booking(b *model.Booking) string {
	var sb strings.Builder

	guests := b.Guests.Total()
	fmt.Fprintf(&sb, "🏨 <b>Бронь #%d</b>\n\n", b.ID)
	fmt.Fprintf(&sb, "📊 Статус: %s\n", BookingStatus(b.Status))
	fmt.Fprintf(&sb, "🚪 Номер ID: %d\n", b.RoomID)
	fmt.Fprintf(&sb, "📅 %s\n", FormatStay(b.Stay))
	fmt.Fprintf(&sb, "👥 %d %s (взрослых: %d, детей: %d)\n", guests, PluralizeGuests(guests), b.Guests.Adults, b.Guests.Children)
	fmt.Fprintf(&sb, "💰 %s", FormatPrice(b.TotalPrice))
	if b.IsPaid {
		sb.WriteString(" · оплачено")
	}
	sb.WriteString("\n")

	if b.SourceReservationID != nil {
		fmt.Fprintf(&sb, "🔁 Из резерва #%d\n", *b.SourceReservationID)
	}
	if b.RefundAmount != nil {
		fmt.Fprintf(&sb, "↩️ Возврат: %s\n", FormatPrice(*b.RefundAmount))
	}
	if b.SpecialRequests != "" {
		fmt.Fprintf(&sb, "📝 %s\n", html.EscapeString(b.SpecialRequests))
	}
	if b.CancellationReason != "" {
		fmt.Fprintf(&sb, "❔ Причина отмены: %s\n", html.EscapeString(b.CancellationReason))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Reservation карточка резерва для персонала, HTML
func Reservation(r *model.Reservation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📌 <b>Резерв #%d</b>\n\n", r.ID)
	fmt.Fprintf(&sb, "📊 Статус: %s\n", ReservationStatus(r.Status))
	fmt.Fprintf(&sb, "🚪 Номер ID: %d\n", r.RoomID)
	fmt.Fprintf(&sb, "📅 %s\n", FormatStay(r.Stay))
	fmt.Fprintf(&sb, "👥 %d %s\n", r.GuestCount, PluralizeGuests(r.GuestCount))
	fmt.Fprintf(&sb, "💰 %s, депозит %s", FormatPrice(r.TotalPrice), FormatPrice(r.DepositAmount))
	if r.DepositPaid {
		sb.WriteString(" · внесён")
	}
	sb.WriteString("\n")

	if r.Status == model.ReservationStatusPending {
		fmt.Fprintf(&sb, "⌛️ Действует до %s UTC\n", FormatDateTime(r.ExpiresAt))
	}
	if r.ConvertedToBooking != nil {
		fmt.Fprintf(&sb, "🏨 Бронь #%d\n", *r.ConvertedToBooking)
	}
	if r.SpecialRequests != "" {
		fmt.Fprintf(&sb, "📝 %s\n", html.EscapeString(r.SpecialRequests))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Claim строка конфликта: "🏨 бронь #3 · 10.01.2030 → 15.01.2030 (5 ночей)"
func Claim(c model.OccupancyClaim) string {
	kind := "🏨 бронь"
	if c.Kind == model.ClaimKindReservation {
		kind = "📌 резерв"
	}
	return fmt.Sprintf("%s #%d · %s", kind, c.ID, FormatStay(c.Stay))
}

var eventTitles = map[model.EventType]string{
	model.EventBookingCreated:       "🆕 Новая бронь",
	model.EventBookingStatusChanged: "🔄 Статус брони изменён",
	model.EventBookingCancelled:     "❌ Бронь отменена",
	model.EventReservationCreated:   "🆕 Новый резерв",
	model.EventReservationConfirmed: "💳 Резерв подтверждён",
	model.EventReservationCancelled: "❌ Резерв отменён",
	model.EventReservationExpired:   "⌛️ Резерв истёк",
	model.EventReservationConverted: "🔁 Резерв превращён в бронь",
}

// Event уведомление для чата персонала
func Event(e model.Event) string {
	title, ok := eventTitles[e.Type]
	if !ok {
		title = "ℹ️ " + string(e.Type)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", title)
	if e.BookingID != 0 {
		fmt.Fprintf(&sb, "🏨 Бронь #%d\n", e.BookingID)
	}
	if e.ReservationID != 0 {
		fmt.Fprintf(&sb, "📌 Резерв #%d\n", e.ReservationID)
	}
	fmt.Fprintf(&sb, "🚪 Номер ID: %d\n", e.RoomID)
	fmt.Fprintf(&sb, "📅 %s\n", FormatStay(e.Stay))
	fmt.Fprintf(&sb, "📊 Статус: %s", e.Status)
	if e.Amount > 0 {
		fmt.Fprintf(&sb, "\n💰 %s", FormatPrice(e.Amount))
	}

	return sb.String()
}
