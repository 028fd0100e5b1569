package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/controller/formatting"
	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Команды персонала:\n\n" +
	"/pending - Брони и резервы, ждущие действий\n" +
	"/booking ID - Карточка брони\n" +
	"/confirm ID - Подтвердить бронь\n" +
	"/checkin ID - Заселить гостя\n" +
	"/checkout ID - Выселить гостя\n" +
	"/reservation ID - Карточка резерва\n" +
	"/convert ID - Превратить резерв в бронь\n" +
	"/availability ROOM_ID ГГГГ-ММ-ДД ГГГГ-ММ-ДД - Занятость номера\n" +
	"/help - Показать эту справку"

// ParseCommand делит текст на команду и аргументы, отбрасывая @имя_бота
func ParseCommand(msg string) (string, []string) {
	fields := strings.Fields(msg)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}

	cmd := strings.ToLower(fields[0])
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd, fields[1:]
}

func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Execute выполняет текстовую команду от пользователя Telegram
func (h *Handlers) Execute(ctx context.Context, telegramID int64, msg string) Reply {
	cmd, args := ParseCommand(msg)

	switch cmd {
	case "/start":
		return h.start(ctx, telegramID)
	case "/help":
		return text(helpText)
	case "":
		return text("Используйте /help для просмотра доступных команд.")
	}

	p, reply, ok := h.requireStaff(ctx, telegramID)
	if !ok {
		return reply
	}

	switch cmd {
	case "/pending":
		return h.pending(ctx, p)
	case "/availability":
		return h.availability(ctx, args)
	}

	id, ok := parseID(args)
	if !ok {
		return text(fmt.Sprintf("❌ Укажите ID: %s 42", cmd))
	}

	switch cmd {
	case "/booking":
		return h.showBooking(ctx, p, id)
	case "/confirm":
		return h.bookingAction(ctx, p, id, ConfirmBooking)
	case "/checkin":
		return h.bookingAction(ctx, p, id, CheckInBooking)
	case "/checkout":
		return h.bookingAction(ctx, p, id, CheckOutBooking)
	case "/reservation":
		return h.showReservation(ctx, p, id)
	case "/convert":
		return h.convert(ctx, p, id)
	}

	return text("❓ Неизвестная команда. Используйте /help.")
}

func (h *Handlers) start(ctx context.Context, telegramID int64) Reply {
	user, err := h.users.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, service.ErrNotFound) {
		return text(fmt.Sprintf(
			"👋 Привет!\n\nЭтот бот для персонала отеля. Ваш Telegram ID: <code>%d</code>\n"+
				"Передайте его администратору, чтобы получить доступ.", telegramID))
	}
	if err != nil {
		return h.errorReply(err)
	}

	if !user.Principal().IsStaff() {
		return text("👋 Привет! Бот доступен только персоналу отеля.")
	}

	name := user.FullName
	if name == "" {
		name = user.Email
	}
	return text(fmt.Sprintf("👋 Привет, %s!\n\n%s", name, helpText))
}

// pending брони ждут подтверждения, резервы с депозитом ждут конвертации
func (h *Handlers) pending(ctx context.Context, p model.Principal) Reply {
	bookings, err := h.bookings.ListBookings(ctx, p, model.BookingFilter{Status: model.BookingStatusPending})
	if err != nil {
		return h.errorReply(err)
	}
	reservations, err := h.reservations.ListReservations(ctx, p, model.ReservationFilter{Status: model.ReservationStatusConfirmed})
	if err != nil {
		return h.errorReply(err)
	}

	if len(bookings) == 0 && len(reservations) == 0 {
		return text("✨ Нет броней и резервов, ждущих действий.")
	}

	var (
		sb   strings.Builder
		rows [][]models.InlineKeyboardButton
	)

	if len(bookings) > 0 {
		fmt.Fprintf(&sb, "⏳ <b>%d %s ждут подтверждения</b>\n", len(bookings), formatting.PluralizeBookings(len(bookings)))
		for _, b := range bookings {
			fmt.Fprintf(&sb, "#%d · номер %d · %s · %s\n", b.ID, b.RoomID, formatting.FormatStay(b.Stay), formatting.FormatPriceShort(b.TotalPrice))
			rows = append(rows, []models.InlineKeyboardButton{
				button(fmt.Sprintf("✅ #%d", b.ID), ConfirmBooking, b.ID),
				button("ℹ️", ShowBooking, b.ID),
			})
		}
	}

	if len(reservations) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("💳 <b>Резервы с внесённым депозитом</b>\n")
		for _, r := range reservations {
			fmt.Fprintf(&sb, "#%d · номер %d · %s · %s\n", r.ID, r.RoomID, formatting.FormatStay(r.Stay), formatting.FormatPriceShort(r.TotalPrice))
			rows = append(rows, []models.InlineKeyboardButton{
				button(fmt.Sprintf("🔁 #%d", r.ID), ConvertReservation, r.ID),
				button("ℹ️", ShowReservation, r.ID),
			})
		}
	}

	return Reply{Text: strings.TrimRight(sb.String(), "\n"), Markup: markup(rows...)}
}

func (h *Handlers) showBooking(ctx context.Context, p model.Principal, id int64) Reply {
	booking, err := h.bookings.GetBooking(ctx, p, id)
	if err != nil {
		return h.errorReply(err)
	}
	return Reply{Text: formatting.Booking(booking), Markup: markup(bookingActions(booking))}
}

func (h *Handlers) bookingAction(ctx context.Context, p model.Principal, id int64, action string) Reply {
	var (
		booking *model.Booking
		err     error
	)

	switch action {
	case ConfirmBooking:
		booking, err = h.bookings.ConfirmBooking(ctx, p, id)
	case CheckInBooking:
		booking, err = h.bookings.CheckInGuest(ctx, p, id)
	case CheckOutBooking:
		booking, err = h.bookings.CheckOutGuest(ctx, p, id)
	default:
		return text("❓ Неизвестное действие.")
	}
	if err != nil {
		return h.errorReply(err)
	}

	h.logger.Info("Booking updated from bot",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("staff_id", p.ID),
		zap.String("status", string(booking.Status)),
	)

	return Reply{
		Text:   "👌 Готово\n\n" + formatting.Booking(booking),
		Markup: markup(bookingActions(booking)),
	}
}

func (h *Handlers) showReservation(ctx context.Context, p model.Principal, id int64) Reply {
	res, err := h.reservations.GetReservation(ctx, p, id)
	if err != nil {
		return h.errorReply(err)
	}
	return Reply{Text: formatting.Reservation(res), Markup: markup(reservationActions(res))}
}

func (h *Handlers) convert(ctx context.Context, p model.Principal, id int64) Reply {
	booking, _, err := h.reservations.ConvertToBooking(ctx, p, id)
	if err != nil {
		return h.errorReply(err)
	}

	h.logger.Info("Reservation converted from bot",
		zap.Int64("reservation_id", id),
		zap.Int64("booking_id", booking.ID),
		zap.Int64("staff_id", p.ID),
	)

	return Reply{
		Text:   fmt.Sprintf("🔁 Резерв #%d превращён в бронь\n\n%s", id, formatting.Booking(booking)),
		Markup: markup(bookingActions(booking)),
	}
}

func (h *Handlers) availability(ctx context.Context, args []string) Reply {
	usage := text("❌ Формат: /availability ROOM_ID 2030-01-10 2030-01-15")
	if len(args) != 3 {
		return usage
	}

	roomID, ok := parseID(args[:1])
	if !ok {
		return usage
	}
	checkIn, err := time.Parse(time.DateOnly, args[1])
	if err != nil {
		return usage
	}
	checkOut, err := time.Parse(time.DateOnly, args[2])
	if err != nil {
		return usage
	}

	claims, err := h.rooms.CheckAvailability(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return h.errorReply(err)
	}

	stay := formatting.FormatStay(model.NewStay(checkIn, checkOut))
	if len(claims) == 0 {
		return text(fmt.Sprintf("🟢 Номер %d свободен: %s", roomID, stay))
	}

	lines := []string{fmt.Sprintf("🔴 Номер %d занят: %s", roomID, stay)}
	for _, c := range claims {
		lines = append(lines, formatting.Claim(c))
	}
	return text(strings.Join(lines, "\n"))
}

// HandleMessage обрабатывает текстовые команды
func (h *Handlers) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	reply := h.Execute(ctx, update.Message.From.ID, update.Message.Text)
	h.send(ctx, b, update.Message.Chat.ID, reply)
}
