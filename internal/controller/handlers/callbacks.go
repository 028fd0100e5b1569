package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ExecuteCallback выполняет нажатие inline кнопки
func (h *Handlers) ExecuteCallback(ctx context.Context, telegramID int64, data string) Reply {
	action, id, err := ParseCallback(data)
	if err != nil {
		h.logger.Warn("Invalid callback data", zap.String("data", data))
		return text("❓ Неизвестное действие.")
	}

	p, reply, ok := h.requireStaff(ctx, telegramID)
	if !ok {
		return reply
	}

	switch action {
	case ConfirmBooking, CheckInBooking, CheckOutBooking:
		return h.bookingAction(ctx, p, id, action)
	case ShowBooking:
		return h.showBooking(ctx, p, id)
	case ConvertReservation:
		return h.convert(ctx, p, id)
	case ShowReservation:
		return h.showReservation(ctx, p, id)
	}

	return text("❓ Неизвестное действие.")
}

// HandleCallbackQuery отвечает на callback и присылает результат новым сообщением
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	reply := h.ExecuteCallback(ctx, cq.From.ID, cq.Data)

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	if cq.Message.Message == nil {
		return
	}
	h.send(ctx, b, cq.Message.Message.Chat.ID, reply)
}
