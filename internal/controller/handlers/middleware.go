package handlers

import (
	"context"
	"errors"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireStaff находит участника-сотрудника по Telegram ID.
// Если вернулся false, reply уже содержит ответ пользователю.
func (h *Handlers) requireStaff(ctx context.Context, telegramID int64) (model.Principal, Reply, bool) {
	p, err := h.users.StaffByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		return p, Reply{}, true
	case errors.Is(err, service.ErrNotFound):
		return model.Principal{}, text("❌ Аккаунт не привязан. Попросите администратора указать ваш Telegram ID."), false
	case errors.Is(err, service.ErrForbidden):
		return model.Principal{}, text("❌ Эта команда доступна только персоналу отеля."), false
	}

	h.logger.Error("Failed to resolve staff user", zap.Int64("telegram_id", telegramID), zap.Error(err))
	return model.Principal{}, text("❌ Произошла ошибка. Попробуйте позже."), false
}

// send отправляет ответ и логирует если не удалось
func (h *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, reply Reply) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      reply.Text,
		ParseMode: models.ParseModeHTML,
	}
	if reply.Markup != nil {
		params.ReplyMarkup = reply.Markup
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
