package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/controller/formatting"
	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

// MessageSender часть *bot.Bot, нужная уведомителю
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// StaffNotifier пересылает события жизненного цикла в чат персонала.
// Отправка асинхронная и не влияет на уже зафиксированную операцию.
type StaffNotifier struct {
	sender MessageSender
	chatID int64
	logger *zap.Logger
}

func NewStaffNotifier(sender MessageSender, chatID int64, logger *zap.Logger) *StaffNotifier {
	return &StaffNotifier{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

func (n *StaffNotifier) Publish(ctx context.Context, event model.Event) {
	ctx = context.WithoutCancel(ctx)
	go n.send(ctx, event)
}

func (n *StaffNotifier) send(ctx context.Context, event model.Event) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      formatting.Event(event),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		n.logger.Warn("Failed to notify staff chat",
			zap.String("event", string(event.Type)),
			zap.Int64("chat_id", n.chatID),
			zap.Error(err),
		)
		return
	}

	n.logger.Debug("Staff chat notified", zap.String("event", string(event.Type)))
}
