package service

import (
	"context"

	"github.com/Freeeeeet/hotel_manager/internal/model"
)

// Notifier получает события после коммита. Ошибки доставки не влияют на операцию.
type Notifier interface {
	Publish(ctx context.Context, event model.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, model.Event) {}

// NopNotifier используется, когда уведомления отключены
func NopNotifier() Notifier {
	return nopNotifier{}
}
