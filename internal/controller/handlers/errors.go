package handlers

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/Freeeeeet/hotel_manager/internal/controller/formatting"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"go.uber.org/zap"
)

// errorReply переводит ошибку доменного ядра в сообщение для персонала
func (h *Handlers) errorReply(err error) Reply {
	var (
		verr       *service.ValidationError
		conflict   *service.ConflictError
		transition *service.TransitionError
	)

	switch {
	case errors.As(err, &verr):
		fields := make([]string, 0, len(verr.Fields))
		for field, msgs := range verr.Fields {
			fields = append(fields, fmt.Sprintf("• %s: %s", field, html.EscapeString(strings.Join(msgs, "; "))))
		}
		sort.Strings(fields)
		return text("❌ Некорректные данные:\n" + strings.Join(fields, "\n"))

	case errors.As(err, &conflict):
		lines := []string{"⛔️ Номер занят на эти даты:"}
		for _, c := range conflict.Claims {
			lines = append(lines, formatting.Claim(c))
		}
		return text(strings.Join(lines, "\n"))

	case errors.As(err, &transition):
		return text(fmt.Sprintf("⚠️ Нельзя перевести из «%s» в «%s».", transition.From, transition.To))

	case errors.Is(err, service.ErrNotFound):
		return text("🔍 Не найдено.")
	case errors.Is(err, service.ErrForbidden):
		return text("🚫 Недостаточно прав.")
	case errors.Is(err, service.ErrExpired):
		return text("⌛️ Резерв истёк.")
	case errors.Is(err, service.ErrAlreadyConverted):
		return text("🔁 Резерв уже превращён в бронь.")
	}

	h.logger.Error("Bot command failed", zap.Error(err))
	return text("❌ Произошла ошибка. Попробуйте позже.")
}
