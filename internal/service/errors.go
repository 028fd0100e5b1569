package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/hotel_manager/internal/model"
)

// Виды ошибок доменного ядра. Транспорт сопоставляет их с кодами ответа через errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("room is not available for the requested dates")
	ErrForbidden         = errors.New("operation not permitted")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrExpired           = errors.New("reservation has expired")
	ErrAlreadyConverted  = errors.New("reservation already converted to booking")
)

// ValidationError ошибки входных данных по полям
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil возвращает nil, если ошибок нет
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Fields[f], ", "))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// ConflictError пересечение с существующими бронями или резервами
type ConflictError struct {
	RoomID int64
	Claims []model.OccupancyClaim
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Claims))
	for _, c := range e.Claims {
		ids = append(ids, fmt.Sprintf("%s#%d", c.Kind, c.ID))
	}
	if len(ids) == 0 {
		return fmt.Sprintf("room %d: %s", e.RoomID, ErrConflict)
	}
	return fmt.Sprintf("room %d: %s (%s)", e.RoomID, ErrConflict, strings.Join(ids, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// TransitionError переход статуса, которого нет в таблице переходов
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %s", e.Entity, e.From, e.To, ErrInvalidTransition)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func bookingTransition(from, to model.BookingStatus) *TransitionError {
	return &TransitionError{Entity: "booking", From: string(from), To: string(to)}
}

func reservationTransition(from, to model.ReservationStatus) *TransitionError {
	return &TransitionError{Entity: "reservation", From: string(from), To: string(to)}
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

func forbidden(action string) error {
	return fmt.Errorf("%s: %w", action, ErrForbidden)
}
