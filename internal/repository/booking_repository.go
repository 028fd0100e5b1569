package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, room_id, guest_id, check_in_date, check_out_date, adults, children, total_price,
	status, special_requests, identification_document, source_reservation_id, is_paid, paid_at,
	payment_method, payment_reference, payment_result, refund_amount, checked_in_at, checked_in_by,
	checked_out_at, checked_out_by, cancelled_at, cancelled_by, cancellation_reason, internal_notes,
	created_at, updated_at`

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		booking       model.Booking
		paymentResult []byte
	)
	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.GuestID,
		&booking.Stay.CheckIn,
		&booking.Stay.CheckOut,
		&booking.Guests.Adults,
		&booking.Guests.Children,
		&booking.TotalPrice,
		&booking.Status,
		&booking.SpecialRequests,
		&booking.IdentificationDocument,
		&booking.SourceReservationID,
		&booking.IsPaid,
		&booking.PaidAt,
		&booking.PaymentMethod,
		&booking.PaymentReference,
		&paymentResult,
		&booking.RefundAmount,
		&booking.CheckedInAt,
		&booking.CheckedInBy,
		&booking.CheckedOutAt,
		&booking.CheckedOutBy,
		&booking.CancelledAt,
		&booking.CancelledBy,
		&booking.CancellationReason,
		&booking.InternalNotes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(paymentResult) > 0 {
		booking.PaymentResult = json.RawMessage(paymentResult)
	}
	return &booking, nil
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func notesOrEmpty(notes []model.InternalNote) []model.InternalNote {
	if notes == nil {
		return []model.InternalNote{}
	}
	return notes
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (room_id, guest_id, check_in_date, check_out_date, adults, children, total_price,
			status, special_requests, identification_document, source_reservation_id, is_paid,
			payment_method, payment_reference, internal_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.RoomID,
		booking.GuestID,
		booking.Stay.CheckIn,
		booking.Stay.CheckOut,
		booking.Guests.Adults,
		booking.Guests.Children,
		booking.TotalPrice,
		booking.Status,
		booking.SpecialRequests,
		booking.IdentificationDocument,
		booking.SourceReservationID,
		booking.IsPaid,
		booking.PaymentMethod,
		booking.PaymentReference,
		notesOrEmpty(booking.InternalNotes),
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", base.MapError(err))
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// LockByID получает бронирование с блокировкой строки
func (r *BookingRepository) LockByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}

	return booking, nil
}

// Update сохраняет изменяемые поля бронирования
func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, special_requests = $2, is_paid = $3, paid_at = $4, payment_method = $5,
			payment_reference = $6, payment_result = $7, refund_amount = $8, checked_in_at = $9,
			checked_in_by = $10, checked_out_at = $11, checked_out_by = $12, cancelled_at = $13,
			cancelled_by = $14, cancellation_reason = $15, internal_notes = $16, updated_at = now()
		WHERE id = $17
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.Status,
		booking.SpecialRequests,
		booking.IsPaid,
		booking.PaidAt,
		booking.PaymentMethod,
		booking.PaymentReference,
		nullableJSON(booking.PaymentResult),
		booking.RefundAmount,
		booking.CheckedInAt,
		booking.CheckedInBy,
		booking.CheckedOutAt,
		booking.CheckedOutBy,
		booking.CancelledAt,
		booking.CancelledBy,
		booking.CancellationReason,
		notesOrEmpty(booking.InternalNotes),
		booking.ID,
	).Scan(&booking.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("booking %d not found", booking.ID)
		}
		return fmt.Errorf("update booking: %w", base.MapError(err))
	}

	return nil
}

// List получает бронирования по фильтру
func (r *BookingRepository) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	var (
		conds []string
		args  []any
	)

	if filter.GuestID != 0 {
		args = append(args, filter.GuestID)
		conds = append(conds, fmt.Sprintf("guest_id = $%d", len(args)))
	}
	if filter.RoomID != 0 {
		args = append(args, filter.RoomID)
		conds = append(conds, fmt.Sprintf("room_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY check_in_date DESC`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return collectBookings(rows)
}

// FindOverlapping получает брони в блокирующих статусах, пересекающие интервал.
// Интервалы полуоткрытые: заезд в день выезда предыдущего гостя не конфликтует.
func (r *BookingRepository) FindOverlapping(ctx context.Context, q model.ClaimQuery) ([]*model.Booking, error) {
	statuses := make([]string, 0, len(model.BookingBlockingStatuses))
	for _, s := range model.BookingBlockingStatuses {
		statuses = append(statuses, string(s))
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_id = $1
		  AND status = ANY($2)
		  AND check_in_date < $3
		  AND check_out_date > $4
		  AND id <> $5
		ORDER BY check_in_date
	`

	rows, err := r.Query(ctx, query, q.RoomID, statuses, q.Stay.CheckOut, q.Stay.CheckIn, q.ExcludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}

	return collectBookings(rows)
}
