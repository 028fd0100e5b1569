package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `id, room_id, guest_id, check_in_date, check_out_date, guest_count, total_price,
	deposit_amount, deposit_paid, deposit_paid_at, payment_method, payment_reference,
	identification_document, special_requests, status, expires_at, converted_to_booking,
	cancelled_at, cancelled_by, cancellation_reason, created_at, updated_at`

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(pool)}
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.RoomID,
		&res.GuestID,
		&res.Stay.CheckIn,
		&res.Stay.CheckOut,
		&res.GuestCount,
		&res.TotalPrice,
		&res.DepositAmount,
		&res.DepositPaid,
		&res.DepositPaidAt,
		&res.PaymentMethod,
		&res.PaymentReference,
		&res.IdentificationDocument,
		&res.SpecialRequests,
		&res.Status,
		&res.ExpiresAt,
		&res.ConvertedToBooking,
		&res.CancelledAt,
		&res.CancelledBy,
		&res.CancellationReason,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

// Create создаёт резерв. created_at и expires_at задаёт сервис, чтобы срок
// всегда был ровно created_at + 48 часов.
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (room_id, guest_id, check_in_date, check_out_date, guest_count, total_price,
			deposit_amount, deposit_paid, identification_document, special_requests, status, expires_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING id
	`

	err := r.QueryRow(
		ctx, query,
		res.RoomID,
		res.GuestID,
		res.Stay.CheckIn,
		res.Stay.CheckOut,
		res.GuestCount,
		res.TotalPrice,
		res.DepositAmount,
		res.DepositPaid,
		res.IdentificationDocument,
		res.SpecialRequests,
		res.Status,
		res.ExpiresAt,
		res.CreatedAt,
	).Scan(&res.ID)

	if err != nil {
		return fmt.Errorf("create reservation: %w", base.MapError(err))
	}

	res.UpdatedAt = res.CreatedAt
	return nil
}

// GetByID получает резерв по ID
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return res, nil
}

// LockByID получает резерв с блокировкой строки
func (r *ReservationRepository) LockByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`

	res, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock reservation: %w", err)
	}

	return res, nil
}

// Update сохраняет изменяемые поля резерва. expires_at не меняется никогда.
func (r *ReservationRepository) Update(ctx context.Context, res *model.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $1, deposit_paid = $2, deposit_paid_at = $3, payment_method = $4, payment_reference = $5,
			converted_to_booking = $6, cancelled_at = $7, cancelled_by = $8, cancellation_reason = $9,
			updated_at = now()
		WHERE id = $10
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		res.Status,
		res.DepositPaid,
		res.DepositPaidAt,
		res.PaymentMethod,
		res.PaymentReference,
		res.ConvertedToBooking,
		res.CancelledAt,
		res.CancelledBy,
		res.CancellationReason,
		res.ID,
	).Scan(&res.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("reservation %d not found", res.ID)
		}
		return fmt.Errorf("update reservation: %w", base.MapError(err))
	}

	return nil
}

// Delete удаляет резерв. Связанная бронь не затрагивается.
func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM reservations WHERE id = $1`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("reservation %d not found", id)
	}

	return nil
}

// List получает резервы по фильтру
func (r *ReservationRepository) List(ctx context.Context, filter model.ReservationFilter) ([]*model.Reservation, error) {
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

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	return collectReservations(rows)
}

// FindOverlapping получает активные резервы, пересекающие интервал.
// Просроченный pending резерв не блокирует номер, даже если его статус ещё не обновлён.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, q model.ClaimQuery) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id = $1
		  AND (status = 'confirmed' OR (status = 'pending' AND expires_at > $2))
		  AND check_in_date < $3
		  AND check_out_date > $4
		  AND id <> $5
		ORDER BY check_in_date
	`

	rows, err := r.Query(ctx, query, q.RoomID, q.Now, q.Stay.CheckOut, q.Stay.CheckIn, q.ExcludeReservationID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping reservations: %w", err)
	}

	return collectReservations(rows)
}

// ExpireStale помечает просроченные pending резервы как expired
func (r *ReservationRepository) ExpireStale(ctx context.Context, now time.Time) ([]*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = 'expired', updated_at = $1
		WHERE status = 'pending' AND expires_at <= $1
		RETURNING ` + reservationColumns

	rows, err := r.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("expire stale reservations: %w", err)
	}

	return collectReservations(rows)
}
