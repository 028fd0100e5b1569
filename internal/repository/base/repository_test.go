package base

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	overlap := &pgconn.PgError{Code: pgExclusionViolation, ConstraintName: "bookings_no_overlap"}
	err := MapError(fmt.Errorf("insert: %w", overlap))
	assert.ErrorIs(t, err, ErrOverlap)
	assert.Contains(t, err.Error(), "bookings_no_overlap")

	dup := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "bookings_source_reservation_id_key"}
	assert.ErrorIs(t, MapError(dup), ErrDuplicate)

	check := &pgconn.PgError{Code: "23514"}
	assert.Same(t, check, MapError(check))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, MapError(plain))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("get room: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("boom")))
}
