package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etukas/marketplace/internal/model"
)

const getBookingQ = `FROM bookings WHERE id=\? LIMIT 1`

func bookingRow(id, customerID, sellerID int64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "listing_id", "seller_id", "status", "date",
		"duration", "total_price", "notes", "customer_lat", "customer_lng", "created_at", "updated_at"}).
		AddRow(id, customerID, 3, sellerID, status, now, 2, 2500.0, nil, nil, nil, now, now)
}

func TestBookingUpdateStatusNonParty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepo(db)

	// Actor 9 is neither the booking's customer (1) nor its seller (2);
	// the status must stay untouched.
	mock.ExpectQuery(getBookingQ).WillReturnRows(bookingRow(5, 1, 2, model.BookingPending))

	_, err = repo.UpdateStatus(context.Background(), 5, 9, false, model.BookingConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusParty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectQuery(getBookingQ).WillReturnRows(bookingRow(5, 1, 2, model.BookingPending))
	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).
		WithArgs(model.BookingConfirmed, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := repo.UpdateStatus(context.Background(), 5, 2, false, model.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusAdminBypass(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepo(db)

	// An admin who is not a party may still move the booking.
	mock.ExpectQuery(getBookingQ).WillReturnRows(bookingRow(5, 1, 2, model.BookingPending))
	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).
		WithArgs(model.BookingCancelled, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := repo.UpdateStatus(context.Background(), 5, 99, true, model.BookingCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusInvalidTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepo(db)

	// Terminal states are frozen even for a party.
	mock.ExpectQuery(getBookingQ).WillReturnRows(bookingRow(5, 1, 2, model.BookingCancelled))

	_, err = repo.UpdateStatus(context.Background(), 5, 1, false, model.BookingConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}
