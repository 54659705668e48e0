package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"facility-booking-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_HasConflict(t *testing.T) {
	facilityID := uuid.New()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectConflict   bool
		expectErr        bool
	}{
		{
			name: "Overlapping active booking reports a conflict",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
			},
			expectConflict: true,
		},
		{
			name: "No overlapping booking reports no conflict",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			},
			expectConflict: false,
		},
		{
			name: "Query failure surfaces as an error, never as a free slot",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
					WillReturnError(errors.New("connection reset"))
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			conflict, err := store.HasConflict(context.Background(), facilityID, date, "10:00", "11:00", nil)

			if tc.expectErr {
				assert.Error(t, err)
				assert.False(t, conflict)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectConflict, conflict)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_ReserveBookingConflictRollsBack(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	b := testBooking()
	err := store.ReserveBooking(context.Background(), b)

	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ReserveBookingMapsExclusionViolation(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bookings"`)).
		WillReturnError(errors.New(`ERROR: conflicting key value violates exclusion constraint "bookings_slot_excl" (SQLSTATE 23P01)`))
	mock.ExpectRollback()

	b := testBooking()
	err := store.ReserveBooking(context.Background(), b)

	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func testBooking() *model.Booking {
	return &model.Booking{
		ID:          uuid.New(),
		FacilityID:  uuid.New(),
		RequesterID: "u-100",
		BookingDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		EndTime:     "11:00",
		Status:      model.BookingStatusPending,
	}
}
