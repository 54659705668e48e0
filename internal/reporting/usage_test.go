package reporting

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(&model.Facility{}, &model.Booking{}))
	return store.NewGormStore(gormDB)
}

func seedFacility(t *testing.T, s store.Store) *model.Facility {
	t.Helper()

	// Open 10 hours a day on weekdays, closed on weekends.
	hours := model.WeekHours{}
	for d := time.Monday; d <= time.Friday; d++ {
		hours[model.WeekdayKey(d)] = model.DayHours{Open: "08:00", Close: "18:00"}
	}

	f := &model.Facility{
		Name:           "Tennis Court",
		Capacity:       4,
		HourlyRate:     decimal.RequireFromString("200.00"),
		IsAvailable:    true,
		OperatingHours: datatypes.NewJSONType(hours),
	}
	require.NoError(t, s.CreateFacility(context.Background(), f))
	return f
}

func seedBooking(t *testing.T, s store.Store, facilityID uuid.UUID, day int, start, end string, status model.BookingStatus, amount string) {
	t.Helper()

	minutes := 0
	{
		var sh, sm, eh, em int
		fmt.Sscanf(start, "%d:%d", &sh, &sm)
		fmt.Sscanf(end, "%d:%d", &eh, &em)
		minutes = (eh*60 + em) - (sh*60 + sm)
	}

	b := &model.Booking{
		FacilityID:      facilityID,
		RequesterID:     "u-1",
		BookingDate:     time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC),
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: minutes,
		Status:          status,
		TotalAmount:     decimal.RequireFromString(amount),
	}
	require.NoError(t, s.ReserveBooking(context.Background(), b))
}

func TestService_Usage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	facility := seedFacility(t, s)
	svc := NewService(s)

	// 2026-06-01 is a Monday. Range Mon-Sun covers five open weekdays,
	// 50 open hours.
	seedBooking(t, s, facility.ID, 1, "09:00", "11:00", model.BookingStatusConfirmed, "400.00")
	// Booked before a rate change, so its stored total reflects the old
	// rate of 150/h rather than the facility's current 200/h.
	seedBooking(t, s, facility.ID, 2, "10:00", "11:30", model.BookingStatusConfirmed, "225.00")
	// Pending and cancelled bookings do not count.
	seedBooking(t, s, facility.ID, 3, "09:00", "10:00", model.BookingStatusPending, "200.00")
	seedBooking(t, s, facility.ID, 4, "09:00", "10:00", model.BookingStatusCancelled, "200.00")
	// Outside the report range.
	seedBooking(t, s, facility.ID, 10, "09:00", "10:00", model.BookingStatusConfirmed, "200.00")

	report, err := svc.Usage(ctx, facility.ID, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalBookings)
	assert.True(t, report.TotalHours.Equal(decimal.RequireFromString("3.5")), "hours %s", report.TotalHours)
	assert.True(t, report.TotalRevenue.Equal(decimal.RequireFromString("625.00")), "revenue %s", report.TotalRevenue)
	// 210 booked minutes of 3000 open minutes.
	assert.InDelta(t, 0.07, report.OccupancyRate, 1e-9)
}

func TestService_UsageValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	facility := seedFacility(t, s)
	svc := NewService(s)

	_, err := svc.Usage(ctx, facility.ID, time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.Usage(ctx, uuid.New(), time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, store.ErrFacilityNotFound)
}

func TestService_UsageNeverOpen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	facility := seedFacility(t, s)
	svc := NewService(s)

	// A weekend-only range has zero open minutes; the rate stays 0 rather
	// than dividing by zero.
	report, err := svc.Usage(ctx, facility.ID, time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, report.OccupancyRate)
	assert.Equal(t, 0, report.TotalBookings)
}
