package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/parse"
	"facility-booking-backend/internal/store"
)

// UsageReport is the read model external reporting consumes.
type UsageReport struct {
	FacilityID    uuid.UUID       `json:"facility_id"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TotalBookings int             `json:"total_bookings"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	// OccupancyRate is booked hours divided by the facility's open hours
	// in the range; 0 when the facility was never open.
	OccupancyRate float64 `json:"occupancy_rate"`
}

// Service computes read-only usage rollups from confirmed bookings.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Usage aggregates confirmed (including since-completed) bookings for a
// facility over [from, to]. Revenue sums each booking's stored total, not
// a recomputation from the current hourly rate, so past rate changes do
// not rewrite history.
func (s *Service) Usage(ctx context.Context, facilityID uuid.UUID, from, to time.Time) (*UsageReport, error) {
	from = model.DateOnly(from)
	to = model.DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: report range end before start", store.ErrValidation)
	}

	facility, err := s.store.GetFacility(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.store.ListBookingsInRange(ctx, facilityID, from, to,
		[]model.BookingStatus{model.BookingStatusConfirmed})
	if err != nil {
		return nil, err
	}

	report := &UsageReport{
		FacilityID:   facilityID,
		From:         from,
		To:           to,
		TotalHours:   decimal.Zero,
		TotalRevenue: decimal.Zero,
	}

	bookedMinutes := 0
	for i := range bookings {
		report.TotalBookings++
		bookedMinutes += bookings[i].DurationMinutes
		report.TotalRevenue = report.TotalRevenue.Add(bookings[i].TotalAmount)
	}
	report.TotalHours = decimal.NewFromInt(int64(bookedMinutes)).
		Div(decimal.NewFromInt(60)).Round(2)

	openMinutes, err := openMinutesInRange(facility, from, to)
	if err != nil {
		return nil, err
	}
	if openMinutes > 0 {
		report.OccupancyRate = float64(bookedMinutes) / float64(openMinutes)
	}
	return report, nil
}

// openMinutesInRange walks the range day by day and totals the operating
// window of each open weekday.
func openMinutesInRange(f *model.Facility, from, to time.Time) (int, error) {
	hours := f.OperatingHours.Data()
	total := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := hours.For(d.Weekday())
		if day.Closed {
			continue
		}
		open, close, err := parse.ClockRange(day.Open, day.Close)
		if err != nil {
			return 0, fmt.Errorf("facility %s has malformed hours for %s: %w", f.ID, d.Weekday(), err)
		}
		total += close - open
	}
	return total, nil
}
