package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"facility-booking-backend/internal/model"
)

// activeStatuses are the statuses that occupy a slot.
var activeStatuses = []model.BookingStatus{
	model.BookingStatusPending,
	model.BookingStatusConfirmed,
}

// HasConflict reports whether any pending or confirmed booking on the given
// facility and date overlaps the half-open interval [startTime, endTime).
// Two intervals overlap iff s1 < e2 AND s2 < e1; touching endpoints do not
// conflict. A query failure propagates as an error and is never reported as
// "no conflict".
func (s *gormStore) HasConflict(ctx context.Context, facilityID uuid.UUID, date time.Time, startTime, endTime string, excludeID *uuid.UUID) (bool, error) {
	return hasConflict(s.db.WithContext(ctx), facilityID, date, startTime, endTime, excludeID)
}

func hasConflict(tx *gorm.DB, facilityID uuid.UUID, date time.Time, startTime, endTime string, excludeID *uuid.UUID) (bool, error) {
	q := tx.Model(&model.Booking{}).
		Where("facility_id = ?", facilityID).
		Where("booking_date = ?", model.DateOnly(date)).
		Where("status IN ?", activeStatuses).
		Where("start_time < ? AND end_time > ?", endTime, startTime)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("conflict query for facility %s on %s: %w", facilityID, date.Format("2006-01-02"), err)
	}
	return count > 0, nil
}

// ReserveBooking inserts a booking only if its slot is still free. The
// conflict re-check and the insert run in one transaction, and on Postgres
// the bookings_slot_excl exclusion constraint backstops concurrent writers
// that both pass the check.
func (s *gormStore) ReserveBooking(ctx context.Context, b *model.Booking) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conflict, err := hasConflict(tx, b.FacilityID, b.BookingDate, b.StartTime, b.EndTime, nil)
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("facility %s on %s %s-%s: %w",
				b.FacilityID, b.BookingDate.Format("2006-01-02"), b.StartTime, b.EndTime, ErrSlotConflict)
		}
		return tx.Create(b).Error
	})
	if err != nil && strings.Contains(err.Error(), "bookings_slot_excl") {
		return fmt.Errorf("facility %s on %s %s-%s: %w",
			b.FacilityID, b.BookingDate.Format("2006-01-02"), b.StartTime, b.EndTime, ErrSlotConflict)
	}
	return err
}

func (s *gormStore) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %s: %w", id, ErrBookingNotFound)
		}
		return nil, err
	}
	return &b, nil
}

func (s *gormStore) ListBookings(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Where("booking_date = ?", model.DateOnly(date)).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *gormStore) ListBookingsInRange(ctx context.Context, facilityID uuid.UUID, from, to time.Time, statuses []model.BookingStatus) ([]model.Booking, error) {
	var bookings []model.Booking
	q := s.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Where("booking_date >= ? AND booking_date <= ?", model.DateOnly(from), model.DateOnly(to))
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("booking_date ASC, start_time ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *gormStore) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus, cancelledAt *time.Time) error {
	update := map[string]any{"status": status}
	if cancelledAt != nil {
		update["cancelled_at"] = *cancelledAt
	}
	res := s.db.WithContext(ctx).Model(&model.Booking{}).Where("id = ?", id).Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %s: %w", id, ErrBookingNotFound)
	}
	return nil
}

// ApplyDecision performs the approval as one atomic unit: the approval
// record, the booking status flip, and the outbox row either all land or
// none do. The booking row is only touched while still pending, so a pair
// of racing decisions cannot both apply.
func (s *gormStore) ApplyDecision(ctx context.Context, booking *model.Booking, record *model.ApprovalRecord, note *model.NotificationOutbox) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", booking.ID, model.BookingStatusPending).
			Updates(map[string]any{
				"status":       booking.Status,
				"approved_by":  booking.ApprovedBy,
				"approved_at":  booking.ApprovedAt,
				"cancelled_at": booking.CancelledAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("booking %s is no longer pending: %w", booking.ID, ErrInvalidState)
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if note != nil {
			if err := tx.Create(note).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *gormStore) ListApprovals(ctx context.Context, bookingID uuid.UUID) ([]model.ApprovalRecord, error) {
	var records []model.ApprovalRecord
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
