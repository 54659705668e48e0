package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"facility-booking-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateFacility(ctx context.Context, f *model.Facility) error
	UpdateFacility(ctx context.Context, f *model.Facility) error
	GetFacility(ctx context.Context, id uuid.UUID) (*model.Facility, error)
	ListFacilities(ctx context.Context) ([]model.Facility, error)

	HasConflict(ctx context.Context, facilityID uuid.UUID, date time.Time, startTime, endTime string, excludeID *uuid.UUID) (bool, error)
	ReserveBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListBookings(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]model.Booking, error)
	ListBookingsInRange(ctx context.Context, facilityID uuid.UUID, from, to time.Time, statuses []model.BookingStatus) ([]model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus, cancelledAt *time.Time) error
	ApplyDecision(ctx context.Context, booking *model.Booking, record *model.ApprovalRecord, note *model.NotificationOutbox) error
	ListApprovals(ctx context.Context, bookingID uuid.UUID) ([]model.ApprovalRecord, error)

	CreateRule(ctx context.Context, r *model.RecurringBookingRule) error
	GetRule(ctx context.Context, id uuid.UUID) (*model.RecurringBookingRule, error)
	ListRulesByStatus(ctx context.Context, status model.RuleStatus) ([]model.RecurringBookingRule, error)
	UpdateRuleStatus(ctx context.Context, id uuid.UUID, status model.RuleStatus) error
	RuleHasBookingOn(ctx context.Context, ruleID uuid.UUID, date time.Time) (bool, error)
	LastMaterializedDate(ctx context.Context, ruleID uuid.UUID) (*time.Time, error)

	PendingOutbox(ctx context.Context, limit int) ([]model.NotificationOutbox, error)
	MarkOutbox(ctx context.Context, id uuid.UUID, status model.OutboxStatus, sentAt *time.Time) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for read-only query composition in the
// API layer and for the notification worker.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
