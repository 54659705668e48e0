package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	// BookingStatusCompleted is a derived display status: a confirmed
	// booking whose date has passed. It is never stored.
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking is one concrete, dated reservation of a facility.
// StartTime/EndTime are wall-clock "HH:MM" strings within BookingDate;
// the reserved interval is half-open, so touching endpoints do not overlap.
type Booking struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FacilityID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_slot" json:"facility_id"`
	RequesterID string     `gorm:"size:64;not null;index" json:"requester_id"`
	RuleID      *uuid.UUID `gorm:"type:uuid;index" json:"rule_id,omitempty"`

	BookingDate     time.Time `gorm:"type:date;not null;index:idx_bookings_slot" json:"booking_date"`
	StartTime       string    `gorm:"size:5;not null" json:"start_time"`
	EndTime         string    `gorm:"size:5;not null" json:"end_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`

	Purpose     string          `gorm:"type:text" json:"purpose"`
	Status      BookingStatus   `gorm:"size:32;not null;index:idx_bookings_slot" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	ApprovedBy  *string    `gorm:"size:64" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Facility *Facility `gorm:"foreignKey:FacilityID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// DisplayStatus returns the user-facing status, deriving "completed" for
// confirmed bookings whose date is before today.
func (b *Booking) DisplayStatus(now time.Time) BookingStatus {
	if b.Status == BookingStatusConfirmed && b.BookingDate.Before(DateOnly(now)) {
		return BookingStatusCompleted
	}
	return b.Status
}

// DateOnly truncates a timestamp to midnight UTC. All booking dates are
// normalized through it so date equality in queries is exact.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
