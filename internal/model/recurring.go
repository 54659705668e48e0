package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RecurrencePattern string

const (
	PatternDaily   RecurrencePattern = "daily"
	PatternWeekly  RecurrencePattern = "weekly"
	PatternMonthly RecurrencePattern = "monthly"
)

type RuleStatus string

const (
	RuleStatusActive    RuleStatus = "active"
	RuleStatusPaused    RuleStatus = "paused"
	RuleStatusCancelled RuleStatus = "cancelled"
)

// RecurringBookingRule describes a repeating reservation that is expanded
// into concrete Booking rows on demand. DaysOfWeek holds time.Weekday
// values (0 = Sunday) and is required for the weekly pattern.
type RecurringBookingRule struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FacilityID  uuid.UUID `gorm:"type:uuid;not null;index" json:"facility_id"`
	RequesterID string    `gorm:"size:64;not null;index" json:"requester_id"`
	Title       string    `gorm:"size:256" json:"title"`

	Pattern    RecurrencePattern        `gorm:"size:16;not null" json:"pattern"`
	Interval   int                      `gorm:"not null;default:1" json:"interval"`
	DaysOfWeek datatypes.JSONSlice[int] `json:"days_of_week,omitempty"`

	StartTime string     `gorm:"size:5;not null" json:"start_time"`
	EndTime   string     `gorm:"size:5;not null" json:"end_time"`
	StartDate time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate   *time.Time `gorm:"type:date" json:"end_date,omitempty"`

	Status    RuleStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`

	Facility *Facility `gorm:"foreignKey:FacilityID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (r *RecurringBookingRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Weekdays returns the configured weekday set.
func (r *RecurringBookingRule) Weekdays() map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(r.DaysOfWeek))
	for _, d := range r.DaysOfWeek {
		set[time.Weekday(d)] = true
	}
	return set
}
