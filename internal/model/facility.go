package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DayHours describes the bookable window of a facility on one weekday.
// Open and Close are wall-clock times in "HH:MM" form; the window is
// half-open, so a booking may end exactly at Close.
type DayHours struct {
	Closed bool   `json:"closed"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
}

// WeekHours maps lowercase weekday names ("monday".."sunday") to windows.
// A missing day counts as closed.
type WeekHours map[string]DayHours

// For returns the window for the given weekday.
func (w WeekHours) For(day time.Weekday) DayHours {
	h, ok := w[WeekdayKey(day)]
	if !ok {
		return DayHours{Closed: true}
	}
	return h
}

// WeekdayKey converts a time.Weekday into the map key used by WeekHours.
func WeekdayKey(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// Facility represents a bookable community facility.
type Facility struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:256;not null" json:"name"`
	Location    string          `gorm:"size:256" json:"location"`
	Capacity    int             `gorm:"not null" json:"capacity"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"hourly_rate"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`

	OperatingHours datatypes.JSONType[WeekHours]  `json:"operating_hours"`
	Amenities      datatypes.JSONSlice[string]    `json:"amenities"`
	Rules          datatypes.JSONSlice[string]    `json:"rules"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate assigns the ID so the model works on databases without a
// server-side uuid generator (the test suite runs on SQLite).
func (f *Facility) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
