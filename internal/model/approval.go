package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "approved"
	DecisionRejected ApprovalDecision = "rejected"
)

// ApprovalRecord is one decision event for a booking. Records are
// append-only; the booking's status reflects the latest one.
type ApprovalRecord struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"booking_id"`
	ApproverID string           `gorm:"size:64;not null" json:"approver_id"`
	Decision   ApprovalDecision `gorm:"size:16;not null" json:"decision"`
	Notes      string           `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time        `gorm:"not null" json:"created_at"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *ApprovalRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
