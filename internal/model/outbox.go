package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

// NotificationOutbox is a queued outbound notification. Rows are written in
// the same transaction as the domain change they announce and drained by
// the notification worker pool, so delivery failures never touch domain
// state.
type NotificationOutbox struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	RecipientID string       `gorm:"size:64;not null;index"`
	Subject     string       `gorm:"size:256;not null"`
	Body        string       `gorm:"type:text;not null"`
	ReferenceID uuid.UUID    `gorm:"type:uuid;not null"`
	Status      OutboxStatus `gorm:"size:16;not null;index;default:pending"`
	Attempts    int          `gorm:"not null;default:0"`
	CreatedAt   time.Time    `gorm:"not null"`
	SentAt      *time.Time
}

func (n *NotificationOutbox) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
