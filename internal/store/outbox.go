package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"facility-booking-backend/internal/model"
)

func (s *gormStore) PendingOutbox(ctx context.Context, limit int) ([]model.NotificationOutbox, error) {
	var notes []model.NotificationOutbox
	q := s.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *gormStore) MarkOutbox(ctx context.Context, id uuid.UUID, status model.OutboxStatus, sentAt *time.Time) error {
	update := map[string]any{
		"status":   status,
		"attempts": gorm.Expr("attempts + 1"),
	}
	if sentAt != nil {
		update["sent_at"] = *sentAt
	}
	res := s.db.WithContext(ctx).Model(&model.NotificationOutbox{}).Where("id = ?", id).Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("outbox row %s not found", id)
	}
	return nil
}
