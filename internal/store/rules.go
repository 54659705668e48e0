package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"facility-booking-backend/internal/model"
)

func (s *gormStore) CreateRule(ctx context.Context, r *model.RecurringBookingRule) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *gormStore) GetRule(ctx context.Context, id uuid.UUID) (*model.RecurringBookingRule, error) {
	var r model.RecurringBookingRule
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rule %s: %w", id, ErrRuleNotFound)
		}
		return nil, err
	}
	return &r, nil
}

func (s *gormStore) ListRulesByStatus(ctx context.Context, status model.RuleStatus) ([]model.RecurringBookingRule, error) {
	var rules []model.RecurringBookingRule
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (s *gormStore) UpdateRuleStatus(ctx context.Context, id uuid.UUID, status model.RuleStatus) error {
	res := s.db.WithContext(ctx).Model(&model.RecurringBookingRule{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rule %s: %w", id, ErrRuleNotFound)
	}
	return nil
}

// RuleHasBookingOn reports whether the rule already materialized a booking
// for the given date, regardless of that booking's status. Cancelled
// occurrences stay on record and are not re-created.
func (s *gormStore) RuleHasBookingOn(ctx context.Context, ruleID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Booking{}).
		Where("rule_id = ?", ruleID).
		Where("booking_date = ?", model.DateOnly(date)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LastMaterializedDate returns the booking date of the rule's most recent
// materialized occurrence, or nil if none exist yet.
func (s *gormStore) LastMaterializedDate(ctx context.Context, ruleID uuid.UUID) (*time.Time, error) {
	var b model.Booking
	err := s.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("booking_date DESC").
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := model.DateOnly(b.BookingDate)
	return &d, nil
}
