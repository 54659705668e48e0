package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"facility-booking-backend/internal/model"
)

func (s *gormStore) CreateFacility(ctx context.Context, f *model.Facility) error {
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *gormStore) UpdateFacility(ctx context.Context, f *model.Facility) error {
	res := s.db.WithContext(ctx).Model(&model.Facility{}).Where("id = ?", f.ID).Updates(map[string]any{
		"name":            f.Name,
		"location":        f.Location,
		"capacity":        f.Capacity,
		"hourly_rate":     f.HourlyRate,
		"is_available":    f.IsAvailable,
		"operating_hours": f.OperatingHours,
		"amenities":       f.Amenities,
		"rules":           f.Rules,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("facility %s: %w", f.ID, ErrFacilityNotFound)
	}
	return nil
}

func (s *gormStore) GetFacility(ctx context.Context, id uuid.UUID) (*model.Facility, error) {
	var f model.Facility
	if err := s.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("facility %s: %w", id, ErrFacilityNotFound)
		}
		return nil, err
	}
	return &f, nil
}

func (s *gormStore) ListFacilities(ctx context.Context) ([]model.Facility, error) {
	var facilities []model.Facility
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&facilities).Error; err != nil {
		return nil, err
	}
	return facilities, nil
}
