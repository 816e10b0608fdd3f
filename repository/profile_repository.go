package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/umesh2702/OUTLAW/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByOutlawID(ctx context.Context, handle string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("outlaw_id = ?", handle).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// HandleTaken reports whether any profile already owns the handle.
func (r *ProfileRepository) HandleTaken(ctx context.Context, handle string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("outlaw_id = ?", handle).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}
