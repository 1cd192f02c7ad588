package services

import (
	"context"

	"gorm.io/gorm"

	"hospital-meal-api/models"
)

// GetDoctors lists doctor accounts, newest first.
func (s *AccountService) GetDoctors(ctx context.Context) ([]models.User, error) {
	doctors := []models.User{}
	err := s.db.WithContext(ctx).Where("role = ?", models.RoleDoctor).
		Order("created_at desc, id desc").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// UpdateDoctor edits a doctor's name, picture or employee id.
func (s *AccountService) UpdateDoctor(ctx context.Context, id uint, upd ProfileUpdate) (*models.User, error) {
	return s.updateUser(ctx, id, models.RoleDoctor, upd)
}

// DeleteDoctor removes a doctor account and its favorites. Orders stay for
// reporting. Other roles are refused.
func (s *AccountService) DeleteDoctor(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND role = ?", id, models.RoleDoctor).First(&user).Error; err != nil {
			if errIsNotFound(err) {
				return notFound("doctor", id)
			}
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "doctor deleted", "user_id", id)
	return nil
}
