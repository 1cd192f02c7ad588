package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-meal-api/models"
)

type FavoriteService struct {
	db  *gorm.DB
	log *slog.Logger
}

func newFavoriteService(d Deps) *FavoriteService {
	return &FavoriteService{db: d.DB, log: d.Logger.With("component", "favorites")}
}

// ToggleFavorite flips the favorite flag of a dish for a user and reports the
// resulting state.
func (s *FavoriteService) ToggleFavorite(ctx context.Context, userID uint, menuID string) (bool, error) {
	if userID == 0 || menuID == "" {
		return false, invalid("user and menu are required")
	}

	var favorited bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND menu_id = ?", userID, menuID).Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var menu models.MenuItem
		if err := tx.Select("id").First(&menu, "id = ?", menuID).Error; err != nil {
			if errIsNotFound(err) {
				return notFound("menu", menuID)
			}
			return err
		}
		favorited = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Favorite{ID: newID(), UserID: userID, MenuID: menuID}).Error
	})
	if err != nil {
		return false, err
	}
	s.log.DebugContext(ctx, "favorite toggled", "user_id", userID, "menu_id", menuID, "favorited", favorited)
	return favorited, nil
}

// GetFavorites returns the ids of the user's favorite dishes, oldest first.
func (s *FavoriteService) GetFavorites(ctx context.Context, userID uint) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Pluck("menu_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
