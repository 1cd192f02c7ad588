package services

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"hospital-meal-api/models"
)

// MenuInput is the editable part of a dish.
type MenuInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category" binding:"required"`
	Price       float64         `json:"price" binding:"min=0"`
	ImageURL    string          `json:"image_url"`
	MenuType    models.MenuType `json:"menu_type"`
}

// MenuFilter narrows the catalog. Search matches name or description.
type MenuFilter struct {
	MenuType models.MenuType
	Category string
	Search   string
}

type CatalogService struct {
	db  *gorm.DB
	log *slog.Logger
}

func newCatalogService(d Deps) *CatalogService {
	return &CatalogService{db: d.DB, log: d.Logger.With("component", "catalog")}
}

func (in *MenuInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" {
		return invalid("name and category are required")
	}
	if in.Price < 0 {
		return invalid("price must not be negative")
	}
	switch in.MenuType {
	case "":
		in.MenuType = models.MenuTypeCustomer
	case models.MenuTypeCustomer:
	case models.MenuTypeDoctor:
		// doctor meals are covered by the quota
		in.Price = 0
	default:
		return invalid("unknown menu type %q", in.MenuType)
	}
	return nil
}

// AddMenu creates a dish with no ratings.
func (s *CatalogService) AddMenu(ctx context.Context, in MenuInput) (*models.MenuItem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	item := models.MenuItem{
		ID:          newMenuID(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		MenuType:    in.MenuType,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "menu added", "menu_id", item.ID, "name", item.Name, "type", item.MenuType)
	return &item, nil
}

// UpdateMenu replaces the editable fields of a dish. Ratings are untouched.
func (s *CatalogService) UpdateMenu(ctx context.Context, id string, in MenuInput) (*models.MenuItem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	var item models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.MenuItem{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
			"category":    in.Category,
			"price":       in.Price,
			"image_url":   in.ImageURL,
			"menu_type":   in.MenuType,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("menu", id)
		}
		return tx.First(&item, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteMenu removes a dish and every favorite pointing at it. Past orders
// keep their snapshot of the dish.
func (s *CatalogService) DeleteMenu(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.MenuItem{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("menu", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "menu deleted", "menu_id", id)
	return nil
}

// ListMenus returns the catalog ordered by category then name.
func (s *CatalogService) ListMenus(ctx context.Context, f MenuFilter) ([]models.MenuItem, error) {
	q := s.db.WithContext(ctx)
	if f.MenuType != "" {
		q = q.Where("menu_type = ?", f.MenuType)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	items := []models.MenuItem{}
	if err := q.Order("category asc, name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CatalogService) GetMenu(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errIsNotFound(err) {
			return nil, notFound("menu", id)
		}
		return nil, err
	}
	return &item, nil
}
