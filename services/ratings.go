package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"hospital-meal-api/metrics"
	"hospital-meal-api/models"
)

// RateInput is one customer rating of a dish from a delivered order.
// PreviousRating is set when the customer edits an earlier rating.
type RateInput struct {
	OrderID        string   `json:"order_id"`
	MenuID         string   `json:"menu_id" binding:"required"`
	Rating         float64  `json:"rating" binding:"required"`
	ReviewText     *string  `json:"review_text"`
	PreviousRating *float64 `json:"previous_rating"`
}

type RatingService struct {
	db      *gorm.DB
	log     *slog.Logger
	metrics *metrics.Metrics
}

func newRatingService(d Deps) *RatingService {
	return &RatingService{db: d.DB, log: d.Logger.With("component", "ratings"), metrics: d.Metrics}
}

// ratingSQL folds a rating into the running mean. An edit swaps the previous
// value for the new one without changing the count; a dish with no reviews
// always takes the new-rating branch. Both columns read the pre-update row.
const (
	ratingSQL = `CASE WHEN ? = 1 AND reviews > 0
		THEN (rating * reviews - ? + ?) / reviews
		ELSE (rating * reviews + ?) / (reviews + 1) END`
	reviewsSQL = `CASE WHEN ? = 1 AND reviews > 0 THEN reviews ELSE reviews + 1 END`
)

// RateMenu stores the review text on the order and updates the dish's mean
// rating in a single statement, so concurrent ratings never lose an update.
// A missing dish leaves only the review text written.
func (s *RatingService) RateMenu(ctx context.Context, in RateInput) (*models.MenuItem, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}
	if in.PreviousRating != nil && (*in.PreviousRating < 0 || *in.PreviousRating > 5) {
		return nil, invalid("previous rating must be between 0 and 5")
	}
	if in.MenuID == "" {
		return nil, invalid("menu is required")
	}

	edit, previous := 0, 0.0
	if in.PreviousRating != nil && *in.PreviousRating > 0 {
		edit, previous = 1, *in.PreviousRating
	}

	var menu *models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOrder(tx, in.OrderID); err != nil {
			return err
		}
		if in.ReviewText != nil {
			if err := tx.Model(&models.Order{}).Where("id = ?", in.OrderID).
				Update("review_text", *in.ReviewText).Error; err != nil {
				return err
			}
		}

		res := tx.Model(&models.MenuItem{}).Where("id = ?", in.MenuID).Updates(map[string]interface{}{
			"rating":  gorm.Expr(ratingSQL, edit, previous, in.Rating, in.Rating),
			"reviews": gorm.Expr(reviewsSQL, edit),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			s.log.WarnContext(ctx, "rated dish no longer exists", "menu_id", in.MenuID, "order_id", in.OrderID)
			return nil
		}
		var m models.MenuItem
		if err := tx.First(&m, "id = ?", in.MenuID).Error; err != nil {
			return err
		}
		menu = &m
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := "new"
	if edit == 1 {
		kind = "edit"
	}
	if menu != nil {
		s.metrics.Ratings.WithLabelValues(kind).Inc()
		s.log.InfoContext(ctx, "dish rated", "menu_id", menu.ID, "kind", kind,
			"rating", menu.Rating, "reviews", menu.Reviews)
	}
	return menu, nil
}
