// Package services holds the order engine and the stores around it. Handlers
// translate HTTP into these calls; everything that touches the database lives
// here.
package services

import (
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hospital-meal-api/events"
	"hospital-meal-api/metrics"
	"hospital-meal-api/models"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	DB       *gorm.DB
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Events   events.Publisher
	Location *time.Location // calendar used for quota days and reports
	AutoRole bool
	// BcryptCost overrides bcrypt.DefaultCost; tests lower it.
	BcryptCost int
	Now        func() time.Time
}

// Actor is the authenticated caller on whose behalf an operation runs.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

type Services struct {
	Accounts  *AccountService
	Catalog   *CatalogService
	Orders    *OrderService
	Ratings   *RatingService
	Favorites *FavoriteService
	Reports   *ReportService
}

func New(d Deps) *Services {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.BcryptCost == 0 {
		d.BcryptCost = bcrypt.DefaultCost
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	orders := newOrderService(d)
	return &Services{
		Accounts:  newAccountService(d),
		Catalog:   newCatalogService(d),
		Orders:    orders,
		Ratings:   newRatingService(d),
		Favorites: newFavoriteService(d),
		Reports:   newReportService(d, orders),
	}
}
