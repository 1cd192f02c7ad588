package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hospital-meal-api/events"
	"hospital-meal-api/internal/testutil"
	"hospital-meal-api/metrics"
	"hospital-meal-api/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	db      *gorm.DB
	svc     *Services
	clock   *fakeClock
	events  *events.Recorder
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureIn(t, time.UTC)
}

func newFixtureIn(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	f := &fixture{
		db:      testutil.OpenTestDB(t),
		clock:   &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		events:  &events.Recorder{},
		metrics: metrics.New(),
	}
	f.svc = New(Deps{
		DB:         f.db,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:    f.metrics,
		Events:     f.events,
		Location:   loc,
		BcryptCost: bcrypt.MinCost,
		Now:        f.clock.Now,
	})
	return f
}

func (f *fixture) user(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	u, err := f.svc.Accounts.Register(context.Background(), RegisterInput{
		Name:     email,
		Email:    email,
		Password: "secret123",
		Role:     role,
	}, true)
	require.NoError(t, err)
	return u
}

func (f *fixture) menu(t *testing.T, name string, mt models.MenuType, price float64) *models.MenuItem {
	t.Helper()
	m, err := f.svc.Catalog.AddMenu(context.Background(), MenuInput{
		Name:     name,
		Category: "Main",
		Price:    price,
		MenuType: mt,
	})
	require.NoError(t, err)
	return m
}

func orderInput(userID uint, ot models.OrderType) CreateOrderInput {
	return CreateOrderInput{
		UserID:      userID,
		TotalAmount: 45000,
		OrderType:   ot,
		Floor:       "3",
		Location:    "Ward B",
		RoomNumber:  "301",
		Items: []OrderItemInput{
			{ProductID: "M-1", ProductName: "Nasi Goreng", Quantity: 2, Price: 20000},
			{ProductID: "M-2", ProductName: "Es Teh", Quantity: 1, Price: 5000},
		},
	}
}

func (f *fixture) order(t *testing.T, in CreateOrderInput) *models.Order {
	t.Helper()
	o, err := f.svc.Orders.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	return o
}
