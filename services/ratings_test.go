package services

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-meal-api/models"
)

func ptr[T any](v T) *T { return &v }

func TestRateMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "pat@example.com", models.RoleCustomer)
	m := f.menu(t, "Soto Ayam", models.MenuTypeCustomer, 25000)
	o := f.order(t, orderInput(u.ID, ""))

	got, err := f.svc.Ratings.RateMenu(ctx, RateInput{OrderID: o.ID, MenuID: m.ID, Rating: 4, ReviewText: ptr("tasty")})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.Rating, 1e-9)
	assert.Equal(t, 1, got.Reviews)

	got, err = f.svc.Ratings.RateMenu(ctx, RateInput{OrderID: o.ID, MenuID: m.ID, Rating: 2})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got.Rating, 1e-9)
	assert.Equal(t, 2, got.Reviews)

	// editing the 2 into a 5 keeps the count
	got, err = f.svc.Ratings.RateMenu(ctx, RateInput{OrderID: o.ID, MenuID: m.ID, Rating: 5, PreviousRating: ptr(2.0)})
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got.Rating, 1e-9)
	assert.Equal(t, 2, got.Reviews)

	// a zero previous rating counts as a fresh rating
	got, err = f.svc.Ratings.RateMenu(ctx, RateInput{OrderID: o.ID, MenuID: m.ID, Rating: 3, PreviousRating: ptr(0.0)})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.Rating, 1e-9)
	assert.Equal(t, 3, got.Reviews)

	saved, err := f.svc.Orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.ReviewText)
	assert.Equal(t, "tasty", *saved.ReviewText)

	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Ratings.WithLabelValues("new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Ratings.WithLabelValues("edit")))
}

func TestRateMenuEditWithoutReviewsCountsAsNew(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "pat@example.com", models.RoleCustomer)
	m := f.menu(t, "Soto Ayam", models.MenuTypeCustomer, 25000)
	o := f.order(t, orderInput(u.ID, ""))

	got, err := f.svc.Ratings.RateMenu(context.Background(), RateInput{OrderID: o.ID, MenuID: m.ID, Rating: 5, PreviousRating: ptr(3.0)})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got.Rating, 1e-9)
	assert.Equal(t, 1, got.Reviews)
}

func TestRateMenuErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "pat@example.com", models.RoleCustomer)
	m := f.menu(t, "Soto Ayam", models.MenuTypeCustomer, 25000)
	o := f.order(t, orderInput(u.ID, ""))

	_, err := f.svc.Ratings.RateMenu(ctx, RateInput{OrderID: o.ID, MenuID: m.ID, Rating: 6})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Ratings.RateMenu(ctx, RateInput{OrderID: o.ID, MenuID: m.ID, Rating: 0})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Ratings.RateMenu(ctx, RateInput{OrderID: "ORD-MISSING", MenuID: m.ID, Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)

	// a deleted dish only keeps the review text
	got, err := f.svc.Ratings.RateMenu(ctx, RateInput{OrderID: o.ID, MenuID: "M-GONE", Rating: 4, ReviewText: ptr("gone")})
	require.NoError(t, err)
	assert.Nil(t, got)
	saved, err := f.svc.Orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "gone", *saved.ReviewText)
}

func TestRatingRunningMean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "pat@example.com", models.RoleCustomer)
	m := f.menu(t, "Rawon", models.MenuTypeCustomer, 30000)
	o := f.order(t, orderInput(u.ID, ""))

	steps := []struct {
		in          RateInput
		wantRating  float64
		wantReviews int
	}{
		{RateInput{Rating: 5}, 5, 1},
		{RateInput{Rating: 3}, 4, 2},
		{RateInput{Rating: 5, PreviousRating: ptr(3.0)}, 5, 2},
	}
	for _, st := range steps {
		st.in.OrderID, st.in.MenuID = o.ID, m.ID
		got, err := f.svc.Ratings.RateMenu(ctx, st.in)
		require.NoError(t, err)
		assert.InDelta(t, st.wantRating, got.Rating, 1e-9)
		assert.Equal(t, st.wantReviews, got.Reviews)
	}
}

func TestConcurrentRatingsAreNotLost(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "pat@example.com", models.RoleCustomer)
	m := f.menu(t, "Gado Gado", models.MenuTypeCustomer, 20000)
	o := f.order(t, orderInput(u.ID, ""))

	const n = 12
	var (
		wg   sync.WaitGroup
		sum  float64
		errs = make([]error, n)
	)
	for i := 0; i < n; i++ {
		score := float64(i%5 + 1)
		sum += score
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Ratings.RateMenu(context.Background(), RateInput{
				OrderID: o.ID, MenuID: m.ID, Rating: score,
			})
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	got, err := f.svc.Catalog.GetMenu(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.Reviews)
	assert.InDelta(t, sum/n, got.Rating, 1e-9)
}
