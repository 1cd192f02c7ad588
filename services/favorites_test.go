package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-meal-api/models"
)

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "pat@example.com", models.RoleCustomer)
	soup := f.menu(t, "Soto Ayam", models.MenuTypeCustomer, 25000)
	tea := f.menu(t, "Es Teh", models.MenuTypeCustomer, 5000)

	on, err := f.svc.Favorites.ToggleFavorite(ctx, u.ID, soup.ID)
	require.NoError(t, err)
	assert.True(t, on)
	_, err = f.svc.Favorites.ToggleFavorite(ctx, u.ID, tea.ID)
	require.NoError(t, err)

	ids, err := f.svc.Favorites.GetFavorites(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{soup.ID, tea.ID}, ids)

	on, err = f.svc.Favorites.ToggleFavorite(ctx, u.ID, soup.ID)
	require.NoError(t, err)
	assert.False(t, on)

	ids, err = f.svc.Favorites.GetFavorites(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tea.ID}, ids)

	_, err = f.svc.Favorites.ToggleFavorite(ctx, u.ID, "M-NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetFavoritesEmpty(t *testing.T) {
	f := newFixture(t)
	ids, err := f.svc.Favorites.GetFavorites(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}
