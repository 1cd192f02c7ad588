package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-meal-api/models"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Accounts.Register(ctx, RegisterInput{Name: "Pat", Email: " Pat@Example.com ", Password: "secret123"}, false)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	got, err := f.svc.Accounts.Login(ctx, "PAT@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.svc.Accounts.Login(ctx, "pat@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Accounts.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Accounts.Register(ctx, RegisterInput{Name: "Pat 2", Email: "pat@example.com", Password: "secret123"}, false)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "secret123"}, ErrValidation},
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "secret123"}, ErrValidation},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "123"}, ErrValidation},
		{"unknown role", RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123", Role: "janitor"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Accounts.Register(ctx, tt.in, false)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterIgnoresSelfAssignedRole(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.Accounts.Register(context.Background(), RegisterInput{
		Name: "Eve", Email: "eve@example.com", Password: "secret123", Role: models.RoleAdmin,
	}, false)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, u.Role)
}

func TestRegisterAutoRole(t *testing.T) {
	f := newFixture(t)
	f.svc.Accounts.autoRole = true

	cases := map[string]models.UserRole{
		"admin@rs.id":      models.RoleAdmin,
		"dr.doctor@rs.id":  models.RoleDoctor,
		"catering1@rs.id":  models.RoleCatering,
		"server2@rs.id":    models.RoleWaiter,
		"waiter3@rs.id":    models.RoleWaiter,
		"cashier@rs.id":    models.RoleCashier,
		"visitor@gmail.io": models.RoleCustomer,
	}
	for email, want := range cases {
		u, err := f.svc.Accounts.Register(context.Background(), RegisterInput{Name: "x", Email: email, Password: "secret123"}, false)
		require.NoError(t, err, email)
		assert.Equal(t, want, u.Role, email)
	}
}

func TestPasswordResetTokenIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "pat@example.com", models.RoleCustomer)

	token, err := f.svc.Accounts.RequestPasswordReset(ctx, "pat@example.com")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	require.NoError(t, f.svc.Accounts.ResetPasswordWithToken(ctx, token, "brand-new"))
	assert.ErrorIs(t, f.svc.Accounts.ResetPasswordWithToken(ctx, token, "another-one"), ErrInvalidToken)

	_, err = f.svc.Accounts.Login(ctx, "pat@example.com", "brand-new")
	require.NoError(t, err)

	stored, err := f.svc.Accounts.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiry)
}

func TestPasswordResetExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "pat@example.com", models.RoleCustomer)

	token, err := f.svc.Accounts.RequestPasswordReset(ctx, "pat@example.com")
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)
	assert.ErrorIs(t, f.svc.Accounts.ResetPasswordWithToken(ctx, token, "brand-new"), ErrInvalidToken)

	_, err = f.svc.Accounts.RequestPasswordReset(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Accounts.ResetPasswordWithToken(ctx, "", "brand-new"), ErrInvalidToken)
	assert.ErrorIs(t, f.svc.Accounts.ResetPasswordWithToken(ctx, "bogus", "brand-new"), ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "pat@example.com", models.RoleCustomer)

	got, err := f.svc.Accounts.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: ptr("Patricia"), Image: ptr("/img/p.png"), EmployeeID: ptr("E-1")})
	require.NoError(t, err)
	assert.Equal(t, "Patricia", got.Name)
	assert.Equal(t, "/img/p.png", got.Image)
	assert.Nil(t, got.EmployeeID)

	_, err = f.svc.Accounts.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Accounts.UpdateProfile(ctx, 999, ProfileUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDoctorRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.user(t, "house@example.com", models.RoleDoctor)
	cust := f.user(t, "pat@example.com", models.RoleCustomer)
	m := f.menu(t, "Bubur", models.MenuTypeDoctor, 0)
	_, err := f.svc.Favorites.ToggleFavorite(ctx, doc.ID, m.ID)
	require.NoError(t, err)

	doctors, err := f.svc.Accounts.GetDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, doc.ID, doctors[0].ID)

	got, err := f.svc.Accounts.UpdateDoctor(ctx, doc.ID, ProfileUpdate{EmployeeID: ptr("NIP-77")})
	require.NoError(t, err)
	require.NotNil(t, got.EmployeeID)
	assert.Equal(t, "NIP-77", *got.EmployeeID)

	_, err = f.svc.Accounts.UpdateDoctor(ctx, cust.ID, ProfileUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Accounts.DeleteDoctor(ctx, cust.ID), ErrNotFound)

	require.NoError(t, f.svc.Accounts.DeleteDoctor(ctx, doc.ID))
	_, err = f.svc.Accounts.GetUser(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	favs, err := f.svc.Favorites.GetFavorites(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)
}
