package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hospital-meal-api/models"
)

const (
	minPasswordLen = 6
	resetTokenTTL  = 24 * time.Hour
)

type RegisterInput struct {
	Name       string          `json:"name" binding:"required"`
	Email      string          `json:"email" binding:"required,email"`
	Password   string          `json:"password" binding:"required,min=6"`
	Role       models.UserRole `json:"role"`
	EmployeeID *string         `json:"employee_id"`
	Image      string          `json:"image"`
}

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	Name       *string `json:"name"`
	Image      *string `json:"image"`
	EmployeeID *string `json:"employee_id"`
}

// AccountService manages users, credentials and the doctor roster.
type AccountService struct {
	db         *gorm.DB
	log        *slog.Logger
	autoRole   bool
	bcryptCost int
	now        func() time.Time
}

func newAccountService(d Deps) *AccountService {
	return &AccountService{
		db:         d.DB,
		log:        d.Logger.With("component", "accounts"),
		autoRole:   d.AutoRole,
		bcryptCost: d.BcryptCost,
		now:        d.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. An explicit role is honored only when
// allowRole is set, which the admin user-creation path does; a self-service
// sign-up ignores it.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, allowRole bool) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" {
		return nil, invalid("name is required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, invalid("invalid email %q", in.Email)
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalid("password must be at least %d characters", minPasswordLen)
	}
	role, err := s.resolveRole(in, allowRole)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		EmployeeID:   in.EmployeeID,
		Image:        in.Image,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: email already registered", ErrConflict)
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: email already registered", ErrConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

func (s *AccountService) resolveRole(in RegisterInput, allowRole bool) (models.UserRole, error) {
	if in.Role != "" && !in.Role.Valid() {
		return "", invalid("unknown role %q", in.Role)
	}
	switch {
	case allowRole && in.Role != "":
		return in.Role, nil
	case s.autoRole:
		return roleFromEmail(in.Email), nil
	}
	return models.RoleCustomer, nil
}

// roleFromEmail guesses a staff role from keywords in the address. Only used
// when auto-role is enabled for demo deployments.
func roleFromEmail(email string) models.UserRole {
	switch {
	case strings.Contains(email, "admin"):
		return models.RoleAdmin
	case strings.Contains(email, "doctor"):
		return models.RoleDoctor
	case strings.Contains(email, "catering"):
		return models.RoleCatering
	case strings.Contains(email, "server"), strings.Contains(email, "waiter"):
		return models.RoleWaiter
	case strings.Contains(email, "cashier"):
		return models.RoleCashier
	}
	return models.RoleCustomer
}

// Login checks a password and returns the account.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errIsNotFound(err) {
			return nil, notFound("user", email)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.InfoContext(ctx, "login rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AccountService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errIsNotFound(err) {
			return nil, notFound("user", id)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile lets a user change their own name and picture.
func (s *AccountService) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) (*models.User, error) {
	upd.EmployeeID = nil
	return s.updateUser(ctx, id, "", upd)
}

// updateUser applies upd to the user, requiring the given role when set.
func (s *AccountService) updateUser(ctx context.Context, id uint, role models.UserRole, upd ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, invalid("name must not be empty")
		}
		updates["name"] = name
	}
	if upd.Image != nil {
		updates["image"] = *upd.Image
	}
	if upd.EmployeeID != nil {
		updates["employee_id"] = *upd.EmployeeID
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", id)
		if role != "" {
			q = q.Where("role = ?", role)
		}
		if err := q.First(&user).Error; err != nil {
			if errIsNotFound(err) {
				return notFound("user", id)
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset issues a single-use reset token valid for a day.
// Delivering it to the user is left to the caller.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	token := newResetToken()
	expiry := s.now().UTC().Add(resetTokenTTL)

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).
		Updates(map[string]interface{}{"reset_token": token, "reset_token_expiry": expiry})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", notFound("user", email)
	}
	s.log.InfoContext(ctx, "password reset requested", "email", email)
	return token, nil
}

// ResetPasswordWithToken sets a new password and burns the token.
func (s *AccountService) ResetPasswordWithToken(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if len(newPassword) < minPasswordLen {
		return invalid("password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var userID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("reset_token = ?", token).First(&user).Error; err != nil {
			if errIsNotFound(err) {
				return ErrInvalidToken
			}
			return err
		}
		if user.ResetTokenExpiry == nil || !s.now().Before(*user.ResetTokenExpiry) {
			return fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		res := tx.Model(&models.User{}).Where("id = ? AND reset_token = ?", user.ID, token).
			Updates(map[string]interface{}{
				"password_hash":      string(hash),
				"reset_token":        nil,
				"reset_token_expiry": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidToken
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "password reset", "user_id", userID)
	return nil
}
