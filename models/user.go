package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleDoctor   UserRole = "doctor"
	RoleCatering UserRole = "catering"
	RoleWaiter   UserRole = "waiter"
	RoleCashier  UserRole = "cashier"
	RoleAdmin    UserRole = "admin"
)

// Roles lists every role in display order.
var Roles = []UserRole{RoleCustomer, RoleDoctor, RoleCatering, RoleWaiter, RoleCashier, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Name             string     `json:"name" gorm:"not null"`
	Email            string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash     string     `json:"-" gorm:"not null"`
	Role             UserRole   `json:"role" gorm:"not null;default:'customer';index"`
	EmployeeID       *string    `json:"employee_id,omitempty"`
	Image            string     `json:"image,omitempty"`
	ResetToken       *string    `json:"-" gorm:"uniqueIndex"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Profile is the public view of a user returned by login and profile endpoints.
type Profile struct {
	ID         uint     `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       UserRole `json:"role"`
	Image      string   `json:"image,omitempty"`
	EmployeeID *string  `json:"employee_id,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Image:      u.Image,
		EmployeeID: u.EmployeeID,
	}
}
