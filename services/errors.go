package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hospital-meal-api/statemachine"
)

// Every failure a caller must tell apart. Operations wrap these with
// detail; test them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = statemachine.ErrInvalidTransition
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
)

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, what, id)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func errIsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
