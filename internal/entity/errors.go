package entity

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized: user id is required")
	ErrForbidden          = errors.New("forbidden: access denied")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrTaskNotFound       = errors.New("task not found or access denied")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidTaskData    = errors.New("invalid task data")
	ErrInvalidUserData    = errors.New("invalid user data")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInactiveUser       = errors.New("user is not active")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
