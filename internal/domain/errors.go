package domain

import "errors"

// Task errors
var (
	ErrValidation   = errors.New("task: invalid submission")
	ErrTaskNotFound = errors.New("task: not found")
	ErrInvalidState = errors.New("task: illegal state transition")
)

// Dataset errors
var (
	ErrDatasetNotFound = errors.New("dataset: not found")
)

// Queue errors
var (
	ErrDispatch = errors.New("queue: dispatch failed")
)

// Storage errors
var (
	ErrStorageRead = errors.New("storage: result file not readable")
)

// Auth errors
var (
	ErrEmailExists        = errors.New("auth: email already exists")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrUserDisabled       = errors.New("auth: user account is disabled")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
)
