package services

import "errors"

var (
	ErrUsernameTaken       = errors.New("username already exists")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserHasRecords      = errors.New("user has transactions or chat history")
	ErrPackageNotFound     = errors.New("package not found or inactive")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyProcessed    = errors.New("transaction already processed")
	ErrInsufficientBalance = errors.New("insufficient message balance")
	ErrResetTokenInvalid   = errors.New("invalid or expired reset token")
)
