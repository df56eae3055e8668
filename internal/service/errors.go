package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("not allowed to access this resource")
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")
	ErrLateFeeNotAllowed  = errors.New("a late fee can only be charged when returning a late order")
	ErrInvalidLateFee     = errors.New("late fee cannot be negative")
	ErrInvalidArgument    = errors.New("invalid argument")
)
