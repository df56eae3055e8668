package domain

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrStaffNotFound     = errors.New("staff member not found")
	ErrBranchNotFound    = errors.New("branch not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidCategory   = errors.New("invalid order category")
)
