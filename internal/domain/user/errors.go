package user

import "errors"

var (
	ErrEmployeeIDRequired      = errors.New("employee ID not found in token")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
