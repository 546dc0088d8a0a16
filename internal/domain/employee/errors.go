package employee

import "errors"

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrEmployeeCodeExists   = errors.New("employee code already exists")
	ErrCNICExists           = errors.New("CNIC already registered")
	ErrEmployeeTerminated   = errors.New("employee is terminated")
	ErrNegativeSalary       = errors.New("salary amounts must be non-negative")
)
