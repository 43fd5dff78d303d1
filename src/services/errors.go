package services

import "fmt"

// InvalidFilterError marks malformed or contradictory filter input. It maps
// to a client-side validation failure and is never retried.
type InvalidFilterError struct {
	Message string
}

func (e *InvalidFilterError) Error() string {
	return e.Message
}

func NewInvalidFilterError(format string, args ...interface{}) error {
	return &InvalidFilterError{Message: fmt.Sprintf(format, args...)}
}

// UnsupportedFormatError marks an export format outside csv/pdf/excel/xlsx.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %s", e.Format)
}

// NotFoundError hides tenant mismatches behind a plain not-found answer so
// report existence does not leak across organizations.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}
