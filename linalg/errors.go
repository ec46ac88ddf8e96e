package linalg

import "errors"

var (
	// ErrSingular is returned when a matrix with zero determinant is inverted.
	ErrSingular = errors.New("linalg: singular matrix")

	// ErrInvalidLength is returned when a requested element count does not fit
	// the supplied values.
	ErrInvalidLength = errors.New("linalg: invalid length")
)
