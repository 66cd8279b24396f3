package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Conversion errors
	ErrUnsupportedInput = errors.New("unsupported input type for plot data")
	ErrConversionFailed = errors.New("tabular conversion failed")

	// Frame errors
	ErrColumnNotFound  = errors.New("column not found")
	ErrLengthMismatch  = errors.New("columns have mismatched lengths")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrEmptyInput      = errors.New("input contains no columns")
	ErrRowOutOfRange   = errors.New("row index out of range")

	// Plot errors
	ErrInvalidAesthetic = errors.New("aesthetic refers to unknown column")
	ErrMissingAesthetic = errors.New("required aesthetic not mapped")
	ErrUnknownGeom      = errors.New("unknown geometry")
	ErrUnknownStat      = errors.New("unknown stat")
)

// NewUnsupportedInputError reports the dynamic type that could not be
// normalized to a frame.
func NewUnsupportedInputError(v interface{}) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedInput, v)
}

// NewColumnNotFoundError names the missing column.
func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// NewAestheticError names the aesthetic and the column it points at.
func NewAestheticError(aes, column string) error {
	return fmt.Errorf("%w: %s -> %q", ErrInvalidAesthetic, aes, column)
}

// Error checking helpers
func IsUnsupportedInputError(err error) bool {
	return errors.Is(err, ErrUnsupportedInput)
}

func IsConversionError(err error) bool {
	return errors.Is(err, ErrConversionFailed)
}

func IsFrameError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrDuplicateColumn) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrRowOutOfRange)
}

func IsPlotError(err error) bool {
	return errors.Is(err, ErrInvalidAesthetic) ||
		errors.Is(err, ErrMissingAesthetic) ||
		errors.Is(err, ErrUnknownGeom) ||
		errors.Is(err, ErrUnknownStat)
}
