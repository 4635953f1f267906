package euclid

import (
	"strconv"
	"strings"

	apperrors "github.com/agbru/gcdtutor/internal/errors"
)

// Validation messages for operands.
const (
	msgNotNumber   = "not an integer"
	msgNotPositive = "must be a positive integer"
)

// ParseOperands validates two raw user inputs and returns them as positive
// integers. Any failure is an apperrors.ValidationError naming the field
// ("a" or "b"); the tracer must not be called in that case.
func ParseOperands(a, b string) (int64, int64, error) {
	x, err := parseOperand("a", a)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseOperand("b", b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func parseOperand(field, raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError{Field: field, Message: msgNotNumber}
	}
	if v <= 0 {
		return 0, apperrors.ValidationError{Field: field, Message: msgNotPositive}
	}
	return v, nil
}
