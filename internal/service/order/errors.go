package order

import (
	"errors"
	"strings"
)

var (
	ErrValidation        = errors.New("validation")                // 400
	ErrProductReference  = errors.New("invalid product reference") // 400
	ErrInsufficientStock = errors.New("insufficient stock")        // 400
	ErrNotFound          = errors.New("not found")                 // 404
)

// ValidationError lists every field that failed, so the caller gets
// one structured response instead of the first failure.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
