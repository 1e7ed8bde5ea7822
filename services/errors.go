package services

import "errors"

var (
	ErrInvalidQuizType = errors.New("invalid quiz type")
	ErrInvalidDomain   = errors.New("invalid domain")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
)
