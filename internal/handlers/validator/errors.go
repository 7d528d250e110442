package validator

import (
	"errors"
)

type ErrInvalidForm struct {
	error
	Field string
}

func NewErrInvalidForm(field, message string) *ErrInvalidForm {
	return &ErrInvalidForm{error: errors.New(message), Field: field}
}
