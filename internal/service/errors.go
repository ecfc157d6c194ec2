package service

import "errors"

var (
	ErrNotFound   = errors.New("error not found")
	ErrValidation = errors.New("error invalid input")
)
