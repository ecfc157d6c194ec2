package externalApi

import "errors"

var (
	ErrNotFound       = errors.New("error not found")
	ErrUnexpectedBody = errors.New("error unexpected response body")
)
