package factory

import "errors"

var (
	ErrClassNotFound = errors.New("could not find implementation")
	ErrInvalidOption = errors.New("invalid factory option")
)
