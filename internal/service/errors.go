package service

import "errors"

var (
	ErrControllerStopped = errors.New("canvas controller stopped")
	ErrUnknownInput      = errors.New("unknown input kind")
	ErrInvalidInput      = errors.New("invalid input data")
)
