package domain

import "errors"

var (
	ErrPartNotFound  = errors.New("part not found")
	ErrDuplicatePart = errors.New("part already exists")
)
