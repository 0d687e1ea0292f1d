package services

import (
	"errors"

	"diwholesale/internal/repos"
)

var (
	ErrInvalid  = errors.New("invalid input")
	ErrConflict = errors.New("conflict")
	ErrNotFound = repos.ErrNotFound
)
