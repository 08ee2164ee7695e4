package domain

import "errors"

// Limits shared by list endpoints.
const (
	MaxListLimit = 100
)

var (
	ErrInvalidUUID = errors.New("invalid uuid")
)
