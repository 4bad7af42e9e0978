package common

import "errors"

var (
	// token inspection errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrInvalidAuthHeaderFormat = errors.New("invalid auth header format")
)
