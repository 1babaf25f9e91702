package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid name or PIN")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrNoActiveSession     = errors.New("no active session")
	ErrNoNextTeam          = errors.New("no successor team for the current shift")
)
