package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionMissing occurs when a request lacks an authenticated session.
	ErrSessionMissing = errors.New("session missing")
	// ErrRoleForbidden occurs when the session role may not perform the action.
	ErrRoleForbidden = errors.New("role forbidden")
)
